package comparison

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Comparison report aggregate
// ─────────────────────────────────────────────────────────────────────────────

// Stage names a pipeline stage for degradation reporting.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageMatch     Stage = "match"
	StageClassify  Stage = "classify"
	StageAggregate Stage = "aggregate"
)

// Degradation records that a pipeline stage fell back to a lesser strategy
// while still producing output.  Degradations are informational; the report
// they accompany is complete and usable.
type Degradation struct {
	Stage  Stage  `json:"stage"`
	Reason string `json:"reason"`
}

// Statistics summarizes a comparison at the corpus level.  The change-type
// counters always sum to TotalSections; Error is set only when aggregation
// itself failed, in which case all counters are zero.
type Statistics struct {
	TotalSections    int     `json:"total_sections"`
	Unchanged        int     `json:"unchanged"`
	Modified         int     `json:"modified"`
	Added            int     `json:"added"`
	Removed          int     `json:"removed"`
	HighImpact       int     `json:"high_impact"`
	MediumImpact     int     `json:"medium_impact"`
	LowImpact        int     `json:"low_impact"`
	PercentChanged   float64 `json:"percent_changed"`
	PercentUnchanged float64 `json:"percent_unchanged"`
	Error            string  `json:"error,omitempty"`
}

// MajorChange is one entry in the ranked list of the most significant changes.
type MajorChange struct {
	Title          string         `json:"title"`
	ChangeType     ChangeType     `json:"change_type"`
	ImpactLevel    ImpactLevel    `json:"impact_level"`
	ChangeCategory ChangeCategory `json:"change_category"`
	Summary        string         `json:"summary"`
}

// ReportMetadata carries provenance for a report: when it was generated,
// which capability implementations produced it, and any degradations the
// pipeline recorded along the way.
type ReportMetadata struct {
	GeneratedAt  time.Time     `json:"generated_at"`
	Document1ID  string        `json:"document1_id,omitempty"`
	Document2ID  string        `json:"document2_id,omitempty"`
	ScorerKind   string        `json:"scorer_kind,omitempty"`
	OracleKind   string        `json:"oracle_kind,omitempty"`
	Degradations []Degradation `json:"degradations,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// Report is the durable output of one comparison: every classified section,
// corpus statistics, the ranked major changes, an optional executive summary,
// and provenance metadata.  Built once per comparison and never mutated.
type Report struct {
	Sections       []SectionResult `json:"sections"`
	Statistics     Statistics      `json:"statistics"`
	OverallChanges []MajorChange   `json:"overall_changes"`
	Summary        string          `json:"summary,omitempty"`
	Metadata       ReportMetadata  `json:"metadata"`
}

// Degraded reports whether any pipeline stage fell back during generation.
func (r *Report) Degraded() bool {
	return len(r.Metadata.Degradations) > 0
}

// Failed reports whether the report is an error shell produced by an
// aggregation fault rather than a real comparison result.
func (r *Report) Failed() bool {
	return r.Statistics.Error != "" || r.Metadata.Error != ""
}
