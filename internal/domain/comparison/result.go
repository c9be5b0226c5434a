package comparison

// ─────────────────────────────────────────────────────────────────────────────
// Change classification value objects
// ─────────────────────────────────────────────────────────────────────────────

// ChangeType classifies what happened to a section between the two versions.
type ChangeType string

const (
	ChangeUnchanged ChangeType = "unchanged"
	ChangeModified  ChangeType = "modified"
	ChangeAdded     ChangeType = "added"
	ChangeRemoved   ChangeType = "removed"
	ChangeError     ChangeType = "error"
)

// ImpactLevel is the coarse severity classification assigned to a change.
type ImpactLevel string

const (
	ImpactHigh    ImpactLevel = "high"
	ImpactMedium  ImpactLevel = "medium"
	ImpactLow     ImpactLevel = "low"
	ImpactUnknown ImpactLevel = "unknown"
)

// Ordinal maps impact levels to a sortable priority: high=3, medium=2, low=1,
// anything else 0.  Used for ranking major changes.
func (l ImpactLevel) Ordinal() int {
	switch l {
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	case ImpactLow:
		return 1
	default:
		return 0
	}
}

// ChangeCategory names the kind of policy content a change touches.
type ChangeCategory string

const (
	CategoryProcedural   ChangeCategory = "procedural"
	CategoryRequirements ChangeCategory = "requirements"
	CategoryDefinitions  ChangeCategory = "definitions"
	CategoryScope        ChangeCategory = "scope"
	CategoryCompliance   ChangeCategory = "compliance"
	CategoryAddition     ChangeCategory = "addition"
	CategoryRemoval      ChangeCategory = "removal"
	CategoryOther        ChangeCategory = "other"
)

// ValidCategory reports whether c is one of the categories the oracle is
// allowed to assign to a modified section.
func ValidCategory(c ChangeCategory) bool {
	switch c {
	case CategoryProcedural, CategoryRequirements, CategoryDefinitions,
		CategoryScope, CategoryCompliance, CategoryOther:
		return true
	}
	return false
}

// ImpactAnalysis carries the structured classification of a modified section.
type ImpactAnalysis struct {
	ImpactLevel       ImpactLevel    `json:"impact_level"`
	ChangeCategory    ChangeCategory `json:"change_category"`
	StakeholderImpact string         `json:"stakeholder_impact"`
}

// SectionResult is one fully classified row of a comparison report, built
// from a MatchRecord plus the classifier's output.
type SectionResult struct {
	MatchType  MatchType  `json:"match_type"`
	Similarity float64    `json:"similarity"`
	Title1     string     `json:"title1"`
	Title2     string     `json:"title2"`
	Content1   string     `json:"content1"`
	Content2   string     `json:"content2"`
	ChangeType ChangeType `json:"change_type"`
	DiffHTML   string     `json:"diff_html"`
	Summary    string     `json:"summary"`

	ImpactAnalysis ImpactAnalysis `json:"impact_analysis"`
}

// Title returns the most useful display title for the result: the new title
// when present, otherwise the old one.
func (r SectionResult) Title() string {
	if r.Title2 != "" {
		return r.Title2
	}
	return r.Title1
}
