// Package comparison implements the Comparison bounded context for the
// PolicyLens platform: the section and match-record value objects produced by
// the segmentation and alignment pipeline, the comparison report aggregate,
// and the Comparison entity tracking one document-pair analysis from request
// to completion.  All business rules that concern comparisons live here;
// infrastructure concerns (persistence, messaging) are handled by separate
// repository and adapter layers.
package comparison

import (
	"strings"

	"github.com/turtacn/policylens/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Section value object
// ─────────────────────────────────────────────────────────────────────────────

// Section is a titled, contiguous span of a document identified by heuristic
// segmentation.  Sections are created only by the extractor and are immutable
// once built; SectionID is the section's zero-based position within its
// document's section list.
type Section struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	SectionID int    `json:"section_id"`
}

// NewSection builds a Section, trimming surrounding whitespace from the title.
func NewSection(id int, title, content string) Section {
	return Section{
		Title:     strings.TrimSpace(title),
		Content:   content,
		SectionID: id,
	}
}

// IsEmpty reports whether the section carries no body content after trimming.
func (s Section) IsEmpty() bool {
	return strings.TrimSpace(s.Content) == ""
}

// ─────────────────────────────────────────────────────────────────────────────
// MatchRecord value object
// ─────────────────────────────────────────────────────────────────────────────

// MatchType identifies the alignment outcome for one section between two
// document versions.
type MatchType string

const (
	// MatchMatched means a section in document 1 was aligned with a section
	// in document 2 above the similarity threshold.
	MatchMatched MatchType = "matched"

	// MatchAdded means the section exists only in document 2.
	MatchAdded MatchType = "added"

	// MatchRemoved means the section exists only in document 1.
	MatchRemoved MatchType = "removed"
)

// MatchRecord is the alignment outcome for one section.  Exactly one of
// Section1/Section2 is nil when MatchType is added or removed; both are
// non-nil when matched.  Every section from both input lists appears in
// exactly one MatchRecord.
type MatchRecord struct {
	Section1   *Section  `json:"section1"`
	Section2   *Section  `json:"section2"`
	Similarity float64   `json:"similarity"`
	MatchType  MatchType `json:"match_type"`
}

// Validate enforces the MatchRecord shape invariant.
func (r MatchRecord) Validate() error {
	switch r.MatchType {
	case MatchMatched:
		if r.Section1 == nil || r.Section2 == nil {
			return errors.New(errors.ErrCodeValidation, "matched record requires both sections")
		}
	case MatchAdded:
		if r.Section1 != nil || r.Section2 == nil {
			return errors.New(errors.ErrCodeValidation, "added record requires only section2")
		}
	case MatchRemoved:
		if r.Section1 == nil || r.Section2 != nil {
			return errors.New(errors.ErrCodeValidation, "removed record requires only section1")
		}
	default:
		return errors.Newf(errors.ErrCodeValidation, "unknown match type %q", r.MatchType)
	}
	if r.Similarity < 0 || r.Similarity > 1 {
		return errors.Newf(errors.ErrCodeValidation, "similarity %f out of [0,1]", r.Similarity)
	}
	return nil
}
