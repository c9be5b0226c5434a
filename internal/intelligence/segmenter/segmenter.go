// Package segmenter splits raw policy text into titled sections using
// competing structural heuristics.  Several header-detection patterns are
// tried independently; each candidate segmentation is scored and the best one
// wins.  Extraction never fails: when no pattern produces a usable
// segmentation the package falls back to paragraph splitting and, as a last
// resort, to a single section covering the whole document.
package segmenter

import (
	"regexp"
	"strings"

	"github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
)

// FallbackTitle is the title of the single-section last-resort result.
const FallbackTitle = "Full Document"

// maxFallbackParagraphs bounds the paragraph-splitting fallback.
const maxFallbackParagraphs = 20

// minFallbackParagraphLen discards trivial paragraphs in the fallback.
const minFallbackParagraphLen = 50

// headerPatterns are the competing section-boundary heuristics, each matching
// the first line of a new section.  Patterns are tried independently, never
// layered.
var headerPatterns = []*regexp.Regexp{
	// Numbered headings: "1. Introduction", "12. Scope"
	regexp.MustCompile(`(?m)^\d+\.\s+[A-Z]`),
	// All-caps header lines of length >= 4.  The class excludes newlines;
	// a \s here would fuse adjacent header lines into one match.
	regexp.MustCompile(`(?m)^[A-Z][A-Z \t]{3,}$`),
	// Explicit section markers: "SECTION 3"
	regexp.MustCompile(`(?m)^SECTION\s+\d+`),
	// Title-case headings terminated by a colon: "Data Retention:"
	regexp.MustCompile(`(?m)^[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*:`),
}

// structuralKeywords mark titles that look like real document structure.
var structuralKeywords = []string{"section", "article", "chapter", "part"}

// Segmenter extracts sections from raw document text.
type Segmenter struct {
	log logging.Logger
}

// New builds a Segmenter.  A nil logger is replaced with a nop logger.
func New(log logging.Logger) *Segmenter {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Segmenter{log: log.Named("segmenter")}
}

// Extract segments text into sections.  It always returns at least one
// section; the returned Degradation is nil when a header pattern produced the
// segmentation and non-nil when a fallback strategy was used.
func (s *Segmenter) Extract(text string) ([]comparison.Section, *comparison.Degradation) {
	best := s.bestPatternSegmentation(text)
	if len(best) > 0 {
		s.log.Debug("pattern segmentation selected", logging.Int("sections", len(best)))
		return best, nil
	}

	if paras := s.paragraphFallback(text); len(paras) > 0 {
		s.log.Info("falling back to paragraph segmentation", logging.Int("sections", len(paras)))
		return paras, &comparison.Degradation{
			Stage:  comparison.StageExtract,
			Reason: "no header pattern matched; split on paragraphs",
		}
	}

	s.log.Warn("falling back to single-section extraction")
	return []comparison.Section{{Title: FallbackTitle, Content: text, SectionID: 0}}, &comparison.Degradation{
		Stage:  comparison.StageExtract,
		Reason: "no usable segmentation; whole document as one section",
	}
}

// bestPatternSegmentation tries every header pattern and returns the
// highest-scoring candidate, or nil when no pattern yields a positive score.
func (s *Segmenter) bestPatternSegmentation(text string) []comparison.Section {
	var best []comparison.Section
	var bestScore float64

	for _, pattern := range headerPatterns {
		parts := splitBefore(text, pattern)
		if len(parts) <= 1 {
			continue
		}

		candidate := buildSections(parts)
		if len(candidate) == 0 {
			continue
		}

		score := scoreSections(candidate)
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	return best
}

// splitBefore splits text immediately before every match of pattern, keeping
// the matched line at the head of its chunk.
func splitBefore(text string, pattern *regexp.Regexp) []string {
	locs := pattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	var parts []string
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			parts = append(parts, text[prev:loc[0]])
		}
		prev = loc[0]
	}
	parts = append(parts, text[prev:])
	return parts
}

// buildSections turns raw chunks into sections: the first line becomes the
// title, the remainder the content (or the whole chunk when it is a single
// line).  Blank chunks are dropped.
func buildSections(parts []string) []comparison.Section {
	var sections []comparison.Section
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		lines := strings.Split(trimmed, "\n")
		title := strings.TrimSpace(lines[0])
		content := trimmed
		if len(lines) > 1 {
			content = strings.TrimSpace(strings.Join(lines[1:], "\n"))
		}
		sections = append(sections, comparison.Section{
			Title:     title,
			Content:   content,
			SectionID: len(sections),
		})
	}
	return sections
}

// scoreSections rates a candidate segmentation.  Per section: +2 for content
// length in (100,5000), +1 for (50,10000), -1 below 20 or above 10000 chars,
// +1 for a structural keyword in the title.  Plus a count bonus: +2 for 3-15
// sections, +1 for 2-25.  The total is averaged over the section count.
func scoreSections(sections []comparison.Section) float64 {
	if len(sections) == 0 {
		return 0
	}

	score := 0
	for _, sec := range sections {
		n := len(sec.Content)
		if n > 100 && n < 5000 {
			score += 2
		} else if n > 50 && n < 10000 {
			score++
		}

		title := strings.ToLower(sec.Title)
		for _, kw := range structuralKeywords {
			if strings.Contains(title, kw) {
				score++
				break
			}
		}

		if n < 20 || n > 10000 {
			score--
		}
	}

	switch n := len(sections); {
	case n >= 3 && n <= 15:
		score += 2
	case n >= 2 && n <= 25:
		score++
	}

	return float64(score) / float64(len(sections))
}

// paragraphFallback splits on blank lines, keeping at most the first 20
// paragraphs of 50+ characters.  Titles are the first 100 characters of the
// paragraph's first line, with an ellipsis when truncated.
func (s *Segmenter) paragraphFallback(text string) []comparison.Section {
	var sections []comparison.Section
	seen := 0
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if seen >= maxFallbackParagraphs {
			break
		}
		seen++
		if len(para) <= minFallbackParagraphLen {
			continue
		}

		firstLine := strings.SplitN(para, "\n", 2)[0]
		title := firstLine
		if len(title) > 100 {
			title = title[:100] + "..."
		}
		sections = append(sections, comparison.Section{
			Title:     title,
			Content:   para,
			SectionID: len(sections),
		})
	}
	return sections
}
