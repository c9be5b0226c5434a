// Package comparison provides the application-level comparison pipeline: it
// orchestrates segmentation, matching, and classification, aggregates the
// per-section results into a ranked report, and exposes the comparison
// service consumed by the HTTP and CLI surfaces.
package comparison

import (
	"fmt"
	"math"
	"sort"
	"time"

	domain "github.com/turtacn/policylens/internal/domain/comparison"
)

// maxMajorChanges bounds the ranked major-changes list.
const maxMajorChanges = 10

// Aggregate combines classified section results into a full report.  It never
// fails: an internal fault collapses to a report whose statistics and
// metadata carry an error field and whose section lists are empty.
func Aggregate(results []domain.SectionResult, meta domain.ReportMetadata) (report *domain.Report) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("aggregation failed: %v", r)
			meta.Error = msg
			report = &domain.Report{
				Sections:       []domain.SectionResult{},
				Statistics:     domain.Statistics{Error: msg},
				OverallChanges: []domain.MajorChange{},
				Metadata:       meta,
			}
		}
	}()

	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now().UTC()
	}

	return &domain.Report{
		Sections:       results,
		Statistics:     calculateStatistics(results),
		OverallChanges: identifyMajorChanges(results),
		Metadata:       meta,
	}
}

// calculateStatistics counts results per change type and impact level and
// derives the changed/unchanged percentages, rounded to one decimal.
func calculateStatistics(results []domain.SectionResult) domain.Statistics {
	stats := domain.Statistics{TotalSections: len(results)}

	for _, r := range results {
		switch r.ChangeType {
		case domain.ChangeUnchanged:
			stats.Unchanged++
		case domain.ChangeModified:
			stats.Modified++
		case domain.ChangeAdded:
			stats.Added++
		case domain.ChangeRemoved:
			stats.Removed++
		}

		switch r.ImpactAnalysis.ImpactLevel {
		case domain.ImpactHigh:
			stats.HighImpact++
		case domain.ImpactMedium:
			stats.MediumImpact++
		case domain.ImpactLow:
			stats.LowImpact++
		}
	}

	if stats.TotalSections > 0 {
		total := float64(stats.TotalSections)
		stats.PercentChanged = round1(float64(stats.TotalSections-stats.Unchanged) / total * 100)
		stats.PercentUnchanged = round1(float64(stats.Unchanged) / total * 100)
	}
	return stats
}

// identifyMajorChanges filters to the significant results, sorts them by
// impact priority (stable, so equal-priority entries keep their original
// order), and truncates to the top 10.
func identifyMajorChanges(results []domain.SectionResult) []domain.MajorChange {
	var major []domain.MajorChange

	for _, r := range results {
		impact := r.ImpactAnalysis.ImpactLevel

		significant := impact == domain.ImpactHigh ||
			r.ChangeType == domain.ChangeAdded ||
			r.ChangeType == domain.ChangeRemoved ||
			(r.ChangeType == domain.ChangeModified && impact == domain.ImpactMedium)
		if !significant {
			continue
		}

		title := r.Title1
		if title == "" {
			title = r.Title2
		}
		if title == "" {
			title = "Unnamed Section"
		}

		major = append(major, domain.MajorChange{
			Title:          title,
			ChangeType:     r.ChangeType,
			ImpactLevel:    impact,
			ChangeCategory: r.ImpactAnalysis.ChangeCategory,
			Summary:        r.Summary,
		})
	}

	sort.SliceStable(major, func(i, j int) bool {
		return major[i].ImpactLevel.Ordinal() > major[j].ImpactLevel.Ordinal()
	})

	if len(major) > maxMajorChanges {
		major = major[:maxMajorChanges]
	}
	return major
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
