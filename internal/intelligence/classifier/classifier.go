// Package classifier turns match records into classified section results.
// Unchanged pairs are detected locally without consulting the oracle; for
// everything else the oracle supplies summaries and impact classifications,
// and any oracle failure is replaced by a labeled placeholder so the overall
// report always completes.  The word-level diff is computed independently of
// the oracle and renders even when it is down.
package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/internal/intelligence/oracle"
	"github.com/turtacn/policylens/internal/intelligence/worddiff"
)

// Fixed classifications for structural changes.
var (
	addedImpact = comparison.ImpactAnalysis{
		ImpactLevel:       comparison.ImpactMedium,
		ChangeCategory:    comparison.CategoryAddition,
		StakeholderImpact: "New requirements or provisions added",
	}
	removedImpact = comparison.ImpactAnalysis{
		ImpactLevel:       comparison.ImpactHigh,
		ChangeCategory:    comparison.CategoryRemoval,
		StakeholderImpact: "Previous requirements or provisions removed",
	}
)

// unchangedSummary is used verbatim for sections with no content change.
const unchangedSummary = "No changes detected in this section."

// Classifier classifies one match record at a time.  It is stateless and
// safe for concurrent use across disjoint records.
type Classifier struct {
	oracle oracle.TextOracle
	log    logging.Logger
}

// New builds a Classifier.  A nil oracle is replaced with the heuristic one,
// a nil logger with a nop logger.
func New(o oracle.TextOracle, log logging.Logger) *Classifier {
	if o == nil {
		o = oracle.NewHeuristic()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Classifier{oracle: o, log: log.Named("classifier")}
}

// OracleName reports which oracle the classifier was built with.
func (c *Classifier) OracleName() string { return c.oracle.Name() }

// Classify produces the SectionResult for one match record.  It never fails;
// the returned Degradation is non-nil when an oracle call was replaced by a
// placeholder.
func (c *Classifier) Classify(ctx context.Context, rec comparison.MatchRecord) (comparison.SectionResult, *comparison.Degradation) {
	if err := rec.Validate(); err != nil {
		c.log.Error("invalid match record", logging.Err(err))
		return comparison.SectionResult{
			MatchType:  rec.MatchType,
			ChangeType: comparison.ChangeError,
			Summary:    fmt.Sprintf("invalid match record: %v", err),
		}, &comparison.Degradation{Stage: comparison.StageClassify, Reason: err.Error()}
	}

	result := comparison.SectionResult{
		MatchType:  rec.MatchType,
		Similarity: rec.Similarity,
	}
	if rec.Section1 != nil {
		result.Title1 = rec.Section1.Title
		result.Content1 = rec.Section1.Content
	}
	if rec.Section2 != nil {
		result.Title2 = rec.Section2.Title
		result.Content2 = rec.Section2.Content
	}

	switch rec.MatchType {
	case comparison.MatchMatched:
		return c.classifyMatched(ctx, result)
	case comparison.MatchAdded:
		return c.classifyAdded(ctx, result)
	default:
		return c.classifyRemoved(ctx, result)
	}
}

func (c *Classifier) classifyMatched(ctx context.Context, result comparison.SectionResult) (comparison.SectionResult, *comparison.Degradation) {
	result.DiffHTML = worddiff.HTML(result.Content1, result.Content2)

	if strings.TrimSpace(result.Content1) == strings.TrimSpace(result.Content2) {
		result.ChangeType = comparison.ChangeUnchanged
		result.Summary = unchangedSummary
		return result, nil
	}

	result.ChangeType = comparison.ChangeModified

	var reasons []string

	summary, err := c.oracle.ExplainChange(ctx, result.Content1, result.Content2)
	if err != nil {
		c.log.Warn("oracle explain failed", logging.String("section", result.Title()), logging.Err(err))
		summary = fmt.Sprintf("[analysis unavailable] change explanation failed: %v", err)
		reasons = append(reasons, "explain: "+err.Error())
	}
	result.Summary = summary

	impact, err := c.oracle.ClassifyChange(ctx, result.Content1, result.Content2)
	if err != nil {
		c.log.Warn("oracle classify failed", logging.String("section", result.Title()), logging.Err(err))
		impact = comparison.ImpactAnalysis{
			ImpactLevel:       comparison.ImpactUnknown,
			ChangeCategory:    comparison.CategoryOther,
			StakeholderImpact: fmt.Sprintf("[analysis unavailable] classification failed: %v", err),
		}
		reasons = append(reasons, "classify: "+err.Error())
	}
	result.ImpactAnalysis = impact

	if len(reasons) > 0 {
		return result, &comparison.Degradation{
			Stage:  comparison.StageClassify,
			Reason: fmt.Sprintf("oracle %s: %s", c.oracle.Name(), strings.Join(reasons, "; ")),
		}
	}
	return result, nil
}

func (c *Classifier) classifyAdded(ctx context.Context, result comparison.SectionResult) (comparison.SectionResult, *comparison.Degradation) {
	result.ChangeType = comparison.ChangeAdded
	result.DiffHTML = worddiff.AddedBlock(result.Content2)
	result.ImpactAnalysis = addedImpact

	summary, err := c.oracle.Summarize(ctx, result.Content2, oracle.ModeAdded)
	if err != nil {
		c.log.Warn("oracle summarize failed", logging.String("section", result.Title2), logging.Err(err))
		result.Summary = fmt.Sprintf("[analysis unavailable] summary failed for added section: %v", err)
		return result, &comparison.Degradation{
			Stage:  comparison.StageClassify,
			Reason: fmt.Sprintf("oracle %s: summarize added: %v", c.oracle.Name(), err),
		}
	}
	result.Summary = summary
	return result, nil
}

func (c *Classifier) classifyRemoved(ctx context.Context, result comparison.SectionResult) (comparison.SectionResult, *comparison.Degradation) {
	result.ChangeType = comparison.ChangeRemoved
	result.DiffHTML = worddiff.RemovedBlock(result.Content1)
	result.ImpactAnalysis = removedImpact

	summary, err := c.oracle.Summarize(ctx, result.Content1, oracle.ModeRemoved)
	if err != nil {
		c.log.Warn("oracle summarize failed", logging.String("section", result.Title1), logging.Err(err))
		result.Summary = fmt.Sprintf("[analysis unavailable] summary failed for removed section: %v", err)
		return result, &comparison.Degradation{
			Stage:  comparison.StageClassify,
			Reason: fmt.Sprintf("oracle %s: summarize removed: %v", c.oracle.Name(), err),
		}
	}
	result.Summary = summary
	return result, nil
}
