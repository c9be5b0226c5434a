package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	appcomparison "github.com/turtacn/policylens/internal/application/comparison"
	domain "github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/domain/document"
	"github.com/turtacn/policylens/internal/infrastructure/docpipe"
	"github.com/turtacn/policylens/internal/infrastructure/llm"
	"github.com/turtacn/policylens/internal/intelligence/matcher"
	"github.com/turtacn/policylens/internal/intelligence/oracle"
)

// NewCompareCmd creates the compare command, which runs the full comparison
// pipeline locally against two document files.
func NewCompareCmd() *cobra.Command {
	var (
		useLLM  bool
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "compare OLD_FILE NEW_FILE",
		Short: "Compare two versions of a policy document",
		Long:  "Extract sections from both files, match them semantically, classify\nevery change, and print a ranked change report.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			text1, err := readDocumentFile(ctx, cliCtx, args[0])
			if err != nil {
				return err
			}
			text2, err := readDocumentFile(ctx, cliCtx, args[1])
			if err != nil {
				return err
			}

			var scorer matcher.SimilarityScorer
			var textOracle oracle.TextOracle
			if useLLM {
				if !cliCtx.Config.LLM.Enabled {
					return fmt.Errorf("--llm requires llm.enabled in the configuration")
				}
				scorer = llm.NewEmbeddingScorer(cliCtx.Config.LLM, cliCtx.Logger)
				textOracle = llm.NewOracle(cliCtx.Config.LLM, cliCtx.Logger)
			}

			pipeline := appcomparison.NewPipeline(scorer, textOracle, cliCtx.Logger,
				appcomparison.WithConcurrency(cliCtx.Config.Pipeline.ClassifyConcurrency))

			report := pipeline.Run(ctx, text1, text2, filepath.Base(args[0]), filepath.Base(args[1]))
			if report.Failed() {
				return fmt.Errorf("comparison failed: %s", report.Metadata.Error)
			}

			if outFile != "" {
				return writeReportFile(cmd, report, outFile)
			}
			return PrintResult(cmd, &reportView{report: report})
		},
	}

	cmd.Flags().BoolVar(&useLLM, "llm", false, "use the configured language model for matching and classification")
	cmd.Flags().StringVar(&outFile, "file", "", "write the full JSON report to a file instead of stdout")

	return cmd
}

// readDocumentFile opens path, infers its document type from the extension,
// and extracts plain text from it.
func readDocumentFile(ctx context.Context, cliCtx *CLIContext, path string) (string, error) {
	docType, err := document.TypeForFilename(path)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	extractor := docpipe.New(cliCtx.Logger)
	text, err := extractor.ExtractText(ctx, f, docType)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s contains no extractable text", path)
	}
	return text, nil
}

// writeReportFile persists the report as indented JSON.
func writeReportFile(cmd *cobra.Command, report *domain.Report, path string) error {
	data, err := marshalReportJSON(report)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
	return nil
}

func marshalReportJSON(report *domain.Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return data, nil
}

// reportView adapts a domain report to the CLI output helpers: String for
// text mode, TableHeaders/TableRows for table mode, and transparent JSON.
type reportView struct {
	report *domain.Report
}

func (v *reportView) MarshalJSON() ([]byte, error) {
	return marshalReportJSON(v.report)
}

func (v *reportView) String() string {
	r := v.report
	var sb strings.Builder

	sb.WriteString("Policy Comparison Report\n")
	sb.WriteString("========================\n\n")

	st := r.Statistics
	fmt.Fprintf(&sb, "Sections:   %d total\n", st.TotalSections)
	fmt.Fprintf(&sb, "  unchanged %d, modified %d, added %d, removed %d\n",
		st.Unchanged, st.Modified, st.Added, st.Removed)
	fmt.Fprintf(&sb, "Impact:     high %d, medium %d, low %d\n",
		st.HighImpact, st.MediumImpact, st.LowImpact)
	fmt.Fprintf(&sb, "Changed:    %.1f%%\n", st.PercentChanged)

	if len(r.OverallChanges) > 0 {
		sb.WriteString("\nMajor changes:\n")
		for i, mc := range r.OverallChanges {
			fmt.Fprintf(&sb, "  %d. [%s/%s] %s\n", i+1, mc.ImpactLevel, mc.ChangeType, mc.Title)
			if mc.Summary != "" {
				fmt.Fprintf(&sb, "     %s\n", mc.Summary)
			}
		}
	}

	if r.Summary != "" {
		sb.WriteString("\nSummary:\n")
		fmt.Fprintf(&sb, "  %s\n", r.Summary)
	}

	if r.Degraded() {
		sb.WriteString("\nDegradations:\n")
		for _, d := range r.Metadata.Degradations {
			fmt.Fprintf(&sb, "  %s: %s\n", d.Stage, d.Reason)
		}
	}

	return sb.String()
}

func (v *reportView) TableHeaders() []string {
	return []string{"SECTION", "CHANGE", "IMPACT", "SIMILARITY"}
}

func (v *reportView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.report.Sections))
	for _, s := range v.report.Sections {
		impact := string(s.ImpactAnalysis.ImpactLevel)
		if impact == "" {
			impact = "-"
		}
		rows = append(rows, []string{
			truncateCell(s.Title(), 48),
			string(s.ChangeType),
			impact,
			fmt.Sprintf("%.2f", s.Similarity),
		})
	}
	return rows
}

func truncateCell(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
