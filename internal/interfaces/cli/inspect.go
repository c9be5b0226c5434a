package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	domain "github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/intelligence/segmenter"
)

// NewInspectCmd creates the inspect command, which shows how a single
// document splits into sections. Useful for checking whether a file's
// structure is recognized before comparing it.
func NewInspectCmd() *cobra.Command {
	var showContent bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the sections detected in a policy document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			text, err := readDocumentFile(ctx, cliCtx, args[0])
			if err != nil {
				return err
			}

			sections, degradation := segmenter.New(cliCtx.Logger).Extract(text)
			if degradation != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Note: %s\n", degradation.Reason)
			}

			return PrintResult(cmd, &sectionsView{sections: sections, showContent: showContent})
		},
	}

	cmd.Flags().BoolVar(&showContent, "content", false, "include section content in text output")

	return cmd
}

type sectionsView struct {
	sections    []domain.Section
	showContent bool
}

func (v *sectionsView) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.sections)
}

func (v *sectionsView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Detected %d section(s)\n\n", len(v.sections))
	for _, s := range v.sections {
		fmt.Fprintf(&sb, "%3d. %s (%d chars)\n", s.SectionID+1, s.Title, len(s.Content))
		if v.showContent {
			for _, line := range strings.Split(strings.TrimSpace(s.Content), "\n") {
				fmt.Fprintf(&sb, "     %s\n", line)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (v *sectionsView) TableHeaders() []string {
	return []string{"#", "TITLE", "CHARS"}
}

func (v *sectionsView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.sections))
	for _, s := range v.sections {
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.SectionID+1),
			truncateCell(s.Title, 60),
			fmt.Sprintf("%d", len(s.Content)),
		})
	}
	return rows
}
