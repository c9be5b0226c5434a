// Package cli implements the policylens command line interface on cobra.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/policylens/internal/config"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/pkg/errors"
)

// Set at build time through -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const rootLong = `PolicyLens compares two versions of a policy document, matches their
sections semantically, classifies every change, and produces a ranked
report of the most significant differences.`

// RootOptions collects the persistent flag values shared by every subcommand.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
}

// CLIContext is what subcommands receive after global initialization ran:
// loaded config, a ready logger, and the resolved output preferences.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
}

type cliContextKey struct{}

// GetCLIContext retrieves the CLIContext installed by the root command's
// PersistentPreRunE.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	if cmd.Context() == nil {
		return nil, errors.NewValidationError("context", "command context is nil")
	}
	cc, _ := cmd.Context().Value(cliContextKey{}).(*CLIContext)
	if cc == nil {
		return nil, errors.NewValidationError("context", "CLIContext not found in command context")
	}
	return cc, nil
}

// NewRootCommand assembles the policylens command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	root := &cobra.Command{
		Use:           "policylens",
		Short:         "PolicyLens CLI — compare policy documents and explain what changed",
		Long:          rootLong,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(opts)
			if err != nil {
				return fmt.Errorf("config initialization failed: %w", err)
			}

			// Log to stderr in console format so stdout stays parseable.
			level := opts.LogLevel
			if opts.Verbose {
				level = "debug"
			}
			logger, err := logging.NewLogger(logging.LogConfig{
				Level:            level,
				Format:           "console",
				OutputPaths:      []string{"stderr"},
				ErrorOutputPaths: []string{"stderr"},
			})
			if err != nil {
				return fmt.Errorf("logger initialization failed: %w", err)
			}

			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, &CLIContext{
				Config:       cfg,
				Logger:       logger,
				OutputFormat: opts.OutputFormat,
				Verbose:      opts.Verbose,
				Timeout:      opts.Timeout,
			}))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./policylens.yaml)")
	flags.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	flags.DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "global operation timeout")

	root.AddCommand(
		NewCompareCmd(),
		NewInspectCmd(),
	)
	return root
}

// resolveConfig loads an explicit --config path, or the first config file
// found in the standard locations. Running with no config file at all is
// fine for CLI use; defaults apply.
func resolveConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	candidates := []string{"./policylens.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".policylens", "config.yaml"))
	}
	candidates = append(candidates, "/etc/policylens/config.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return config.Load(path)
		}
	}
	return config.NewDefaultConfig(), nil
}

// Execute runs the CLI and reports any failure on stderr.
func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	if err != nil {
		PrintError(root, err)
	}
	return err
}

// tableProvider is implemented by result views that can render as a table.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult writes data to the command's stdout in the format chosen by
// the global --output flag.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	format := "text"
	if cc, err := GetCLIContext(cmd); err == nil {
		format = cc.OutputFormat
	}
	out := cmd.OutOrStdout()

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "table":
		if tp, ok := data.(tableProvider); ok {
			fmt.Fprint(out, FormatTable(tp.TableHeaders(), tp.TableRows()))
			return nil
		}
	}

	switch v := data.(type) {
	case string:
		fmt.Fprintln(out, v)
	case fmt.Stringer:
		fmt.Fprintln(out, v.String())
	default:
		fmt.Fprintf(out, "%+v\n", v)
	}
	return nil
}

// PrintError writes err to the command's stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// FormatTable renders an aligned two-space-separated table with a dashed
// underline below the header row.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	widths := make([]int, len(headers))
	for col, h := range headers {
		widths[col] = len(h)
		for _, row := range rows {
			if col < len(row) && len(row[col]) > widths[col] {
				widths[col] = len(row[col])
			}
		}
	}

	cell := func(col int, s string) string {
		if col == len(widths)-1 {
			return s
		}
		return fmt.Sprintf("%-*s", widths[col], s)
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for col := range widths {
			if col > 0 {
				b.WriteString("  ")
			}
			s := ""
			if col < len(cells) {
				s = cells[col]
			}
			b.WriteString(cell(col, s))
		}
		b.WriteByte('\n')
	}

	writeRow(headers)
	underline := make([]string, len(widths))
	for col, w := range widths {
		underline[col] = strings.Repeat("-", w)
	}
	writeRow(underline)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}
