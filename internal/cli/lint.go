package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/samvada/internal/lint"
)

// LintOptions holds flags for the lint command.
type LintOptions struct {
	*RootOptions
	Extensions []string
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lint <path>",
		Short: "Check chat files for structural problems",
		Long: `Check a chat file, or every file in a directory, for structural problems.

Checks, in order:
  L000  the file can be read
  L001  every template key is present with a value
  L002  there is content after the frontmatter
  L003  the first turn is user:
  L004  user: and assistant: turns alternate
  L005  the last non-empty line starts with user:
  L006  every [[path]] reference in a user turn exists

A directory is scanned without recursion and every file is reported.

Example:
  samvada chat lint notes.md
  samvada chat lint ./chats --ext .md`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Extensions, "ext", nil, "only check files with these extensions (e.g. .md)")

	return cmd
}

func runLint(opts *LintOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	linter := lint.New(
		lint.WithExtensions(opts.Extensions...),
		lint.WithLogger(opts.debugLogger(cmd, "lint")),
	)

	report, err := linter.Validate(path)
	if errors.Is(err, lint.ErrPathNotFound) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("path not found: %s", path), nil)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to lint", err)
	}

	formatter.VerboseLog("Checked %d file(s) in %s", len(report.Files), path)

	if report.Valid() {
		return outputLintSuccess(formatter, report)
	}
	return outputLintFailure(formatter, report)
}

func outputLintSuccess(formatter *OutputFormatter, report *lint.Report) error {
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	for _, f := range report.Files {
		fmt.Fprintf(formatter.Writer, "%s %s is valid\n", formatter.Pass(), f.Path)
	}
	writeLintSummary(formatter, report)
	return nil
}

func outputLintFailure(formatter *OutputFormatter, report *lint.Report) error {
	summary := fmt.Sprintf("%d of %d file(s) invalid", report.InvalidCount(), len(report.Files))

	if formatter.Format == "json" {
		diags := report.Diagnostics()
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   report,
			Error: &CLIError{
				Code:    diags[0].Code,
				Message: summary,
			},
		}); err != nil {
			return err
		}
		return reported(NewExitError(ExitFailure, "lint failed: "+summary))
	}

	for _, f := range report.Files {
		if f.Valid {
			fmt.Fprintf(formatter.Writer, "%s %s is valid\n", formatter.Pass(), f.Path)
			continue
		}
		fmt.Fprintf(formatter.Writer, "%s %s is invalid:\n", formatter.Fail(), f.Path)
		for _, d := range f.Diagnostics {
			if d.Line > 0 {
				fmt.Fprintf(formatter.Writer, "  line %d: %s %s\n", d.Line, d.Code, d.Message)
			} else {
				fmt.Fprintf(formatter.Writer, "  %s %s\n", d.Code, d.Message)
			}
		}
	}
	writeLintSummary(formatter, report)

	// Lint failures = exit code 1 (validation failure)
	return reported(NewExitError(ExitFailure, "lint failed: "+summary))
}

func writeLintSummary(formatter *OutputFormatter, report *lint.Report) {
	fmt.Fprintf(formatter.Writer, "\n%d file(s) checked, %d invalid\n", len(report.Files), report.InvalidCount())
}
