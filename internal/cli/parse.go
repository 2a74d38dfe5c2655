package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/samvada/internal/chat"
	"github.com/roach88/samvada/internal/config"
)

// ParseResult is the JSON payload of the parse command.
type ParseResult struct {
	Document *chat.Document `json:"document"`
	Warnings []string       `json:"warnings,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Show how a chat file is read",
		Long: `Parse a chat file and print its frontmatter and turns exactly as they
would be sent to the model: configuration defaults applied, comments and
metadata removed, file references expanded.

References that cannot be read are reported as warnings and shown as
placeholders; the rest of the document is still printed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runParse(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	configDir, err := opts.configDir()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to resolve config directory", err)
	}
	cfg, err := config.LoadFromDir(configDir)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	parser := chat.NewParser(
		chat.WithDefaults(cfg.Fields()),
		chat.WithMode(chat.ModeCollectAll),
		chat.WithLogger(opts.debugLogger(cmd, "parser")),
	)
	doc, err := parser.ParseFile(path)
	if doc == nil {
		if errors.Is(err, fs.ErrNotExist) {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("file not found: %s", path), nil)
		}
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to parse chat file", err)
	}

	var warnings []string
	for _, e := range splitErrors(err) {
		warnings = append(warnings, e.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(ParseResult{Document: doc, Warnings: warnings})
	}

	w := formatter.Writer
	fmt.Fprintln(w, "Frontmatter:")
	for _, key := range doc.Frontmatter.Keys() {
		fmt.Fprintf(w, "  %s: %s\n", key, doc.Frontmatter[key])
	}
	fmt.Fprintf(w, "\nTurns (%d):\n", len(doc.Turns))
	for i, turn := range doc.Turns {
		fmt.Fprintf(w, "\n[%d] %s:\n%s\n", i+1, turn.Role, turn.Content)
	}
	for _, warning := range warnings {
		fmt.Fprintf(formatter.GetErrWriter(), "warning: %s\n", warning)
	}
	return nil
}

// splitErrors flattens an errors.Join result.
func splitErrors(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
