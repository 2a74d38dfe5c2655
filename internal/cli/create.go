package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/samvada/internal/chat"
	"github.com/roach88/samvada/internal/config"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Dir string
}

// CreateResult is the JSON payload of the create command.
type CreateResult struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new chat file",
		Long: `Create <name>.md from the chat template.

The frontmatter is filled from the configuration (system prompt, model and
API endpoint) and the file ends with an empty user: turn ready for your first
question. Existing files are never overwritten.

Example:
  samvada chat create release-notes
  samvada chat create design-review --dir ./chats`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "directory to create the chat file in")

	return cmd
}

func runCreate(opts *CreateOptions, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	name = strings.TrimSuffix(name, ".md")
	if strings.TrimSpace(name) == "" {
		return formatter.fail(ExitCommandError, ErrCodeInput, "chat name is required", nil)
	}

	configDir, err := opts.configDir()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to resolve config directory", err)
	}
	cfg, err := config.LoadFromDir(configDir)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	formatter.VerboseLog("Using model %s from %s", cfg.Model, configDir)

	path, err := chat.Create(chat.CreateOptions{
		Name:        name,
		Dir:         opts.Dir,
		System:      cfg.SystemPrompt,
		Model:       cfg.Model,
		APIEndpoint: cfg.APIEndpoint,
		Now:         opts.now(),
		OpenTurn:    true,
	})
	if errors.Is(err, fs.ErrNotExist) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, "failed to create chat file", err)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "failed to create chat file", err)
	}

	result := CreateResult{Path: path, Title: chat.TitleFromName(name)}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "%s Created chat file: %s\n", formatter.Pass(), path)
	return nil
}
