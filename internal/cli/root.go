package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/samvada/internal/config"
	"github.com/roach88/samvada/internal/history"
	"github.com/roach88/samvada/internal/logging"
	"github.com/roach88/samvada/internal/provider"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// ConfigDir overrides the configuration directory (for testing).
	// If empty, config.Dir() is used.
	ConfigDir string

	// NewCompleter overrides the provider client (for testing).
	// If nil, provider.NewClient is used.
	NewCompleter func(endpoint, apiKey string, log *logrus.Entry) provider.Completer

	// Now overrides the clock (for testing).
	Now func() time.Time

	// IDGenerator overrides the history id generator (for testing).
	// If nil, history.UUIDv7Generator is used.
	IDGenerator history.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the samvada CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "samvada",
		Short: "samvada - conversations as markdown files",
		Long: `A command-line tool for chatting with language models through plain
markdown files. Each chat is a document with a frontmatter block followed by
alternating user: and assistant: turns.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewChatCommand(opts))

	return cmd
}

// NewChatCommand groups the chat file commands.
func NewChatCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Create, check and continue chat files",
	}

	cmd.AddCommand(NewCreateCommand(rootOpts))
	cmd.AddCommand(NewLintCommand(rootOpts))
	cmd.AddCommand(NewParseCommand(rootOpts))
	cmd.AddCommand(NewAskCommand(rootOpts))
	cmd.AddCommand(NewQuickCommand(rootOpts))
	cmd.AddCommand(NewHistoryCommand(rootOpts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// configDir returns the configuration directory, creating it if needed.
func (o *RootOptions) configDir() (string, error) {
	if o.ConfigDir == "" {
		return config.Dir()
	}
	if err := os.MkdirAll(o.ConfigDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return o.ConfigDir, nil
}

func (o *RootOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *RootOptions) completer(endpoint, apiKey string, log *logrus.Entry) provider.Completer {
	if o.NewCompleter != nil {
		return o.NewCompleter(endpoint, apiKey, log)
	}
	return provider.NewClient(endpoint, apiKey, log)
}

// debugLogger returns a stderr logger when verbose, otherwise a discarding one.
func (o *RootOptions) debugLogger(cmd *cobra.Command, component string) *logrus.Entry {
	if !o.Verbose {
		return logging.Nop()
	}
	return logging.Component(logging.New(cmd.ErrOrStderr(), logrus.DebugLevel), component)
}

// openHistory opens the exchange ledger, at dbPath or inside the
// configuration directory.
func (o *RootOptions) openHistory(configDir, dbPath string) (*history.Store, error) {
	if dbPath == "" {
		dbPath = filepath.Join(configDir, history.FileName)
	}
	var opts []history.Option
	if o.IDGenerator != nil {
		opts = append(opts, history.WithIDGenerator(o.IDGenerator))
	}
	if o.Now != nil {
		opts = append(opts, history.WithClock(o.Now))
	}
	return history.Open(dbPath, opts...)
}

// recordExchange appends ex to the ledger. Failures are logged and otherwise
// ignored; the chat file is the source of truth.
func (o *RootOptions) recordExchange(ctx context.Context, configDir string, ex history.Exchange, log *logrus.Entry) {
	store, err := o.openHistory(configDir, "")
	if err != nil {
		log.WithError(err).Warn("history unavailable")
		return
	}
	defer store.Close()

	saved, err := store.Record(ctx, ex)
	if err != nil {
		log.WithError(err).Warn("failed to record exchange")
		return
	}
	log.WithFields(logrus.Fields{"id": saved.ID, "seq": saved.Seq}).Debug("recorded exchange")
}

// resolveAPIKey saves a key given on the command line, then resolves the key
// from every source.
func resolveAPIKey(formatter *OutputFormatter, flagKey, configDir string) (string, error) {
	if flagKey != "" {
		path, err := config.SaveAPIKey(configDir, flagKey)
		if err != nil {
			return "", formatter.fail(ExitCommandError, ErrCodeWriteFailed, "failed to save API key", err)
		}
		formatter.VerboseLog("Saved API key to %s", path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to get working directory", err)
	}
	sources, err := config.GatherKeySources(flagKey, cwd, configDir)
	if err != nil {
		return "", formatter.fail(ExitCommandError, ErrCodeConfig, "failed to read env file", err)
	}
	key, source, err := config.ResolveAPIKey(sources)
	if err != nil {
		_ = formatter.Error(ErrCodeAPIKey, config.MissingKeyHelp, nil)
		return "", reported(WrapExitError(ExitCommandError, "missing API key", err))
	}
	formatter.VerboseLog("Using API key from %s", source)
	return key, nil
}
