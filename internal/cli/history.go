package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/samvada/internal/chat"
	"github.com/roach88/samvada/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Chat     string
	Limit    int
	Database string
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Exchanges []history.Exchange `json:"exchanges"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded exchanges",
		Long: `List the exchanges recorded by ask and quick, oldest first.

Example:
  samvada chat history
  samvada chat history --chat notes.md --limit 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Chat, "chat", "", "only show exchanges for this chat file")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show only the most recent N exchanges")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the history database (default: config directory)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Limit < 0 {
		return formatter.fail(ExitCommandError, ErrCodeInput, "--limit must not be negative", nil)
	}

	configDir, err := opts.configDir()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to resolve config directory", err)
	}
	store, err := opts.openHistory(configDir, opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeHistory, "failed to open history", err)
	}
	defer store.Close()

	filter := history.Filter{Limit: opts.Limit}
	if opts.Chat != "" {
		filter.ChatPath = absPath(opts.Chat)
	}
	exchanges, err := store.List(cmd.Context(), filter)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeHistory, "failed to list history", err)
	}
	formatter.VerboseLog("Found %d exchange(s)", len(exchanges))

	if formatter.Format == "json" {
		if exchanges == nil {
			exchanges = []history.Exchange{}
		}
		return formatter.Success(HistoryResult{Exchanges: exchanges})
	}

	if len(exchanges) == 0 {
		fmt.Fprintln(formatter.Writer, "No exchanges recorded")
		return nil
	}
	for _, ex := range exchanges {
		where := ex.ChatPath
		if where == "" {
			where = "(quick)"
		}
		fmt.Fprintf(formatter.Writer, "#%d %s  %s  %s  %d tokens  %s\n",
			ex.Seq,
			ex.CreatedAt.Local().Format(chat.CreatedLayout),
			ex.Model,
			ex.ID,
			ex.TotalTokens,
			where,
		)
		if ex.ResponseID != "" {
			fmt.Fprintf(formatter.Writer, "    response: %s\n", ex.ResponseID)
		}
	}
	return nil
}
