package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/roach88/samvada/internal/chat"
	"github.com/roach88/samvada/internal/config"
	"github.com/roach88/samvada/internal/history"
	"github.com/roach88/samvada/internal/logging"
	"github.com/roach88/samvada/internal/provider"
)

// QuickOptions holds flags for the quick command.
type QuickOptions struct {
	*RootOptions
	APIKey         string
	SaveToMarkdown bool
	Dir            string
}

// NewQuickCommand creates the quick command.
func NewQuickCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QuickOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "quick [question]",
		Short: "Ask a one-off question without a chat file",
		Long: `Ask a single question using the configured defaults and print the answer.

The question is taken from the arguments or, when none are given, from
standard input. With --save-to-markdown the exchange is also written to a new
chat file named conversation_YYYYMMDD_HHMMSS.md so it can be continued with
"samvada chat ask".

Example:
  samvada chat quick "What does WAL mode do in SQLite?"
  git diff | samvada chat quick --save-to-markdown`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuick(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.APIKey, "api-key", "", "API key to use and save for later runs")
	cmd.Flags().BoolVar(&opts.SaveToMarkdown, "save-to-markdown", false, "save the exchange to a new chat file")
	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "directory for the saved chat file and the log")

	return cmd
}

func runQuick(opts *QuickOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	question, err := readQuestion(args, cmd.InOrStdin())
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInput, "failed to read question", err)
	}
	if question == "" {
		return formatter.fail(ExitCommandError, ErrCodeInput, "a question is required, as an argument or on standard input", nil)
	}

	configDir, err := opts.configDir()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to resolve config directory", err)
	}
	apiKey, err := resolveAPIKey(formatter, opts.APIKey, configDir)
	if err != nil {
		return err
	}

	logs, err := logging.OpenFile(filepath.Join(opts.Dir, logging.DefaultFile))
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "failed to open log file", err)
	}
	defer logs.Close()
	log := logging.Component(logs.Logger, "quick")

	cfg, err := config.LoadFromDir(configDir)
	if err != nil {
		log.WithError(err).Error("failed to load config")
		return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	client := opts.completer(cfg.APIEndpoint, apiKey, logging.Component(logs.Logger, "provider"))
	resp, err := client.Complete(cmd.Context(), provider.Request{
		Model: cfg.Model,
		Messages: provider.BuildMessages(cfg.SystemPrompt, []chat.Turn{
			{Role: chat.RoleUser, Content: question},
		}),
	})
	if err != nil {
		log.WithError(err).Error("request failed")
		return formatter.fail(ExitFailure, ErrCodeProvider, "request failed", err)
	}
	answer, err := resp.Answer()
	if err != nil {
		log.WithError(err).Error("no answer in response")
		return formatter.fail(ExitFailure, ErrCodeProvider, "request failed", err)
	}

	meta := resp.Metadata()
	if meta.Model == "" {
		meta.Model = cfg.Model
	}

	result := AnswerResult{
		Answer:      answer,
		Model:       meta.Model,
		ResponseID:  meta.ID,
		TotalTokens: meta.TotalTokens,
	}

	if opts.SaveToMarkdown {
		path, err := saveConversation(opts, cfg, question, answer, meta)
		if err != nil {
			log.WithError(err).Error("failed to save conversation")
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "failed to save conversation", err)
		}
		result.ChatPath = path
		log.WithField("path", path).Info("conversation saved")
		formatter.VerboseLog("Saved conversation to %s", path)
	}

	ex := history.Exchange{
		Model:       meta.Model,
		ResponseID:  meta.ID,
		TotalTokens: meta.TotalTokens,
		Question:    question,
		Answer:      answer,
	}
	if result.ChatPath != "" {
		ex.ChatPath = absPath(result.ChatPath)
	}
	opts.recordExchange(cmd.Context(), configDir, ex, log)

	return outputAnswer(formatter, result)
}

// readQuestion joins the arguments, or reads in when there are none and it is
// not an interactive terminal.
func readQuestion(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	if in == nil {
		return "", nil
	}
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return "", nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// saveConversation writes a new chat file holding the exchange.
func saveConversation(opts *QuickOptions, cfg *config.Config, question, answer string, meta chat.ResponseMetadata) (string, error) {
	name := "conversation_" + opts.now().Format("20060102_150405")
	path, err := chat.Create(chat.CreateOptions{
		Name:        name,
		Dir:         opts.Dir,
		System:      cfg.SystemPrompt,
		Model:       cfg.Model,
		APIEndpoint: cfg.APIEndpoint,
		Now:         opts.now(),
	})
	if err != nil {
		return "", err
	}
	if err := chat.AppendConversation(path, question, answer, meta); err != nil {
		return "", fmt.Errorf("write conversation: %w", err)
	}
	return path, nil
}
