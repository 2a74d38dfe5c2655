package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/samvada/internal/chat"
	"github.com/roach88/samvada/internal/config"
	"github.com/roach88/samvada/internal/history"
	"github.com/roach88/samvada/internal/logging"
	"github.com/roach88/samvada/internal/provider"
)

// AskOptions holds flags for the ask command.
type AskOptions struct {
	*RootOptions
	APIKey string
}

// AnswerResult is the JSON payload of the ask and quick commands.
type AnswerResult struct {
	Answer      string `json:"answer"`
	Model       string `json:"model"`
	ResponseID  string `json:"response_id,omitempty"`
	TotalTokens int64  `json:"total_tokens"`
	ChatPath    string `json:"chat_path,omitempty"`
}

// NewAskCommand creates the ask command.
func NewAskCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AskOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ask <file>",
		Short: "Send a chat file to the model and append the answer",
		Long: `Send the conversation in <file> to the model named in its frontmatter and
append the answer as a new assistant: turn, followed by an empty user: turn.

The API key is taken from --api-key (which is also saved for later runs), a
.env file in the working directory, the saved key, or OPENAI_API_KEY, in
that order. A log of the request is written next to the chat as <name>.log.

Example:
  samvada chat ask notes.md
  samvada chat ask notes.md --api-key sk-...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.APIKey, "api-key", "", "API key to use and save for later runs")

	return cmd
}

func runAsk(opts *AskOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	configDir, err := opts.configDir()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to resolve config directory", err)
	}
	apiKey, err := resolveAPIKey(formatter, opts.APIKey, configDir)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("file not found: %s", path), nil)
	}

	logs, err := logging.NewFileLogger(path)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "failed to open log file", err)
	}
	defer logs.Close()
	log := logging.Component(logs.Logger, "ask")
	formatter.VerboseLog("Logging to %s", logs.Path)

	cfg, err := config.LoadFromDir(configDir)
	if err != nil {
		log.WithError(err).Error("failed to load config")
		return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	parser := chat.NewParser(
		chat.WithDefaults(cfg.Fields()),
		chat.WithMode(chat.ModeFailFast),
		chat.WithLogger(logging.Component(logs.Logger, "parser")),
	)
	doc, err := parser.ParseFile(path)
	if err != nil {
		log.WithError(err).Error("failed to parse chat file")
		var refErr *chat.ReferenceError
		if errors.As(err, &refErr) {
			return formatter.fail(ExitFailure, ErrCodeReference, "failed to read file reference", err)
		}
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to parse chat file", err)
	}

	log.WithFields(logrus.Fields{
		"path":     path,
		"model":    doc.Model(),
		"endpoint": doc.APIEndpoint(),
		"turns":    len(doc.Turns),
	}).Info("asking")

	client := opts.completer(doc.APIEndpoint(), apiKey, logging.Component(logs.Logger, "provider"))
	resp, err := client.Complete(cmd.Context(), provider.Request{
		Model:    doc.Model(),
		Messages: provider.BuildMessages(doc.SystemPrompt(), doc.Turns),
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
		meta.Model = doc.Model()
	}
	if meta.Created.IsZero() {
		meta.Created = opts.now()
	}
	if err := chat.AppendAnswer(path, answer, meta); err != nil {
		log.WithError(err).Error("failed to append answer")
		return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "failed to append answer", err)
	}
	log.WithField("id", meta.ID).Info("answer appended")

	question := ""
	if last := doc.LastTurn(); last != nil && last.Role == chat.RoleUser {
		question = last.Content
	}
	opts.recordExchange(cmd.Context(), configDir, history.Exchange{
		ChatPath:    absPath(path),
		Model:       meta.Model,
		ResponseID:  meta.ID,
		TotalTokens: meta.TotalTokens,
		Question:    question,
		Answer:      answer,
	}, log)

	return outputAnswer(formatter, AnswerResult{
		Answer:      answer,
		Model:       meta.Model,
		ResponseID:  meta.ID,
		TotalTokens: meta.TotalTokens,
		ChatPath:    path,
	})
}

func outputAnswer(formatter *OutputFormatter, result AnswerResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, result.Answer)
	return nil
}

// absPath is used for ledger keys so that the same chat matches however it
// was named on the command line.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
