package chat

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// CreatedLayout is the timestamp layout of the created metadata comment.
const CreatedLayout = "2006-01-02 15:04:05 -07:00"

// ResponseMetadata describes a model response. It is written below the
// assistant turn as one-line HTML comments that the parser ignores.
type ResponseMetadata struct {
	Model       string
	ID          string
	Created     time.Time
	TotalTokens int64
}

func (m ResponseMetadata) created() time.Time {
	if m.Created.IsZero() {
		return time.Now()
	}
	return m.Created
}

// Comments renders the full metadata block.
func (m ResponseMetadata) Comments() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<!-- model: %s -->\n", m.Model)
	fmt.Fprintf(&b, "<!-- id: %s -->\n", m.ID)
	fmt.Fprintf(&b, "<!-- created: %s -->\n", m.created().Local().Format(CreatedLayout))
	fmt.Fprintf(&b, "<!-- total_tokens: %d -->\n", m.TotalTokens)
	return b.String()
}

// AnswerBlock is the text appended after an "ask": the assistant turn, its
// metadata, and a fresh empty user turn.
func AnswerBlock(answer string, meta ResponseMetadata) string {
	return "\n\n" + AssistantPrefix + "\n" + answer + "\n\n" + meta.Comments() + "\n" + UserPrefix + "\n"
}

// ConversationBlock is the text appended when saving a one-off exchange.
func ConversationBlock(question, answer string, meta ResponseMetadata) string {
	var b strings.Builder
	b.WriteString("\n" + UserPrefix + "\n" + question + "\n\n")
	b.WriteString(AssistantPrefix + "\n" + answer + "\n\n")
	fmt.Fprintf(&b, "<!-- id: %s -->\n", meta.ID)
	fmt.Fprintf(&b, "<!-- total_tokens: %d -->\n", meta.TotalTokens)
	b.WriteString("\n" + UserPrefix + "\n")
	return b.String()
}

// AppendAnswer appends an assistant turn to the chat file at path.
func AppendAnswer(path, answer string, meta ResponseMetadata) error {
	return appendText(path, AnswerBlock(answer, meta))
}

// AppendConversation appends a user question and its answer to path.
func AppendConversation(path, question, answer string, meta ResponseMetadata) error {
	return appendText(path, ConversationBlock(question, answer, meta))
}

func appendText(path, text string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("open chat file for append: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("append to chat file: %w", err)
	}
	return f.Close()
}
