package chat

import (
	"errors"
	"strings"
)

// Role identifies the speaker of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn-start prefixes. They must appear at column 0.
const (
	UserPrefix      = "user:"
	AssistantPrefix = "assistant:"
)

// Comment and metadata markers filtered out of turn content.
const (
	userCommentPrefix = "<c>"
	metadataOpen      = "<!--"
	metadataClose     = "-->"
)

// Turn is one message of the conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Mode controls how reference expansion failures are handled.
type Mode int

const (
	// ModeFailFast stops at the first reference that cannot be read.
	ModeFailFast Mode = iota
	// ModeCollectAll keeps parsing with placeholders and returns every failure.
	ModeCollectAll
)

// ExpandFunc expands a whole-line [[path]] token into turn content.
type ExpandFunc func(token string) (string, error)

// TurnStart reports whether line opens a new turn, returning the role and the
// trimmed text following the colon.
func TurnStart(line string) (Role, string, bool) {
	switch {
	case strings.HasPrefix(line, UserPrefix):
		return RoleUser, strings.TrimSpace(line[len(UserPrefix):]), true
	case strings.HasPrefix(line, AssistantPrefix):
		return RoleAssistant, strings.TrimSpace(line[len(AssistantPrefix):]), true
	default:
		return "", "", false
	}
}

// IsUserComment reports whether a user-turn line is an inline <c> annotation.
func IsUserComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), userCommentPrefix)
}

// IsMetadataComment reports whether an assistant-turn line is a complete
// one-line HTML comment such as "<!-- id: abc -->".
func IsMetadataComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, metadataOpen) && strings.HasSuffix(trimmed, metadataClose)
}

// messageBuilder accumulates the turn currently being read.
type messageBuilder struct {
	turns   []Turn
	role    Role
	content strings.Builder
}

func (b *messageBuilder) finish() {
	if b.role == "" {
		return
	}
	b.turns = append(b.turns, Turn{Role: b.role, Content: strings.TrimSpace(b.content.String())})
	b.content.Reset()
}

func (b *messageBuilder) start(role Role, initial string) {
	b.role = role
	b.content.Reset()
	b.content.WriteString(initial)
}

func (b *messageBuilder) appendLine(line string) {
	if b.content.Len() > 0 {
		b.content.WriteByte('\n')
	}
	b.content.WriteString(strings.TrimSpace(line))
}

// ParseMessages splits the lines following the frontmatter into turns.
//
// A nil expand leaves reference lines in place as ordinary content. In
// ModeFailFast the first expansion error is returned with no turns; in
// ModeCollectAll the placeholder text is kept and all errors are joined.
func ParseMessages(lines *Lines, expand ExpandFunc, mode Mode) ([]Turn, error) {
	b := &messageBuilder{}
	var errs []error

	for {
		line, ok := lines.Next()
		if !ok {
			break
		}
		if role, initial, isStart := TurnStart(line); isStart {
			b.finish()
			b.start(role, initial)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch b.role {
		case RoleUser:
			if IsUserComment(line) {
				continue
			}
			if expand != nil && IsReferenceLine(line) {
				text, err := expand(strings.TrimSpace(line))
				b.content.WriteString(text)
				if err != nil {
					if mode == ModeFailFast {
						return nil, err
					}
					errs = append(errs, err)
				}
				continue
			}
			b.appendLine(line)
		case RoleAssistant:
			if IsMetadataComment(line) {
				continue
			}
			b.appendLine(line)
		}
	}

	b.finish()
	return b.turns, errors.Join(errs...)
}
