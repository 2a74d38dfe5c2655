package chat

import "strings"

// Lines is a restartable cursor over the physical lines of a text buffer.
//
// Lines are split on "\n" with a trailing "\r" removed, so CRLF files read
// the same as LF files. A terminating newline does not produce a final empty
// line.
type Lines struct {
	lines []string
	pos   int
}

// NewLines splits text into lines.
func NewLines(text string) *Lines {
	if text == "" {
		return &Lines{}
	}
	raw := strings.Split(text, "\n")
	if raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	for i, line := range raw {
		raw[i] = strings.TrimSuffix(line, "\r")
	}
	return &Lines{lines: raw}
}

// Next returns the next line and advances the cursor.
// The second return value is false once all lines have been consumed.
func (l *Lines) Next() (string, bool) {
	if l.pos >= len(l.lines) {
		return "", false
	}
	line := l.lines[l.pos]
	l.pos++
	return line, true
}

// Pos returns the 1-based number of the line most recently returned by Next.
func (l *Lines) Pos() int {
	return l.pos
}

// Remaining returns the lines not yet consumed, without advancing.
func (l *Lines) Remaining() []string {
	return l.lines[l.pos:]
}

// Reset rewinds the cursor to the first line.
func (l *Lines) Reset() {
	l.pos = 0
}

// Len returns the total number of lines.
func (l *Lines) Len() int {
	return len(l.lines)
}
