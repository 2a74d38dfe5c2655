package lint

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/roach88/samvada/internal/chat"
)

// ErrPathNotFound is returned by Validate when the target does not exist.
var ErrPathNotFound = errors.New("path not found")

var referenceToken = regexp.MustCompile(`\[\[(.+?)\]\]`)

// Linter checks the structure of chat documents.
type Linter struct {
	fs         chat.FileSystem
	keys       []string
	keyRules   map[string]*regexp.Regexp
	extensions []string
	log        *logrus.Entry
}

// Option configures a Linter.
type Option func(*Linter)

// WithFileSystem sets the filesystem used for reads and existence checks.
func WithFileSystem(fsys chat.FileSystem) Option {
	return func(l *Linter) {
		if fsys != nil {
			l.fs = fsys
		}
	}
}

// WithTemplate derives the required frontmatter keys from t.
func WithTemplate(t chat.Template) Option {
	return func(l *Linter) { l.setKeys(t.Keys()) }
}

// WithExtensions restricts directory runs to files with one of the given
// extensions (e.g. ".md"). No extensions means every regular file.
func WithExtensions(exts ...string) Option {
	return func(l *Linter) { l.extensions = exts }
}

// WithLogger attaches a logger.
func WithLogger(log *logrus.Entry) Option {
	return func(l *Linter) { l.log = log }
}

// New creates a Linter for chat.DefaultTemplate on the host filesystem.
func New(opts ...Option) *Linter {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	l := &Linter{
		fs:  chat.OSFileSystem{},
		log: logrus.NewEntry(discard),
	}
	l.setKeys(chat.DefaultTemplate.Keys())
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Linter) setKeys(keys []string) {
	l.keys = keys
	l.keyRules = make(map[string]*regexp.Regexp, len(keys))
	for _, key := range keys {
		l.keyRules[key] = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(key) + `:[ \t]*\S`)
	}
}

// Validate lints a file or every file of a directory.
// The error is non-nil only when path cannot be inspected at all.
func (l *Linter) Validate(path string) (*Report, error) {
	info, err := l.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return l.ValidateDirectory(path)
	}
	report := &Report{}
	report.add(path, l.ValidateFile(path))
	return report, nil
}

// ValidateDirectory lints every regular file directly inside dir, in
// directory-listing order. Invalid files never stop the scan.
func (l *Linter) ValidateDirectory(dir string) (*Report, error) {
	entries, err := l.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	report := &Report{}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := l.fs.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if !l.matchesExtension(path) {
			continue
		}
		report.add(path, l.ValidateFile(path))
	}

	l.log.WithFields(logrus.Fields{
		"dir":     dir,
		"files":   len(report.Files),
		"invalid": report.InvalidCount(),
	}).Debug("linted directory")
	return report, nil
}

func (l *Linter) matchesExtension(path string) bool {
	if len(l.extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, want := range l.extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// ValidateFile lints one file. An empty result means the file is valid.
func (l *Linter) ValidateFile(path string) []Diagnostic {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		msg := fmt.Sprintf("cannot read file: %v", err)
		if errors.Is(err, fs.ErrNotExist) {
			msg = "file not found"
		}
		return []Diagnostic{{Code: ErrFileUnreadable, Message: msg, FilePath: path}}
	}

	diags := l.ValidateText(string(data), path)
	entry := l.log.WithFields(logrus.Fields{"path": path, "diagnostics": len(diags)})
	if len(diags) > 0 {
		entry.Debug("chat file invalid")
	} else {
		entry.Debug("chat file valid")
	}
	return diags
}

// ValidateText lints document text. path labels the diagnostics and anchors
// relative file references.
//
// Structural rules run in order and stop at the first failing rule (the
// frontmatter rule reports every missing key). File references are always
// checked and every unresolved one is reported.
func (l *Linter) ValidateText(text, path string) []Diagnostic {
	lines := chat.NewLines(text).Remaining()
	bodyStart := bodyStartIndex(lines)

	diags := l.checkStructure(text, lines, bodyStart, path)
	diags = append(diags, l.checkReferences(lines, bodyStart, path)...)
	return diags
}

// bodyStartIndex returns the index of the first line after the closing
// frontmatter delimiter, or len(lines) when the block never closes.
func bodyStartIndex(lines []string) int {
	seen := 0
	for i, line := range lines {
		if chat.IsDelimiter(line) {
			seen++
			if seen == 2 {
				return i + 1
			}
		}
	}
	return len(lines)
}

func (l *Linter) checkStructure(text string, lines []string, bodyStart int, path string) []Diagnostic {
	if diags := l.checkFrontmatterKeys(text, path); len(diags) > 0 {
		return diags
	}
	for _, rule := range []func([]string, int, string) *Diagnostic{
		checkBody,
		checkFirstTurn,
		checkTurnOrder,
		checkLastLine,
	} {
		if d := rule(lines, bodyStart, path); d != nil {
			return []Diagnostic{*d}
		}
	}
	return nil
}

func (l *Linter) checkFrontmatterKeys(text, path string) []Diagnostic {
	var diags []Diagnostic
	for _, key := range l.keys {
		if !l.keyRules[key].MatchString(text) {
			diags = append(diags, Diagnostic{
				Code:     ErrFrontmatterKey,
				Message:  fmt.Sprintf("frontmatter key %q is missing or empty", key),
				FilePath: path,
			})
		}
	}
	return diags
}

// checkBody requires content after the last delimiter line.
func checkBody(lines []string, _ int, path string) *Diagnostic {
	last := -1
	for i, line := range lines {
		if chat.IsDelimiter(line) {
			last = i
		}
	}
	if strings.TrimSpace(strings.Join(lines[last+1:], "\n")) == "" {
		return &Diagnostic{
			Code:     ErrEmptyBody,
			Message:  "no content after frontmatter",
			FilePath: path,
		}
	}
	return nil
}

func checkFirstTurn(lines []string, bodyStart int, path string) *Diagnostic {
	for i := bodyStart; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if role, _, ok := chat.TurnStart(lines[i]); ok && role == chat.RoleUser {
			return nil
		}
		msg := fmt.Sprintf("first turn must start with %q, found %q", chat.UserPrefix, trimmed)
		if trimmed != lines[i] && strings.HasPrefix(trimmed, chat.UserPrefix) {
			msg = fmt.Sprintf("first turn must start with %q at the beginning of the line, found %q", chat.UserPrefix, lines[i])
		}
		return &Diagnostic{
			Code:     ErrFirstTurnNotUser,
			Message:  msg,
			FilePath: path,
			Line:     i + 1,
		}
	}
	return &Diagnostic{
		Code:     ErrFirstTurnNotUser,
		Message:  fmt.Sprintf("first turn must start with %q, found no turns", chat.UserPrefix),
		FilePath: path,
	}
}

// checkTurnOrder walks turn-start lines and enforces user/assistant
// alternation. Continuation lines are skipped.
func checkTurnOrder(lines []string, bodyStart int, path string) *Diagnostic {
	expected := chat.RoleUser
	for i := bodyStart; i < len(lines); i++ {
		role, _, ok := chat.TurnStart(lines[i])
		if !ok {
			continue
		}
		if role != expected {
			return &Diagnostic{
				Code:     ErrAlternation,
				Message:  fmt.Sprintf("expected %q turn, found %q (turns must alternate)", string(expected)+":", string(role)+":"),
				FilePath: path,
				Line:     i + 1,
			}
		}
		expected = otherRole(role)
	}
	return nil
}

// checkLastLine requires the last non-empty line of the body to open a user
// turn, leaving the transcript ready for the next question.
func checkLastLine(lines []string, bodyStart int, path string) *Diagnostic {
	for i := len(lines) - 1; i >= bodyStart; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, chat.UserPrefix) {
			return nil
		}
		return &Diagnostic{
			Code:     ErrLastTurnNotUser,
			Message:  fmt.Sprintf("last non-empty line must start with %q, found %q", chat.UserPrefix, trimmed),
			FilePath: path,
			Line:     i + 1,
		}
	}
	return &Diagnostic{
		Code:     ErrLastTurnNotUser,
		Message:  fmt.Sprintf("last non-empty line must start with %q", chat.UserPrefix),
		FilePath: path,
	}
}

func otherRole(r chat.Role) chat.Role {
	if r == chat.RoleUser {
		return chat.RoleAssistant
	}
	return chat.RoleUser
}

// checkReferences reports every [[path]] inside a user turn whose target does
// not exist. Comment lines are not content and are skipped.
func (l *Linter) checkReferences(lines []string, bodyStart int, path string) []Diagnostic {
	var (
		diags []Diagnostic
		role  chat.Role
	)
	for i := bodyStart; i < len(lines); i++ {
		line := lines[i]
		if r, rest, ok := chat.TurnStart(line); ok {
			role = r
			line = rest
		}
		if role != chat.RoleUser || chat.IsUserComment(line) {
			continue
		}
		for _, m := range referenceToken.FindAllStringSubmatch(line, -1) {
			target := m[1]
			resolved := chat.ResolveReferencePath(target, path)
			if chat.Exists(l.fs, resolved) {
				continue
			}
			diags = append(diags, Diagnostic{
				Code:      ErrMissingReference,
				Message:   fmt.Sprintf("file reference [[%s]] not found at %s", target, resolved),
				FilePath:  path,
				Line:      i + 1,
				Reference: target,
			})
		}
	}
	return diags
}
