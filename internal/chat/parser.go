package chat

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Parser turns chat document text into a Document.
type Parser struct {
	fs       FileSystem
	resolver *Resolver
	defaults Fields
	mode     Mode
	log      *logrus.Entry
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithFileSystem sets the filesystem used to read the document and its
// file references.
func WithFileSystem(fsys FileSystem) ParserOption {
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	return func(p *Parser) {
		p.fs = fsys
		p.resolver = NewResolver(fsys)
	}
}

// WithDefaults seeds frontmatter values that the document may override.
func WithDefaults(defaults Fields) ParserOption {
	return func(p *Parser) { p.defaults = defaults.Clone() }
}

// WithMode selects how reference failures are handled.
func WithMode(mode Mode) ParserOption {
	return func(p *Parser) { p.mode = mode }
}

// WithLogger attaches a logger. Parsing logs at debug level only.
func WithLogger(log *logrus.Entry) ParserOption {
	return func(p *Parser) { p.log = log }
}

// NewParser creates a Parser. Without options it reads the host filesystem,
// has no defaults and fails fast on unreadable references.
func NewParser(opts ...ParserOption) *Parser {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Parser{
		fs:       OSFileSystem{},
		resolver: NewResolver(nil),
		mode:     ModeFailFast,
		log:      logrus.NewEntry(discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses text. path is the document's location and is used only to
// resolve relative file references; it may be empty.
//
// In ModeFailFast a reference failure returns a nil Document and the
// *ReferenceError. In ModeCollectAll the Document is always returned and the
// error, if any, joins every reference failure.
func (p *Parser) Parse(text, path string) (*Document, error) {
	lines := NewLines(text)

	fields, closed := ParseFrontmatter(lines, p.defaults)
	if !closed {
		p.log.WithField("path", path).Debug("frontmatter has no closing delimiter; no messages parsed")
	}

	expand := func(token string) (string, error) {
		return p.resolver.Expand(token, path)
	}
	turns, err := ParseMessages(lines, expand, p.mode)
	if err != nil && p.mode == ModeFailFast {
		return nil, err
	}

	doc := &Document{Path: path, Frontmatter: fields, Turns: turns}
	p.log.WithFields(logrus.Fields{
		"path":   path,
		"fields": len(fields),
		"turns":  len(turns),
		"model":  doc.Model(),
	}).Debug("parsed chat document")

	return doc, err
}

// ParseFile reads and parses the document at path.
func (p *Parser) ParseFile(path string) (*Document, error) {
	data, err := p.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chat file: %w", err)
	}
	return p.Parse(string(data), path)
}
