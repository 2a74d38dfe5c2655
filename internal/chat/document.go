package chat

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the parsed form of a chat file. It is built once per parse and
// not written back; new turns are appended to the file as text.
type Document struct {
	Path        string `json:"path,omitempty"`
	Frontmatter Fields `json:"frontmatter"`
	Turns       []Turn `json:"turns"`
}

// Get returns a frontmatter value, or "" when absent.
func (d *Document) Get(key string) string {
	return d.Frontmatter[key]
}

func (d *Document) SystemPrompt() string { return d.Get(KeySystem) }
func (d *Document) Model() string        { return d.Get(KeyModel) }
func (d *Document) APIEndpoint() string  { return d.Get(KeyAPIEndpoint) }
func (d *Document) Title() string        { return d.Get(KeyTitle) }

// Tags decodes the tags value, written as a YAML flow sequence such as
// "[go, cli]". An absent or empty value yields no tags.
func (d *Document) Tags() ([]string, error) {
	raw := strings.TrimSpace(d.Get(KeyTags))
	if raw == "" {
		return nil, nil
	}
	var tags []string
	if err := yaml.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode tags %q: %w", raw, err)
	}
	return tags, nil
}

// LastTurn returns the final turn, or nil when the document has none.
func (d *Document) LastTurn() *Turn {
	if len(d.Turns) == 0 {
		return nil
	}
	return &d.Turns[len(d.Turns)-1]
}
