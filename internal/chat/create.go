package chat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CreateOptions describes a new chat document.
type CreateOptions struct {
	Name        string // file name without the .md extension
	Dir         string // target directory, "." when empty
	System      string
	Model       string
	APIEndpoint string
	Now         time.Time
	// OpenTurn appends an empty "user:" turn so the file is ready to edit.
	OpenTurn bool
}

// TitleFromName turns a file name such as "release-notes" into "Release Notes".
func TitleFromName(name string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(words)
}

// RenderNew renders the contents of a new chat document.
func RenderNew(opts CreateOptions) string {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	stamp := now.UTC().Format(time.RFC3339)

	content := DefaultTemplate.Render(map[string]string{
		KeyTitle:       TitleFromName(opts.Name),
		KeySystem:      opts.System,
		KeyModel:       opts.Model,
		KeyAPIEndpoint: opts.APIEndpoint,
		KeyCreatedAt:   stamp,
		KeyUpdatedAt:   stamp,
		KeyTags:        "[]",
		KeySummary:     "",
	})
	content += "\n"
	if opts.OpenTurn {
		content += "\n" + UserPrefix + "\n"
	}
	return content
}

// Create writes a new chat document and returns its path.
// It refuses to overwrite an existing file.
func Create(opts CreateOptions) (string, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return "", errors.New("chat name is required")
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dir)
	}

	path := filepath.Join(dir, opts.Name+".md")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create chat file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(RenderNew(opts)); err != nil {
		return "", fmt.Errorf("write chat file: %w", err)
	}
	return path, nil
}
