package chat

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	refOpen  = "[["
	refClose = "]]"
)

// ReferenceError reports a file reference whose target could not be read.
type ReferenceError struct {
	Reference string // path as written between the brackets
	Resolved  string // path the reference resolved to
	Err       error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("failed to read file reference %q (%s): %v", e.Reference, e.Resolved, e.Err)
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}

// IsReferenceLine reports whether line, once trimmed, is a whole-line
// [[path]] file reference.
func IsReferenceLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= len(refOpen)+len(refClose) &&
		strings.HasPrefix(trimmed, refOpen) &&
		strings.HasSuffix(trimmed, refClose) &&
		!strings.Contains(trimmed, "\n")
}

// ReferenceTarget strips the brackets from a reference token and returns the
// inner path exactly as written.
func ReferenceTarget(token string) string {
	trimmed := strings.TrimSpace(token)
	trimmed = strings.TrimPrefix(trimmed, refOpen)
	return strings.TrimSuffix(trimmed, refClose)
}

// ResolveReferencePath turns the inner text of a reference into a filesystem
// path. Escaped spaces ("\ ") are unescaped. Relative paths are joined with
// the directory containing the chat document.
func ResolveReferencePath(target, containingPath string) string {
	path := strings.ReplaceAll(target, `\ `, " ")
	if filepath.IsAbs(path) {
		return path
	}
	base := "."
	if containingPath != "" {
		base = filepath.Dir(containingPath)
	}
	return filepath.Join(base, path)
}

// Resolver expands file references found in user turns.
type Resolver struct {
	FS FileSystem
}

// NewResolver creates a Resolver. A nil fsys uses the host filesystem.
func NewResolver(fsys FileSystem) *Resolver {
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	return &Resolver{FS: fsys}
}

// Expand reads the file named by token and returns the text that replaces the
// reference inside the turn.
//
// On success the text is the reference marker followed by the file contents.
// On failure the returned text is a visible placeholder and the error is a
// *ReferenceError; callers decide whether that is fatal.
func (r *Resolver) Expand(token, containingPath string) (string, error) {
	target := ReferenceTarget(token)
	resolved := ResolveReferencePath(target, containingPath)

	data, err := r.FS.ReadFile(resolved)
	if err != nil {
		return fmt.Sprintf("\n\nFailed to read file: %s\n\n", target),
			&ReferenceError{Reference: target, Resolved: resolved, Err: err}
	}
	return fmt.Sprintf("\n\n[[%s]]\n\n%s\n\n", target, string(data)), nil
}

// ExpandReference expands token against the host filesystem.
func ExpandReference(token, containingPath string) (string, error) {
	return NewResolver(nil).Expand(token, containingPath)
}
