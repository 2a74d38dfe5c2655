package lint

import "fmt"

// Diagnostic codes, one per rule (L000-L099).
const (
	ErrFileUnreadable   = "L000" // file missing or unreadable
	ErrFrontmatterKey   = "L001" // template key missing or empty
	ErrEmptyBody        = "L002" // nothing after the frontmatter
	ErrFirstTurnNotUser = "L003" // conversation does not open with user:
	ErrAlternation      = "L004" // two consecutive turns by the same role
	ErrLastTurnNotUser  = "L005" // conversation does not end awaiting the user
	ErrMissingReference = "L006" // [[path]] does not exist
)

// Diagnostic is one validation failure in one file.
type Diagnostic struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	FilePath  string `json:"file_path"`
	Line      int    `json:"line,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: [%s] %s", d.FilePath, d.Line, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: [%s] %s", d.FilePath, d.Code, d.Message)
}

// FileResult holds the verdict for one file.
type FileResult struct {
	Path        string       `json:"path"`
	Valid       bool         `json:"valid"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Report aggregates the results of a lint run.
type Report struct {
	Files []FileResult `json:"files"`
}

// Valid reports whether every file passed.
func (r *Report) Valid() bool {
	for _, f := range r.Files {
		if !f.Valid {
			return false
		}
	}
	return true
}

// InvalidCount returns the number of files with at least one diagnostic.
func (r *Report) InvalidCount() int {
	n := 0
	for _, f := range r.Files {
		if !f.Valid {
			n++
		}
	}
	return n
}

// Diagnostics flattens the diagnostics of every file, in file order.
func (r *Report) Diagnostics() []Diagnostic {
	var all []Diagnostic
	for _, f := range r.Files {
		all = append(all, f.Diagnostics...)
	}
	return all
}

func (r *Report) add(path string, diags []Diagnostic) {
	r.Files = append(r.Files, FileResult{
		Path:        path,
		Valid:       len(diags) == 0,
		Diagnostics: diags,
	})
}
