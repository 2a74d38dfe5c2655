// Package lint validates the structure of chat documents.
//
// Rules run per file, in order:
//
//	L000  the file can be read
//	L001  every key of the frontmatter template is present with a value
//	L002  there is content after the frontmatter
//	L003  the first turn is user:
//	L004  turns alternate user:/assistant:
//	L005  the last non-empty line starts with user:
//	L006  every [[path]] in a user turn exists
//
// L000-L005 are fail-fast: the first failing rule ends the structural checks
// for that file (L001 still lists every missing key). L006 always runs and
// reports each unresolved reference. A directory run lints every regular file
// and never stops at an invalid one.
//
// The linter re-reads the raw text rather than reusing a parsed
// chat.Document, so it can report on documents the parser would accept
// silently.
package lint
