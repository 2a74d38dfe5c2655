// Package chat reads and writes samvada chat documents.
//
// A chat document is a plain-text file with a frontmatter block followed by
// role-prefixed turns:
//
//	---
//	system: You are terse.
//	model: gpt-4o-mini
//	---
//	user:
//	Summarize this file.
//	[[notes/meeting.md]]
//	assistant:
//	Done.
//	<!-- id: chatcmpl-123 -->
//	user:
//
// # Parsing
//
// [ParseFrontmatter] consumes the block between the first two "---" lines.
// A line with a colon starts a field; a line without one continues the
// previous value. A missing closing delimiter is not an error: every line is
// treated as frontmatter and no turns are produced.
//
// [ParseMessages] splits the rest into [Turn] values. Turns start at lines
// beginning (column 0) with "user:" or "assistant:". In user turns "<c>" lines
// are dropped and whole-line [[path]] references are expanded inline by a
// [Resolver]. In assistant turns one-line "<!-- ... -->" comments are dropped.
//
// # Writing
//
// Documents are never re-serialized. [Create] renders [DefaultTemplate] and
// [AppendAnswer] / [AppendConversation] append text to the file.
package chat
