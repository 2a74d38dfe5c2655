// Package history is a SQLite ledger of provider exchanges.
//
// Every successful ask or quick call is recorded with the chat it belongs
// to, the model, the provider's response id and the token count. The ledger
// is append-only; ordering uses the seq column, never timestamps.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//
// Schema changes are applied forward using PRAGMA user_version.
package history
