// Package store persists executed messages and answers filtered queries over
// them.
//
// Repository is the only component in this module that performs I/O. It asks
// a queryprovider.Provider for SQL text and runs it through an injected
// Executor, so it works over any *sql.DB (or *sql.Tx / *sql.Conn).
//
// # Operations
//
//   - EnsureSchema: look up the messages table, create it when absent.
//     Idempotent and safe to retry after cancellation.
//   - Insert / Add: one parameterized INSERT per message. The id is assigned
//     by the database.
//   - Query: one parameterized SELECT; rows are decoded back into
//     message.Record according to the serializer's text/binary mode.
//
// # Guarantees
//
//   - Every script is a single Exec or Query call; the package never opens a
//     transaction. Atomicity is the storage engine's single-statement
//     atomicity.
//   - Storage errors are wrapped with the failing operation and returned, never
//     retried or swallowed.
//   - Query results are ordered by id ascending.
//
// # Database Configuration
//
// Open registers the sqlite3, pgx, postgres and mysql drivers. For SQLite it
// applies the same pragmas as a single-writer WAL database:
//
//   - WAL mode: Concurrent reads during writes
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
