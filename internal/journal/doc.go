// Package journal provides durable storage for the ledger's transaction
// sequence.
//
// The contract is deliberately blunt: the engine loads the whole sequence at
// startup and rewrites the whole sequence after every mutating operation.
// Absence of the backing resource is not an error; it yields an empty
// sequence. Saves are atomic-enough full overwrites: a reload after a
// successful Save observes exactly the saved sequence, never a partial one.
//
// Three implementations ship:
//   - FileJournal: a JSON array file, written via temp-file-and-rename
//   - SQLiteJournal: the same records in a single SQLite table
//   - MemoryJournal: byte-preserving in-memory journal for tests
package journal
