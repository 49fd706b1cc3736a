// Package importer contains the order reconciliation engine.
//
// The engine takes a parsed batch of orders and merges it into the
// relational store: users are deduplicated by email, products by name,
// and the orders themselves keep the identifiers supplied by the source
// document. The whole batch is one transaction, committed or rolled
// back as a unit.
//
// # Mixing assigned and preserved identifiers
//
// Users and products receive surrogate keys on insert, while orders
// must be written with their externally meaningful ids. Stores that
// gate explicit identity writes (SQL Server) have the gate suspended
// for the duration of the batch and restored on every exit path; stores
// that accept explicit autoincrement values (MySQL, SQLite, the
// in-memory store) treat the toggle as a supported no-op.
//
// # Visibility
//
// User and product inserts are flushed immediately so that a later
// order in the same batch referencing the same email or product name
// resolves to the freshly created row instead of creating a duplicate.
// Order rows are staged and flushed together before commit.
//
// # Stores
//
// The engine is written against the Store/Tx capability interfaces.
// GormStore runs against the real database; MemoryStore provides the
// same semantics in memory for tests and dry runs.
//
// # Usage
//
//	engine := importer.NewEngine(importer.NewGormStore(db), logger)
//	orders, err := engine.Reconcile(ctx, batch)
package importer
