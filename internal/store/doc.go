// Package store holds what every persistence layer in the registry shares:
// the DBTX abstraction over *sql.DB and *sql.Tx, RunInTransaction, the
// sentinel errors callers match with errors.Is and the StoreError wrapper.
//
// The generic relational framework lives in subpackages. schema declares
// tables and keys, query assembles SELECT statements and filters, sqlexec runs
// statements through entity mappers, and repository combines them into the
// CRUD implementation every registry entity is stored with.
package store
