// Package sqlexec binds schema tables, mappers and built SQL to a live connection.
//
// A Template wraps a store.DBTX (a *sql.DB or a caller-owned *sql.Tx) together with
// the placeholder dialect of the driver. The generic functions in this package
// (Insert, Update, QueryForObject, Query, DeleteByID and friends) each execute
// exactly one statement. Argument counts are checked against the statement's
// placeholders before anything is sent to the database.
//
// Update follows the partial-patch policy: columns whose mapped value is NULL are
// left out of the SET list, so an unset field keeps its stored value.
package sqlexec
