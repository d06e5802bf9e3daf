// Package testdb provides database fixtures for tests: a private, fully migrated
// in-memory SQLite database per test and a transaction helper that always rolls back.
//
// Basic usage:
//
//	func TestMyStore(t *testing.T) {
//	    db := testdb.Open(t)
//	    tmpl := testdb.Template(db)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        // use tmpl.WithTx(tx); changes are discarded afterwards
//	    })
//	}
package testdb
