// Package database opens the registry's SQL database, maps driver errors onto the
// store error taxonomy and applies the embedded goose migrations.
//
// Two drivers are supported: PostgreSQL through pgx's database/sql adapter and an
// embedded pure-Go SQLite (modernc.org/sqlite). The driver decides the placeholder
// dialect handed to sqlexec templates.
package database
