// Package sqlstore declares the registry tables and implements the registry
// stores on top of the generic repository in internal/store/repository.
//
// Each store maps one domain entity. Entities that span two tables (flows and
// extension bundles, which share the bucket_item table) combine two repositories
// and expect the caller to run multi-statement operations in a transaction.
// Nothing cascades in the database: deletes remove child rows explicitly, children first.
package sqlstore
