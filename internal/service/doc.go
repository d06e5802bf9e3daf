// Package service contains the registry use cases. MetadataService
// coordinates the registry stores and owns transaction boundaries: every
// operation that writes more than one row runs inside store.RunInTransaction
// using transaction-bound copies of the stores.
//
// The service depends on the repository interfaces declared here rather than
// on the SQL implementations, so tests can substitute failing or mocked stores.
package service
