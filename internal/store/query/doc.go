// Package query assembles parameterized SELECT statements from schema columns
// and translates dynamic filter parameters into WHERE predicates.
//
// A Builder is mutable and not safe for concurrent use. Code that keeps a shared
// base query must branch from it with Copy before adding predicates. Every
// predicate method appends its placeholders in call order, and arguments must be
// bound in that same order.
package query
