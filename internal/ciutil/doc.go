// Package ciutil detects CI environments and resolves the environment
// variables that opt tests into external services such as PostgreSQL.
package ciutil
