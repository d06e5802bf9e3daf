// Package schema declares the relational structure behind every stored entity type.
//
// A Table is built once at process start with NewTable and never changes afterwards;
// its columns are kept sorted by name so that generated SQL and the argument lists
// bound to it are deterministic. A Registry maps entity type tags to tables and is
// frozen after the registration phase.
package schema
