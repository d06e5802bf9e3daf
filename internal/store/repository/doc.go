// Package repository provides the CRUD implementation shared by every stored
// entity type. A Repository resolves its table from a schema.Registry and runs
// each operation through the sqlexec engine with the entity's mappers.
package repository
