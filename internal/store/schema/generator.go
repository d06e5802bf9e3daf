package schema

import "github.com/google/uuid"

// IDGenerator produces identifiers for newly created entities.
// The returned value must be assignable to the entity's identifier type.
type IDGenerator interface {
	Generate() (any, error)
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() (any, error)

// Generate implements IDGenerator.
func (f IDGeneratorFunc) Generate() (any, error) { return f() }

// UUIDStringGenerator generates random (version 4) UUIDs in their canonical string form.
type UUIDStringGenerator struct{}

// Generate implements IDGenerator.
func (UUIDStringGenerator) Generate() (any, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return id.String(), nil
}
