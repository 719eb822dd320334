package core

import "fmt"

// ModelID identifies a single table/view under validation.
// Group is the model-group path (the directory a schema.yml was found in,
// relative to its source path) and Name is the model name declared in it.
type ModelID struct {
	Group string
	Name  string
}

// String renders the identifier as "group/name" (or just the name for
// models declared at a source-path root).
func (m ModelID) String() string {
	if m.Group == "" || m.Group == "." {
		return m.Name
	}
	return fmt.Sprintf("%s/%s", m.Group, m.Name)
}

// ConstraintType tags a declared data-quality rule.
// The set is closed: anything outside it is a configuration error for the
// declaring model.
type ConstraintType string

// Constraint type constants.
const (
	ConstraintNotNull       ConstraintType = "not_null"
	ConstraintUnique        ConstraintType = "unique"
	ConstraintRelationships ConstraintType = "relationships"
)

// Reference describes a referential-integrity declaration on a model.
type Reference struct {
	// From is the key field on the declaring model.
	From string `yaml:"from"`
	// To is the referenced table name.
	To string `yaml:"to"`
	// Field is the referencing field on the referenced table.
	Field string `yaml:"field"`
}

// Constraint is one constraint-type entry of a model's schema declaration.
// Exactly one of Fields or References is populated, depending on Type.
// Type is kept as declared, even when unrecognized; validation of the tag
// happens at dispatch time so a bad tag fails that model without aborting
// discovery.
type Constraint struct {
	Type       ConstraintType
	Fields     []string
	References []Reference
}

// SchemaDefinition holds the constraints declared for a single model,
// in declaration order.
type SchemaDefinition struct {
	Constraints []Constraint
}

// ModelSchema pairs a model name with its schema definition.
type ModelSchema struct {
	Name   string
	Schema SchemaDefinition
}

// GroupSchemas holds every model schema declared under one model group,
// in declaration order.
type GroupSchemas struct {
	Group  string
	Models []ModelSchema
}

// ModelConfig is the per-model configuration record supplied by the model
// compiler. Disabled models are skipped entirely during validation.
type ModelConfig struct {
	Enabled bool
}
