// Package schema discovers and parses schema declaration files.
//
// A schema.yml file maps model names to their declared data-quality
// constraints:
//
//	users:
//	  constraints:
//	    not_null:
//	      - id
//	      - email
//	    unique:
//	      - id
//	    relationships:
//	      - {from: id, to: orders, field: user_id}
//
// Declaration order is significant: constraints are validated and reported
// in the order they appear, so parsing goes through yaml.Node rather than
// plain map decoding (Go maps would lose the order).
package schema

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/leapstack-labs/leapcheck/pkg/core"
	"gopkg.in/yaml.v3"
)

// FileName is the canonical schema declaration file name.
const FileName = "schema.yml"

// FileNameAlt is the alternate schema declaration file name.
const FileNameAlt = "schema.yaml"

// Repository discovers schema declarations under a project's source paths.
type Repository struct {
	logger *slog.Logger
}

// NewRepository creates a schema repository.
// If logger is nil, a discard logger is used.
func NewRepository(logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{logger: logger}
}

// Discover walks every source path and parses each schema.yml found.
// The model group for a file is its directory relative to the source path.
// Groups are returned in sorted path order; models and constraints within a
// file keep their declaration order. Declaring the same model twice within
// a group is a configuration error.
func (r *Repository) Discover(root string, sourcePaths []string) ([]*core.GroupSchemas, error) {
	byGroup := make(map[string]*core.GroupSchemas)
	declaredIn := make(map[string]string)

	for _, sourcePath := range sourcePaths {
		fullSourcePath := filepath.Join(root, sourcePath)
		if _, err := os.Stat(fullSourcePath); os.IsNotExist(err) {
			r.logger.Debug("source path not found, skipping", "path", fullSourcePath)
			continue
		}

		err := filepath.Walk(fullSourcePath, func(path string, info os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if info.IsDir() || (info.Name() != FileName && info.Name() != FileNameAlt) {
				return nil
			}

			relPath, err := filepath.Rel(fullSourcePath, path)
			if err != nil {
				return err
			}
			group := filepath.ToSlash(filepath.Dir(relPath))

			content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from walking configured source paths
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			models, err := ParseFile(content)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}

			r.logger.Debug("parsed schema file", "path", path, "group", group, "models", len(models))

			gs, ok := byGroup[group]
			if !ok {
				gs = &core.GroupSchemas{Group: group}
				byGroup[group] = gs
			}
			for _, m := range models {
				id := core.ModelID{Group: group, Name: m.Name}.String()
				if prev, dup := declaredIn[id]; dup {
					return fmt.Errorf("model %q in %s already declared in %s", id, path, prev)
				}
				declaredIn[id] = path
			}
			gs.Models = append(gs.Models, models...)

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	groups := make([]*core.GroupSchemas, 0, len(byGroup))
	for _, gs := range byGroup {
		groups = append(groups, gs)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Group < groups[j].Group })

	return groups, nil
}

// ParseFile parses schema.yml content into model schemas, preserving the
// declaration order of models, constraint types, and their entries.
func ParseFile(content []byte) ([]core.ModelSchema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, fmt.Errorf("schema file is empty")
	}

	rootNode := doc.Content[0]
	if rootNode.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("schema file must be a mapping of model names")
	}

	var models []core.ModelSchema
	seen := make(map[string]struct{})
	for i := 0; i < len(rootNode.Content); i += 2 {
		nameNode, bodyNode := rootNode.Content[i], rootNode.Content[i+1]

		if _, dup := seen[nameNode.Value]; dup {
			return nil, fmt.Errorf("model %q declared more than once", nameNode.Value)
		}
		seen[nameNode.Value] = struct{}{}

		def, err := parseModelBody(bodyNode)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", nameNode.Value, err)
		}

		models = append(models, core.ModelSchema{
			Name:   nameNode.Value,
			Schema: def,
		})
	}

	return models, nil
}

// parseModelBody extracts the constraints mapping from a model declaration.
func parseModelBody(node *yaml.Node) (core.SchemaDefinition, error) {
	var def core.SchemaDefinition

	if node.Kind != yaml.MappingNode {
		return def, fmt.Errorf("model declaration must be a mapping")
	}

	var constraintsNode *yaml.Node
	for i := 0; i < len(node.Content); i += 2 {
		if node.Content[i].Value == "constraints" {
			constraintsNode = node.Content[i+1]
			break
		}
	}
	if constraintsNode == nil {
		return def, fmt.Errorf("missing required key %q", "constraints")
	}
	if constraintsNode.Kind != yaml.MappingNode {
		return def, fmt.Errorf("constraints must be a mapping of constraint types")
	}

	for i := 0; i < len(constraintsNode.Content); i += 2 {
		tagNode, dataNode := constraintsNode.Content[i], constraintsNode.Content[i+1]

		c := core.Constraint{Type: core.ConstraintType(tagNode.Value)}

		// The tag set is validated at dispatch time, not here: an
		// unrecognized tag must fail its model without aborting discovery
		// of other models. Payload shape follows the tag when recognized,
		// otherwise the raw entry is carried with an empty payload.
		switch c.Type {
		case core.ConstraintNotNull, core.ConstraintUnique:
			if err := dataNode.Decode(&c.Fields); err != nil {
				return def, fmt.Errorf("constraint %q: expected a list of field names: %w", tagNode.Value, err)
			}
		case core.ConstraintRelationships:
			if err := dataNode.Decode(&c.References); err != nil {
				return def, fmt.Errorf("constraint %q: expected a list of references: %w", tagNode.Value, err)
			}
		}

		def.Constraints = append(def.Constraints, c)
	}

	return def, nil
}
