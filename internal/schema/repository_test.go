package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapcheck/internal/testutil"
	"github.com/leapstack-labs/leapcheck/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchema = `users:
  constraints:
    not_null:
      - id
      - email
    unique:
      - id
    relationships:
      - {from: id, to: orders, field: user_id}
orders:
  constraints:
    not_null:
      - order_id
`

func TestParseFile(t *testing.T) {
	models, err := ParseFile([]byte(sampleSchema))
	require.NoError(t, err)
	require.Len(t, models, 2)

	users := models[0]
	assert.Equal(t, "users", users.Name)
	require.Len(t, users.Schema.Constraints, 3)

	// Declaration order is preserved.
	assert.Equal(t, core.ConstraintNotNull, users.Schema.Constraints[0].Type)
	assert.Equal(t, []string{"id", "email"}, users.Schema.Constraints[0].Fields)
	assert.Equal(t, core.ConstraintUnique, users.Schema.Constraints[1].Type)
	assert.Equal(t, []string{"id"}, users.Schema.Constraints[1].Fields)
	assert.Equal(t, core.ConstraintRelationships, users.Schema.Constraints[2].Type)
	require.Len(t, users.Schema.Constraints[2].References, 1)
	assert.Equal(t, core.Reference{From: "id", To: "orders", Field: "user_id"}, users.Schema.Constraints[2].References[0])

	assert.Equal(t, "orders", models[1].Name)
}

func TestParseFile_PreservesUnrecognizedTag(t *testing.T) {
	content := `users:
  constraints:
    not_a_real_constraint:
      - whatever
    not_null:
      - id
`
	models, err := ParseFile([]byte(content))
	require.NoError(t, err)
	require.Len(t, models, 1)
	require.Len(t, models[0].Schema.Constraints, 2)

	// The bad tag is carried through for the dispatcher to reject; it must
	// not abort parsing of the remaining declarations.
	assert.Equal(t, core.ConstraintType("not_a_real_constraint"), models[0].Schema.Constraints[0].Type)
	assert.Equal(t, core.ConstraintNotNull, models[0].Schema.Constraints[1].Type)
}

func TestParseFile_DuplicateModel(t *testing.T) {
	content := `users:
  constraints:
    not_null:
      - id
users:
  constraints:
    unique:
      - id
`
	_, err := ParseFile([]byte(content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `model "users" declared more than once`)
}

func TestParseFile_MissingConstraints(t *testing.T) {
	_, err := ParseFile([]byte("users:\n  description: no constraints here\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required key "constraints"`)
}

func TestParseFile_Empty(t *testing.T) {
	_, err := ParseFile([]byte(""))
	require.Error(t, err)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "models", "staging", "schema.yml"), `stg_users:
  constraints:
    not_null:
      - id
`)
	writeFile(t, filepath.Join(root, "models", "marts", "schema.yml"), `dim_users:
  constraints:
    unique:
      - user_key
`)
	writeFile(t, filepath.Join(root, "models", "README.md"), "not a schema file")

	repo := NewRepository(testutil.NewTestLogger(t))
	groups, err := repo.Discover(root, []string{"models"})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Sorted group order.
	assert.Equal(t, "marts", groups[0].Group)
	assert.Equal(t, "staging", groups[1].Group)
	require.Len(t, groups[0].Models, 1)
	assert.Equal(t, "dim_users", groups[0].Models[0].Name)
}

func TestDiscover_DuplicateModelAcrossFiles(t *testing.T) {
	root := t.TempDir()

	// Both files land in the same group: the one named schema.yml and the
	// one named schema.yaml share a directory.
	writeFile(t, filepath.Join(root, "models", "staging", "schema.yml"), `stg_users:
  constraints:
    not_null:
      - id
`)
	writeFile(t, filepath.Join(root, "models", "staging", "schema.yaml"), `stg_users:
  constraints:
    unique:
      - id
`)

	repo := NewRepository(testutil.NewTestLogger(t))
	_, err := repo.Discover(root, []string{"models"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `model "staging/stg_users"`)
	assert.Contains(t, err.Error(), "already declared in")
}

func TestDiscover_MissingSourcePath(t *testing.T) {
	repo := NewRepository(nil)
	groups, err := repo.Discover(t.TempDir(), []string{"does-not-exist"})
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestDiscover_BadSchemaFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "models", "schema.yml"), "users:\n  no_constraints: true\n")

	repo := NewRepository(nil)
	_, err := repo.Discover(root, []string{"models"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
