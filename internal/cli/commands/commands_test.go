package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapcheck/internal/cli/config"
)

// setupProject creates a minimal project with one schema.yml and loads its
// configuration.
func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "leapcheck.yaml"), []byte(`
target:
  type: duckdb
models:
  staging/stg_orders:
    enabled: false
`), 0600))

	modelDir := filepath.Join(dir, "models", "staging")
	require.NoError(t, os.MkdirAll(modelDir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "schema.yml"), []byte(`
stg_users:
  constraints:
    not_null:
      - id
      - email
    unique:
      - id
stg_orders:
  constraints:
    relationships:
      - {from: id, to: stg_users, field: order_id}
`), 0600))

	config.ResetConfig()
	_, err := config.LoadConfig(filepath.Join(dir, "leapcheck.yaml"), nil)
	require.NoError(t, err)
	t.Cleanup(config.ResetConfig)

	return dir
}

func TestListCommand(t *testing.T) {
	setupProject(t)

	cmd := NewListCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "staging/stg_users")
	assert.Contains(t, out.String(), "not_null")
	assert.Contains(t, out.String(), "id, email")
	assert.Contains(t, out.String(), "unique")
	assert.Contains(t, out.String(), "id -> stg_users.order_id")
	assert.Contains(t, out.String(), "(3 constraints)")
}

func TestListCommand_DisabledModelMarked(t *testing.T) {
	setupProject(t)

	cmd := NewListCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "staging/stg_orders")
	assert.Contains(t, out.String(), "no")
}

func TestListCommand_EmptyProject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leapcheck.yaml"), []byte("target:\n  type: duckdb\n"), 0600))

	config.ResetConfig()
	_, err := config.LoadConfig(filepath.Join(dir, "leapcheck.yaml"), nil)
	require.NoError(t, err)
	t.Cleanup(config.ResetConfig)

	cmd := NewListCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "No schema.yml files found")
}

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3")
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "leapcheck v1.2.3")
}

func TestSchemaName(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
		want string
	}{
		{"explicit schema", &config.Config{Target: &config.TargetConfig{Type: "redshift", Schema: "analytics"}}, "analytics"},
		{"duckdb default", &config.Config{Target: &config.TargetConfig{Type: "duckdb"}}, "main"},
		{"postgres default", &config.Config{Target: &config.TargetConfig{Type: "postgres"}}, "public"},
		{"no target", &config.Config{}, "public"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schemaName(tt.cfg))
		})
	}
}
