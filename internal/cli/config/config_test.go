package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapcheck/pkg/core"

	// Register adapter packages so target validation passes.
	_ "github.com/leapstack-labs/leapcheck/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapcheck/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leapcheck/pkg/adapters/redshift"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "leapcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, "")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"models"}, cfg.SourcePaths)
	assert.Equal(t, "dev", cfg.Environment)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, DefaultStateFile), cfg.StatePath)

	require.NotNil(t, cfg.Target)
	assert.Equal(t, "duckdb", cfg.Target.Type)
}

func TestLoadConfig_FileValues(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `
source_paths:
  - models
  - analysis
environment: prod
target:
  type: redshift
  host: warehouse.example.com
  port: 5439
  user: analyst
  database: warehouse
  schema: analytics
models:
  staging/stg_users:
    enabled: false
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"models", "analysis"}, cfg.SourcePaths)
	assert.Equal(t, "prod", cfg.Environment)
	require.NotNil(t, cfg.Target)
	assert.Equal(t, "redshift", cfg.Target.Type)
	assert.Equal(t, "warehouse.example.com", cfg.Target.Host)
	assert.Equal(t, 5439, cfg.Target.Port)
	assert.Equal(t, "analytics", cfg.Target.Schema)

	o, ok := cfg.Models["staging/stg_users"]
	require.True(t, ok)
	require.NotNil(t, o.Enabled)
	assert.False(t, *o.Enabled)
}

func TestLoadConfig_EnvVarOverridesFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, "environment: prod\n")

	t.Setenv("LEAPCHECK_ENVIRONMENT", "staging")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestLoadConfig_FlagOverridesEnvVar(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, "")

	t.Setenv("LEAPCHECK_ENVIRONMENT", "staging")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("env", "", "")
	flags.String("state", "", "")
	require.NoError(t, flags.Parse([]string{"--env", "prod", "--state", "/tmp/history.db"}))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, "/tmp/history.db", cfg.StatePath)
}

func TestLoadConfigWithTarget_EnvironmentTarget(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `
target:
  type: redshift
  host: base.example.com
  user: analyst
  schema: analytics
environments:
  prod:
    target:
      host: prod.example.com
      password: ${LEAPCHECK_TEST_PW}
`)

	t.Setenv("LEAPCHECK_TEST_PW", "s3cret")

	cfg, err := LoadConfigWithTarget(path, "prod", nil)
	require.NoError(t, err)

	require.NotNil(t, cfg.Target)
	assert.Equal(t, "redshift", cfg.Target.Type)
	assert.Equal(t, "prod.example.com", cfg.Target.Host)
	assert.Equal(t, "analyst", cfg.Target.User)
	assert.Equal(t, "s3cret", cfg.Target.Password)
}

func TestLoadConfigWithTarget_UnknownEnvironment(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `
target:
  type: duckdb
environments:
  prod:
    target:
      path: /data/prod.duckdb
`)

	_, err := LoadConfigWithTarget(path, "production", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown environment "production"`)
}

func TestLoadConfigWithTarget_DefaultEnvMayBeUndeclared(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `
environment: dev
target:
  type: duckdb
environments:
  prod:
    target:
      path: /data/prod.duckdb
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg.Target)
	assert.Equal(t, "duckdb", cfg.Target.Type)
	assert.Equal(t, ":memory:", cfg.Target.Path)
}

func TestLoadConfig_UnexpandedVarKept(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `
target:
  type: postgres
  password: ${LEAPCHECK_MISSING_VAR}
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "${LEAPCHECK_MISSING_VAR}", cfg.Target.Password)
}

func TestMergeTargetConfig(t *testing.T) {
	base := &core.TargetConfig{
		Type:   "redshift",
		Host:   "base.example.com",
		Port:   5439,
		User:   "analyst",
		Schema: "analytics",
		Options: map[string]string{
			"sslmode": "require",
		},
	}
	override := &core.TargetConfig{
		Host: "prod.example.com",
		Options: map[string]string{
			"connect_timeout": "10",
		},
	}

	merged := MergeTargetConfig(base, override)

	assert.Equal(t, "redshift", merged.Type)
	assert.Equal(t, "prod.example.com", merged.Host)
	assert.Equal(t, 5439, merged.Port)
	assert.Equal(t, "require", merged.Options["sslmode"])
	assert.Equal(t, "10", merged.Options["connect_timeout"])

	assert.Nil(t, MergeTargetConfig(nil, nil))
	assert.Equal(t, base, MergeTargetConfig(base, nil))
	assert.Equal(t, override, MergeTargetConfig(nil, override))
}
