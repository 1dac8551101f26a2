package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/docgen/pkg/docgen"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadProjectConfig_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := loadProjectConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, defaultProjectConfig(), cfg)

	_, err = loadProjectConfig(path, true)
	assert.Error(t, err, "an explicit --config must exist")
}

func TestLoadProjectConfig(t *testing.T) {
	path := writeConfig(t, `
include: ["src/**/*.tsx"]
resolver: exported
workers: 4
parser:
  language: typescript
  error_recovery: true
cache:
  path: ""
  salt: v2
catalog:
  name: design-system
  version: 2.1.0
log:
  level: debug
`)
	cfg, err := loadProjectConfig(path, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"src/**/*.tsx"}, cfg.Include)
	assert.Equal(t, defaultProjectConfig().Exclude, cfg.Exclude, "unset keys keep their defaults")
	assert.Equal(t, "exported", cfg.Resolver)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, docgen.ParserOptions{Language: "typescript", ErrorRecovery: true}, cfg.Parser)
	assert.Empty(t, cfg.Cache.Path)
	assert.Equal(t, "design-system", cfg.Catalog.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadProjectConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "unknown resolver", content: "resolver: everything\n", wantErr: "resolver"},
		{name: "negative workers", content: "workers: -1\n", wantErr: "workers"},
		{name: "unknown language", content: "parser:\n  language: coffeescript\n", wantErr: "language"},
		{name: "unknown log level", content: "log:\n  level: loud\n", wantErr: "level"},
		{name: "empty glob", content: "include: [\"\"]\n", wantErr: "include"},
		{name: "bad glob", content: "exclude: [\"[oops\"]\n", wantErr: "invalid exclude pattern"},
		{name: "not yaml", content: "include: [\n", wantErr: "parse config"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadProjectConfig(writeConfig(t, tc.content), true)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := defaultProjectConfig()
	cfg.Resolver = "single"
	cfg.Cwd = "packages/ui"
	cfg.Workers = 3

	opts, err := cfg.pipelineOptions("/repo")
	require.NoError(t, err)
	assert.Equal(t,
		reflect.ValueOf(docgen.FindExportedComponentDefinition).Pointer(),
		reflect.ValueOf(opts.Normalize.Resolver).Pointer())
	assert.Equal(t, filepath.Join("/repo", "packages/ui"), opts.Normalize.Cwd)
	assert.Equal(t, 3, opts.Workers)
	assert.Contains(t, opts.CacheSalt, version, "a new release invalidates cached results")

	cfg.Cwd = ""
	opts, err = cfg.pipelineOptions("/repo")
	require.NoError(t, err)
	assert.Empty(t, opts.Normalize.Cwd, "the pipeline defaults an empty cwd to its root")

	cfg.Resolver = "bogus"
	_, err = cfg.pipelineOptions("/repo")
	assert.Error(t, err)
}

func TestPipelineOptions_CacheSaltTracksSettings(t *testing.T) {
	salt := func(mutate func(*ProjectConfig)) string {
		cfg := defaultProjectConfig()
		mutate(cfg)
		opts, err := cfg.pipelineOptions("/repo")
		require.NoError(t, err)
		return opts.CacheSalt
	}

	base := salt(func(*ProjectConfig) {})
	assert.Equal(t, base, salt(func(c *ProjectConfig) { c.Workers = 8 }), "worker count does not change results")
	assert.NotEqual(t, base, salt(func(c *ProjectConfig) { c.Resolver = "exported" }))
	assert.NotEqual(t, base, salt(func(c *ProjectConfig) { c.Parser.Language = "flow" }))
	assert.NotEqual(t, base, salt(func(c *ProjectConfig) { c.Parser.ErrorRecovery = true }))
	assert.NotEqual(t, base, salt(func(c *ProjectConfig) { c.Cache.Salt = "rebuild" }))
}
