package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "leancoffee.db", cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Workspace)
	assert.Empty(t, cfg.UserID)
	assert.False(t, cfg.AdminMode)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workspace: acme
store_url: ws://localhost:8080/sync
user_id: alice
email: alice@example.com
admin_mode: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.Workspace)
	assert.Equal(t, "ws://localhost:8080/sync", cfg.StoreURL)
	assert.Equal(t, "alice", cfg.UserID)
	assert.Equal(t, "alice@example.com", cfg.Email)
	assert.True(t, cfg.AdminMode)
	assert.Equal(t, "leancoffee.db", cfg.DatabasePath, "defaults still apply")
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workspace: from-file\n"), 0o644))

	t.Setenv("LEANCOFFEE_WORKSPACE", "from-env")
	t.Setenv("LEANCOFFEE_DB", "custom.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Workspace)
	assert.Equal(t, "custom.db", cfg.DatabasePath)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
