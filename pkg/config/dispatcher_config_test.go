package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dispatcher.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDispatcherConfig(t *testing.T) {
	path := writeConfig(t, `
queue:
  enabled: true
  addr: redis:6379
  db: 2
  name: crm-mutations
`)

	config, err := LoadDispatcherConfig(path)
	require.NoError(t, err)

	assert.True(t, config.Queue.Enabled)
	assert.Equal(t, "redis:6379", config.Queue.Addr)
	assert.Equal(t, 2, config.Queue.DB)
	assert.Equal(t, "crm-mutations", config.Queue.Name)
}

func TestLoadDispatcherConfigEmptyPath(t *testing.T) {
	config, err := LoadDispatcherConfig("")
	require.NoError(t, err)
	assert.False(t, config.Queue.Enabled)
}

func TestLoadDispatcherConfigMissingFile(t *testing.T) {
	_, err := LoadDispatcherConfig("/nonexistent/dispatcher.yaml")
	assert.Error(t, err)
}

func TestLoadDispatcherConfigEnabledWithoutName(t *testing.T) {
	path := writeConfig(t, `
queue:
  enabled: true
`)

	_, err := LoadDispatcherConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue name")
}

func TestLoadDispatcherConfigBadYAML(t *testing.T) {
	path := writeConfig(t, "queue: [not a map")

	_, err := LoadDispatcherConfig(path)
	assert.Error(t, err)
}
