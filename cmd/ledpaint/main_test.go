package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ledpaint/internal/config"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg := loadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	assert.Equal(t, config.Defaults(), cfg)
}

func TestLoadConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("led_count: [x"), 0644))
	assert.Nil(t, loadConfig(path))
}
