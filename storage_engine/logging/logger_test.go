package logging

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithComponentTagsRecords(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "DEBUG")
	t.Cleanup(func() { _ = Close() })

	WithComponent("bufferpool").Debug("page hit", "page_id", 7)

	out := buf.String()
	assert.Contains(t, out, "component=bufferpool")
	assert.Contains(t, out, "page_id=7")
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "INFO")
	t.Cleanup(func() { _ = Close() })

	GetLogger().Debug("hidden")
	GetLogger().Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitTwiceFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "engine.log")
	require.NoError(t, Init(Config{Level: "INFO", Format: "json", OutputPath: path}))
	t.Cleanup(func() { _ = Close() })

	require.Error(t, Init(Config{}))
	require.NoError(t, Close())
	require.NoError(t, Init(Config{Level: "WARN"}))
}
