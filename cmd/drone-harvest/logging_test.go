package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from a scratch directory so logs/ lands there
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestSetupLoggingDisabledByDefault(t *testing.T) {
	chdirTemp(t)
	logger, f := setupLogging(false)
	assert.Nil(t, f)
	assert.NotNil(t, logger)
	assert.Equal(t, io.Discard, log.Writer())

	_, err := os.Stat(logDir)
	assert.True(t, os.IsNotExist(err))
}

func TestSetupLoggingWritesFile(t *testing.T) {
	chdirTemp(t)
	logger, f := setupLogging(true)
	require.NotNil(t, f)
	defer f.Close()

	logger.Info("scene ready", "bases", 2)
	log.Println("plain line")

	raw, err := os.ReadFile(filepath.Join(logDir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "scene ready")
	assert.Contains(t, string(raw), "plain line")
	assert.NotEqual(t, os.Stdout, log.Writer())
	assert.NotEqual(t, os.Stderr, log.Writer())
	log.SetOutput(io.Discard)
}

func TestSetupLoggingRotates(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.MkdirAll(logDir, 0o755))
	logPath := filepath.Join(logDir, logFileName)
	require.NoError(t, os.WriteFile(logPath, make([]byte, maxLogSize+1), 0o644))

	_, f := setupLogging(true)
	require.NotNil(t, f)
	defer f.Close()
	log.SetOutput(io.Discard)

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	rotated := 0
	for _, e := range entries {
		if e.Name() != logFileName && filepath.Ext(e.Name()) == ".log" {
			rotated++
		}
	}
	assert.Equal(t, 1, rotated)

	info, err := os.Stat(logPath)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(maxLogSize))
}
