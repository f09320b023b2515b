package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()

	conf, err := Load(Options{Root: root})
	require.NoError(t, err)

	assert.Equal(t, []string{root}, conf.Workspace.Roots)
	assert.Equal(t, filepath.Base(root), conf.Workspace.Project)
	assert.Equal(t, filepath.Join(root, ".vscode", "time_log.json"), conf.LogPath())
	assert.Equal(t, "info", conf.Logger.Level)
	assert.Equal(t, time.Second, conf.Status.Interval)
	assert.Equal(t, 8, conf.Cache.Size)
	assert.False(t, conf.Metrics.Enabled)
	assert.Equal(t, "127.0.0.1:9464", conf.Metrics.Addr)
	assert.Empty(t, conf.Path)
}

func TestLoad_FileInRoot(t *testing.T) {
	root := t.TempDir()
	yaml := `workspace:
  roots: [src, /abs/other]
  project: Demo
logger:
  level: debug
  file: ftt.log
status:
  interval: 5s
user:
  name: Ann
  email: ann@example.com
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(yaml), 0o644))

	conf, err := Load(Options{Root: root})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, ConfigFileName), conf.Path)
	assert.Equal(t, []string{filepath.Join(root, "src"), "/abs/other"}, conf.Workspace.Roots)
	assert.Equal(t, "Demo", conf.Workspace.Project)
	assert.Equal(t, "debug", conf.Logger.Level)
	assert.Equal(t, filepath.Join(root, "ftt.log"), conf.Logger.File)
	assert.Equal(t, 5*time.Second, conf.Status.Interval)
	assert.Equal(t, "Ann", conf.User.Name)
	assert.Equal(t, "ann@example.com", conf.User.Email)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("logger:\n  level: warn\n"), 0o644))
	t.Setenv("FTT_LOGGER_LEVEL", "error")
	t.Setenv("FTT_METRICS_ENABLED", "true")

	conf, err := Load(Options{Root: root})
	require.NoError(t, err)
	assert.Equal(t, "error", conf.Logger.Level)
	assert.True(t, conf.Metrics.Enabled)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := Load(Options{Root: t.TempDir(), File: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad level", "logger:\n  level: loud\n"},
		{"bad email", "user:\n  email: not-an-email\n"},
		{"empty log dir", "log:\n  dir: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(tt.yaml), 0o644))

			_, err := Load(Options{Root: root})
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}

func TestWriteTemplate(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ConfigFileName)

	require.NoError(t, WriteTemplate(path))
	assert.Error(t, WriteTemplate(path), "existing file is kept")

	conf, err := Load(Options{Root: root})
	require.NoError(t, err)
	assert.Equal(t, path, conf.Path)
	assert.Equal(t, []string{root}, conf.Workspace.Roots)
	assert.Equal(t, filepath.Join(root, ".vscode", "time_log.json"), conf.LogPath())
}

func TestLoad_LogLevelFlagWins(t *testing.T) {
	t.Setenv("FTT_LOGGER_LEVEL", "error")

	conf, err := Load(Options{Root: t.TempDir(), LogLevel: "debug"})
	require.NoError(t, err)
	assert.Equal(t, "debug", conf.Logger.Level)

	_, err = Load(Options{Root: t.TempDir(), LogLevel: "chatty"})
	assert.ErrorIs(t, err, ErrInvalid)
}
