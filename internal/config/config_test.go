package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whencehq/whence/internal/config"
)

func validConfig(t *testing.T) config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.RepoPath = t.TempDir()
	cfg.SnapshotPath = t.TempDir()

	return cfg
}

func TestValidate(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.Validate()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.RepoPath))
	assert.True(t, filepath.IsAbs(cfg.SnapshotPath))
}

func TestValidateMissingRepo(t *testing.T) {
	cfg := validConfig(t)
	cfg.RepoPath = ""

	err := cfg.Validate()
	assert.ErrorIs(t, err, config.ErrMissingRepo)
}

func TestValidateMissingSnapshot(t *testing.T) {
	cfg := validConfig(t)
	cfg.SnapshotPath = ""

	err := cfg.Validate()
	assert.ErrorIs(t, err, config.ErrMissingSnapshot)
}

func TestValidateQuietConflictsWithVerbose(t *testing.T) {
	cfg := validConfig(t)
	cfg.Quiet = true
	cfg.Verbose = true

	err := cfg.Validate()
	assert.ErrorIs(t, err, config.ErrConflictingOutput)
}

func TestValidateNegativeSensitivity(t *testing.T) {
	cfg := validConfig(t)
	cfg.Sensitivity = -1

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateSnapshotNotADirectory(t *testing.T) {
	cfg := validConfig(t)
	cfg.SnapshotPath = filepath.Join(cfg.SnapshotPath, "does-not-exist")

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestEffectiveWorkers(t *testing.T) {
	tests := []struct {
		name     string
		workers  int
		verbose  bool
		trace    bool
		expected int
	}{
		{"explicit", 4, false, false, 4},
		{"verbose forces one", 4, true, false, 1},
		{"trace forces one", 4, false, true, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Config{
				Workers: tc.workers,
				Verbose: tc.verbose,
				Trace:   tc.trace,
			}

			assert.Equal(t, tc.expected, cfg.EffectiveWorkers())
		})
	}
}

func TestEffectiveWorkersDefaultsPositive(t *testing.T) {
	cfg := config.Config{}
	assert.Greater(t, cfg.EffectiveWorkers(), 0)
}

func TestLoadDefaults(t *testing.T) {
	v := config.NewViper()

	cfg, err := config.Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultOutput, cfg.OutputPath)
	assert.Equal(t, config.Default().Sensitivity, cfg.Sensitivity)
	assert.Equal(t, config.DefaultExclude, cfg.Exclude)
	assert.True(t, cfg.DetectBinary)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("WHENCE_SENSITIVITY", "9")

	v := config.NewViper()

	cfg, err := config.Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Sensitivity)
}

func TestLoadMissingConfigFile(t *testing.T) {
	v := config.NewViper()

	_, err := config.Load(v, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
