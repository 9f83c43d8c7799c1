package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHasAllFourFields(t *testing.T) {
	d := Default()
	assert.NotEmpty(t, d.Prompt)
	assert.Equal(t, "x86_64", d.Arch)
	assert.Equal(t, "run", d.OutputStage)
	assert.True(t, d.Color)
}

func TestLoadWithoutRcFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	restore := chdirAndHome(t, dir)
	defer restore()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesCwdRcFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	restore := chdirAndHome(t, dir)
	defer restore()

	rc := "prompt: \"spl> \"\narch: x86_64\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(rc), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "spl> ", cfg.Prompt)
	// Fields absent from the rc file keep their Default() value.
	assert.Equal(t, Default().OutputStage, cfg.OutputStage)
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	dir := t.TempDir()
	restore := chdirAndHome(t, dir)
	defer restore()

	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("prompt: [this is not a string"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

// chdirAndHome isolates a test from both the real working directory and
// the real $HOME, since Load consults both for an .splrc.yaml.
func chdirAndHome(t *testing.T, dir string) func() {
	t.Helper()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	oldHome, hadHome := os.LookupEnv("HOME")

	require.NoError(t, os.Chdir(dir))
	require.NoError(t, os.Setenv("HOME", dir))

	return func() {
		_ = os.Chdir(oldWd)
		if hadHome {
			_ = os.Setenv("HOME", oldHome)
		} else {
			_ = os.Unsetenv("HOME")
		}
	}
}
