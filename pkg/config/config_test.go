package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/lootlint/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LOOTLINT_DATA_HOME", t.TempDir())
	t.Setenv("LOOTLINT_CONFIG_HOME", t.TempDir())

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "en", settings.Language)
	assert.True(t, settings.IncludeInfo)
	assert.True(t, settings.PreferLiteral)
	assert.True(t, settings.CheckRequirements)
	assert.True(t, settings.CheckIncompatibilities)
	assert.True(t, settings.HeaderCache)
	assert.NotEmpty(t, settings.MasterlistDir)
	assert.NotEmpty(t, settings.MasterlistBranch)
	assert.Empty(t, settings.Game)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lootlint.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
game = "Skyrim Special Edition"
data_dir = "/games/sse/Data"
language = "fr"
include_info = false
`), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Skyrim Special Edition", settings.Game)
	assert.Equal(t, "/games/sse/Data", settings.DataDir)
	assert.Equal(t, "fr", settings.Language)
	assert.False(t, settings.IncludeInfo)
	// Unset keys keep their defaults.
	assert.True(t, settings.PreferLiteral)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lootlint.toml")
	require.NoError(t, os.WriteFile(path, []byte(`language = "fr"`), 0o644))
	t.Setenv("LOOTLINT_LANGUAGE", "de")
	t.Setenv("LOOTLINT_GAME", "Fallout 4")

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "de", settings.Language)
	assert.Equal(t, "Fallout 4", settings.Game)
}

func TestLoadXDGOverridesAreNotSettings(t *testing.T) {
	t.Setenv("LOOTLINT_DATA_HOME", "/custom/data")

	settings, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	// The override moves the masterlist dir but leaves data_dir (the
	// game directory) untouched.
	assert.Empty(t, settings.DataDir)
	assert.Equal(t, filepath.Join("/custom/data", "masterlists"), settings.MasterlistDir)
}

func TestLoadBadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lootlint.toml")
	require.NoError(t, os.WriteFile(path, []byte("game = [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestValidate(t *testing.T) {
	s := &Settings{Language: "en"}
	err := s.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))

	s.Game = "No Such Game"
	err = s.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrGameUnknown))

	s.Game = "Skyrim Special Edition"
	err = s.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))

	s.DataDir = "/games/sse/Data"
	require.NoError(t, s.Validate())

	game, err := s.GameSpec()
	require.NoError(t, err)
	assert.Equal(t, "skyrimse", game.MasterlistRepo)
}
