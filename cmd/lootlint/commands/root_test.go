package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootNoCommand(t *testing.T) {
	out, err := execute(t)
	require.Error(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestGamesCommand(t *testing.T) {
	out, err := execute(t, "games")
	require.NoError(t, err)
	assert.Contains(t, out, "Skyrim Special Edition")
	assert.Contains(t, out, "https://github.com/loot/skyrimse.git")
	assert.Contains(t, out, "0x800-0xFFF")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lootlint version")
}

func TestCheckUnknownGame(t *testing.T) {
	t.Setenv("LOOTLINT_CONFIG_HOME", t.TempDir())
	t.Setenv("LOOTLINT_DATA_HOME", t.TempDir())
	t.Setenv("LOOTLINT_CACHE_HOME", t.TempDir())
	_, err := execute(t, "check", "--game", "Daggerfall", "--data-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Daggerfall")
}

func TestCheckEndToEnd(t *testing.T) {
	t.Setenv("LOOTLINT_CONFIG_HOME", t.TempDir())
	t.Setenv("LOOTLINT_DATA_HOME", t.TempDir())
	t.Setenv("LOOTLINT_CACHE_HOME", t.TempDir())

	dataDir := t.TempDir() + "/Data"
	writeDataDir(t, dataDir)
	masterlist := writeMasterlist(t)

	out, err := execute(t, "check",
		"--game", "Skyrim Special Edition",
		"--data-dir", dataDir,
		"--masterlist", masterlist,
		"--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Foo.esp")
	assert.Contains(t, out, "needs attention")
	assert.Contains(t, out, "1 warning(s)")

	_, err = execute(t, "check",
		"--game", "Skyrim Special Edition",
		"--data-dir", dataDir,
		"--masterlist", masterlist,
		"--strict")
	require.Error(t, err)
}
