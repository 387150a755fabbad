package plugins

import (
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/lootlint/pkg/games"
	"github.com/arthur-debert/lootlint/internal/esptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlugin(t *testing.T, dir, name string, spec esptest.PluginSpec) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, esptest.Build(spec), 0644))
	return path
}

func sseReader(t *testing.T) *Reader {
	t.Helper()
	game, err := games.Lookup("Skyrim Special Edition")
	require.NoError(t, err)
	return NewReader(game)
}

func TestReaderBasicHeader(t *testing.T) {
	dir := t.TempDir()
	path := writePlugin(t, dir, "Test.esp", esptest.PluginSpec{
		Masters:     []string{"Skyrim.esm", "Update.esm"},
		Description: "A test plugin. Version: 1.4.2",
		FormIDs:     []uint32{0x01000800, 0x01000801},
	})

	h, err := sseReader(t).Header(path)
	require.NoError(t, err)
	assert.Equal(t, "Test.esp", h.Name)
	assert.False(t, h.IsLight)
	assert.False(t, h.IsMaster)
	assert.Equal(t, []string{"Skyrim.esm", "Update.esm"}, h.Masters)
	assert.Equal(t, "1.4.2", h.Version)
	assert.Equal(t, []uint32{0x01000800, 0x01000801}, h.FormIDs)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, crc32.ChecksumIEEE(data), h.CRC)
}

func TestReaderFlags(t *testing.T) {
	dir := t.TempDir()

	light := writePlugin(t, dir, "Light.esp", esptest.PluginSpec{Light: true})
	h, err := sseReader(t).Header(light)
	require.NoError(t, err)
	assert.True(t, h.IsLight)

	master := writePlugin(t, dir, "Master.esp", esptest.PluginSpec{Master: true})
	h, err = sseReader(t).Header(master)
	require.NoError(t, err)
	assert.True(t, h.IsMaster)
}

func TestReaderExtensionImpliesFlags(t *testing.T) {
	dir := t.TempDir()

	path := writePlugin(t, dir, "ByExt.esl", esptest.PluginSpec{})
	h, err := sseReader(t).Header(path)
	require.NoError(t, err)
	assert.True(t, h.IsLight)

	path = writePlugin(t, dir, "ByExt.esm", esptest.PluginSpec{})
	h, err = sseReader(t).Header(path)
	require.NoError(t, err)
	assert.True(t, h.IsMaster)
}

func TestReaderEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Empty.esp")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	h, err := sseReader(t).Header(path)
	require.NoError(t, err)
	assert.Zero(t, h.CRC)
	assert.Empty(t, h.FormIDs)
}

func TestReaderCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Corrupt.esp")
	require.NoError(t, os.WriteFile(path, []byte("not a plugin at all"), 0644))

	_, err := sseReader(t).Header(path)
	require.Error(t, err)
	var headerErr *HeaderError
	require.ErrorAs(t, err, &headerErr)
	assert.Equal(t, path, headerErr.Path)
}

func TestReaderTruncatedGroup(t *testing.T) {
	dir := t.TempDir()
	data := esptest.Build(esptest.PluginSpec{FormIDs: []uint32{0x800, 0x801}})
	path := filepath.Join(dir, "Truncated.esp")
	require.NoError(t, os.WriteFile(path, data[:len(data)-8], 0644))

	_, err := sseReader(t).Header(path)
	require.Error(t, err)
}

func TestReaderMissingFile(t *testing.T) {
	_, err := sseReader(t).Header(filepath.Join(t.TempDir(), "Nope.esp"))
	var headerErr *HeaderError
	require.ErrorAs(t, err, &headerErr)
}

func TestHasFormID(t *testing.T) {
	h := &Header{FormIDs: []uint32{0x800, 0xD62}}
	assert.True(t, h.HasFormID(0xD62))
	assert.False(t, h.HasFormID(0x900))
}
