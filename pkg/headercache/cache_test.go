package headercache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/lootlint/pkg/games"
	"github.com/arthur-debert/lootlint/internal/esptest"
	"github.com/arthur-debert/lootlint/pkg/plugins"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	inner plugins.Provider
	calls int
}

func (p *countingProvider) Header(path string) (*plugins.Header, error) {
	p.calls++
	return p.inner.Header(path)
}

func newCache(t *testing.T) (*Cache, *countingProvider) {
	t.Helper()
	game, err := games.Lookup("Skyrim Special Edition")
	require.NoError(t, err)
	provider := &countingProvider{inner: plugins.NewReader(game)}
	cache, err := Open(filepath.Join(t.TempDir(), "cache", "headers.db"), provider)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache, provider
}

func writePlugin(t *testing.T, dir, name string, spec esptest.PluginSpec) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, esptest.Build(spec), 0o644))
	return path
}

func TestCacheReadThrough(t *testing.T) {
	cache, provider := newCache(t)
	path := writePlugin(t, t.TempDir(), "Foo.esp", esptest.PluginSpec{
		Master:      true,
		Masters:     []string{"Skyrim.esm", "Update.esm"},
		Description: "version 1.2.3",
		FormIDs:     []uint32{0x800, 0x900},
	})

	first, err := cache.Header(path)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)

	second, err := cache.Header(path)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls, "second read must hit the cache")
	assert.Equal(t, first, second)
	assert.True(t, second.IsMaster)
	assert.Equal(t, "1.2.3", second.Version)
	assert.Equal(t, []string{"Skyrim.esm", "Update.esm"}, second.Masters)
	assert.Equal(t, []uint32{0x800, 0x900}, second.FormIDs)
}

func TestCacheInvalidatesOnChange(t *testing.T) {
	cache, provider := newCache(t)
	dir := t.TempDir()
	path := writePlugin(t, dir, "Foo.esp", esptest.PluginSpec{})

	_, err := cache.Header(path)
	require.NoError(t, err)

	// Rewrite with different content and a different mtime.
	require.NoError(t, os.WriteFile(path, esptest.Build(esptest.PluginSpec{Light: true}), 0o644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	header, err := cache.Header(path)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
	assert.True(t, header.IsLight)
}

func TestCacheSurvivesReopen(t *testing.T) {
	game, err := games.Lookup("Skyrim Special Edition")
	require.NoError(t, err)
	dbPath := filepath.Join(t.TempDir(), "headers.db")
	path := writePlugin(t, t.TempDir(), "Foo.esp", esptest.PluginSpec{Master: true})

	provider := &countingProvider{inner: plugins.NewReader(game)}
	cache, err := Open(dbPath, provider)
	require.NoError(t, err)
	_, err = cache.Header(path)
	require.NoError(t, err)
	require.NoError(t, cache.Close())

	provider2 := &countingProvider{inner: plugins.NewReader(game)}
	cache2, err := Open(dbPath, provider2)
	require.NoError(t, err)
	defer cache2.Close()

	header, err := cache2.Header(path)
	require.NoError(t, err)
	assert.Equal(t, 0, provider2.calls, "reopened cache must serve persisted entries")
	assert.True(t, header.IsMaster)
}

func TestCacheMissingFile(t *testing.T) {
	cache, provider := newCache(t)
	_, err := cache.Header(filepath.Join(t.TempDir(), "nope.esp"))
	require.Error(t, err)
	var headerErr *plugins.HeaderError
	require.ErrorAs(t, err, &headerErr)
	assert.Equal(t, 0, provider.calls)
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	cache, provider := newCache(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "Broken.esp")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	_, err := cache.Header(path)
	require.Error(t, err)
	_, err = cache.Header(path)
	require.Error(t, err)
	assert.Equal(t, 2, provider.calls, "parse failures are retried, not cached")
}
