// Package paths centralizes lootlint's on-disk locations. It follows
// the XDG Base Directory specification, with LOOTLINT_* environment
// overrides for each root.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/lootlint/pkg/games"
)

// Environment variable overrides.
const (
	// EnvConfigDir overrides the XDG config directory for lootlint.
	EnvConfigDir = "LOOTLINT_CONFIG_HOME"

	// EnvDataDir overrides the XDG data directory for lootlint.
	EnvDataDir = "LOOTLINT_DATA_HOME"

	// EnvCacheDir overrides the XDG cache directory for lootlint.
	EnvCacheDir = "LOOTLINT_CACHE_HOME"
)

const appDir = "lootlint"

// ConfigDir returns the directory holding lootlint's configuration.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, appDir)
}

// DataDir returns the directory holding masterlist clones and
// userlists.
func DataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.DataHome, appDir)
}

// CacheDir returns the directory holding regenerable caches.
func CacheDir() string {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.CacheHome, appDir)
}

// ConfigFile returns the main configuration file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "lootlint.toml")
}

// IgnoreFile returns the default ignore-pattern file.
func IgnoreFile() string {
	return filepath.Join(ConfigDir(), "ignore.txt")
}

// MasterlistDir returns the directory holding per-game masterlist
// clones.
func MasterlistDir() string {
	return filepath.Join(DataDir(), "masterlists")
}

// UserlistFile returns the per-game userlist file.
func UserlistFile(game games.Game) string {
	return filepath.Join(DataDir(), "userlists", game.MasterlistRepo+".yaml")
}

// HeaderCacheFile returns the plugin header cache database.
func HeaderCacheFile() string {
	return filepath.Join(CacheDir(), "headers.db")
}
