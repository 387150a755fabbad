// Package config loads lootlint's settings by layering built-in
// defaults, the user's config file and LOOTLINT_* environment
// variables, in that order of increasing precedence.
package config

import (
	"os"
	"strings"

	"github.com/arthur-debert/lootlint/pkg/errors"
	"github.com/arthur-debert/lootlint/pkg/games"
	"github.com/arthur-debert/lootlint/pkg/paths"
	"github.com/arthur-debert/lootlint/pkg/updater"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Settings is the resolved configuration for a run.
type Settings struct {
	// Game names the game whose load order is checked, e.g. "Skyrim
	// Special Edition".
	Game string `koanf:"game"`
	// DataDir is the game's data directory (the one holding plugin
	// files).
	DataDir string `koanf:"data_dir"`
	// PluginsFile is the active-plugin list. Empty scans DataDir.
	PluginsFile string `koanf:"plugins_file"`
	// MasterlistDir holds per-game masterlist clones.
	MasterlistDir string `koanf:"masterlist_dir"`
	// Masterlist overrides the masterlist file path. Empty uses the
	// clone under MasterlistDir.
	Masterlist string `koanf:"masterlist"`
	// MasterlistBranch is the upstream branch to track.
	MasterlistBranch string `koanf:"masterlist_branch"`
	// Userlist overrides the userlist file path. Empty uses the
	// per-game default under the lootlint data directory.
	Userlist string `koanf:"userlist"`
	// IgnoreFile holds message-suppression patterns.
	IgnoreFile string `koanf:"ignore_file"`
	// Language selects message content, e.g. "en".
	Language string `koanf:"language"`
	// IncludeInfo includes informational messages in the output.
	IncludeInfo bool `koanf:"include_info"`
	// PreferLiteral resolves literal-name entries before regex ones.
	PreferLiteral bool `koanf:"prefer_literal"`
	// CheckRequirements reports missing required files.
	CheckRequirements bool `koanf:"check_requirements"`
	// CheckIncompatibilities reports present incompatible files.
	CheckIncompatibilities bool `koanf:"check_incompatibilities"`
	// HeaderCache enables the persistent plugin header cache.
	HeaderCache bool `koanf:"header_cache"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"game":                    "",
		"data_dir":                "",
		"plugins_file":            "",
		"masterlist_dir":          paths.MasterlistDir(),
		"masterlist":              "",
		"masterlist_branch":       updater.DefaultBranch,
		"userlist":                "",
		"ignore_file":             paths.IgnoreFile(),
		"language":                "en",
		"include_info":            true,
		"prefer_literal":          true,
		"check_requirements":      true,
		"check_incompatibilities": true,
		"header_cache":            true,
	}
}

// Load layers defaults, configFile (skipped when missing) and the
// environment. An empty configFile means the default location.
func Load(configFile string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load default configuration")
	}

	if configFile == "" {
		configFile = paths.ConfigFile()
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", configFile).
				WithDetail("path", configFile)
		}
	}

	err := k.Load(env.Provider("LOOTLINT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "LOOTLINT_"))
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment variables")
	}

	// The XDG overrides are directory roots, not settings.
	for _, key := range []string{"config_home", "data_home", "cache_home"} {
		k.Delete(key)
	}

	var settings Settings
	if err := k.Unmarshal("", &settings); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}
	return &settings, nil
}

// Validate checks that the settings name a known game and an
// existing data directory.
func (s *Settings) Validate() error {
	if s.Game == "" {
		return errors.New(errors.ErrConfigValid, "no game configured: set game in the config file or pass --game")
	}
	if _, err := games.Lookup(s.Game); err != nil {
		return err
	}
	if s.DataDir == "" {
		return errors.New(errors.ErrConfigValid, "no data directory configured: set data_dir or pass --data-dir")
	}
	if s.Language == "" {
		return errors.New(errors.ErrConfigValid, "language must not be empty")
	}
	return nil
}

// GameSpec returns the configured game's registry record.
func (s *Settings) GameSpec() (games.Game, error) {
	return games.Lookup(s.Game)
}
