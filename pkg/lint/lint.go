// Package lint wires a full check run together: configuration to
// load order to metadata to rendered report.
package lint

import (
	"os"
	"regexp"

	"github.com/arthur-debert/lootlint/pkg/config"
	"github.com/arthur-debert/lootlint/pkg/errors"
	"github.com/arthur-debert/lootlint/pkg/games"
	"github.com/arthur-debert/lootlint/pkg/headercache"
	"github.com/arthur-debert/lootlint/pkg/ignore"
	"github.com/arthur-debert/lootlint/pkg/loadorder"
	"github.com/arthur-debert/lootlint/pkg/logging"
	"github.com/arthur-debert/lootlint/pkg/masterlist"
	"github.com/arthur-debert/lootlint/pkg/output"
	"github.com/arthur-debert/lootlint/pkg/paths"
	"github.com/arthur-debert/lootlint/pkg/plugins"
	"github.com/arthur-debert/lootlint/pkg/resolver"
	"github.com/arthur-debert/lootlint/pkg/updater"
)

// Run performs one complete check and returns the report.
func Run(settings *config.Settings) (*output.Report, error) {
	logger := logging.GetLogger("lint")

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	game, err := settings.GameSpec()
	if err != nil {
		return nil, err
	}

	var provider plugins.Provider = plugins.NewReader(game)
	if settings.HeaderCache {
		cache, err := headercache.Open(paths.HeaderCacheFile(), provider)
		if err != nil {
			// A broken cache degrades to uncached reads.
			logger.Warn().Err(err).Msg("header cache unavailable, reading headers directly")
		} else {
			defer cache.Close()
			provider = cache
		}
	}

	ctx, err := loadorder.NewContext(game, settings.DataDir, settings.PluginsFile,
		plugins.NewMemo(provider))
	if err != nil {
		return nil, err
	}

	masterlistPath := settings.Masterlist
	if masterlistPath == "" {
		u := &updater.Updater{BaseDir: settings.MasterlistDir, Branch: settings.MasterlistBranch}
		masterlistPath = u.MasterlistPath(game)
	}
	master, err := masterlist.LoadFile(masterlistPath)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrListRead) && settings.Masterlist == "" {
			return nil, errors.Wrapf(err, errors.ErrListRead,
				"no masterlist for %s, run \"lootlint update\" first", game.Name)
		}
		return nil, err
	}

	user, err := loadUserlist(settings, game)
	if err != nil {
		return nil, err
	}

	opts := resolver.Options{
		Language:               settings.Language,
		IncludeInfo:            settings.IncludeInfo,
		PreferLiteral:          settings.PreferLiteral,
		CheckRequirements:      settings.CheckRequirements,
		CheckIncompatibilities: settings.CheckIncompatibilities,
	}
	messages, diagnostics := resolver.Resolve(master, user, ctx, opts)

	patterns, err := loadIgnorePatterns(settings)
	if err != nil {
		return nil, err
	}
	messages = ignore.Filter(messages, patterns)

	logger.Info().
		Str("game", game.Name).
		Int("plugins", len(ctx.Plugins())).
		Int("messages", len(messages)).
		Int("diagnostics", len(diagnostics)).
		Msg("check complete")

	return &output.Report{
		Game:        game.Name,
		Messages:    messages,
		Diagnostics: diagnostics,
	}, nil
}

// loadUserlist reads the configured userlist, treating a missing file
// at the default location as an empty list.
func loadUserlist(settings *config.Settings, game games.Game) (*masterlist.List, error) {
	path := settings.Userlist
	explicit := path != ""
	if !explicit {
		path = paths.UserlistFile(game)
	}
	list, err := masterlist.LoadFile(path)
	if err != nil {
		if !explicit && errors.IsErrorCode(err, errors.ErrListRead) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

// loadIgnorePatterns reads the ignore file, treating a missing file
// at the default location as no patterns.
func loadIgnorePatterns(settings *config.Settings) ([]*regexp.Regexp, error) {
	path := settings.IgnoreFile
	if path == "" {
		path = paths.IgnoreFile()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return ignore.LoadPatterns(path)
}
