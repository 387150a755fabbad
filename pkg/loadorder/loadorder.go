// Package loadorder models an installed load order: the game's data
// directory, the active-plugin list, and memoized plugin headers. Its
// Context is the environment that metadata conditions evaluate
// against.
package loadorder

import (
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/lootlint/pkg/condition"
	"github.com/arthur-debert/lootlint/pkg/errors"
	"github.com/arthur-debert/lootlint/pkg/games"
	"github.com/arthur-debert/lootlint/pkg/logging"
	"github.com/arthur-debert/lootlint/pkg/plugins"
)

// ExeVersioner reads version resources out of executables. The
// default implementation reports no version, which conditions treat
// as version 0; platforms with version resources can plug in a real
// reader.
type ExeVersioner interface {
	FileVersion(path string) (string, error)
	ProductVersion(path string) (string, error)
}

type noVersioner struct{}

func (noVersioner) FileVersion(string) (string, error)    { return "", nil }
func (noVersioner) ProductVersion(string) (string, error) { return "", nil }

// Option configures a Context.
type Option func(*Context)

// WithVersioner installs an executable version reader.
func WithVersioner(v ExeVersioner) Option {
	return func(c *Context) { c.versioner = v }
}

// Context is a read-only view of one installed load order. It
// implements condition.Environment. Safe for concurrent use.
type Context struct {
	game      games.Game
	dataDir   string
	gameDir   string
	headers   plugins.Provider
	versioner ExeVersioner

	order     []string
	active    []string
	activeSet map[string]struct{}
	positions map[string]int

	mu       sync.Mutex
	listings map[string]map[string]string // dir -> lower name -> real name
}

// NewContext builds a Context for the game installed at dataDir.
// pluginsFile is the active-plugin list (plugins.txt); when empty the
// data directory is scanned instead and every plugin found is treated
// as active. provider supplies plugin headers; wrap it in a
// plugins.Memo (or a header cache) so each header is read once.
func NewContext(game games.Game, dataDir, pluginsFile string, provider plugins.Provider, opts ...Option) (*Context, error) {
	logger := logging.GetLogger("loadorder")

	info, err := os.Stat(dataDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDataDirAccess, "cannot access data directory %s", dataDir).
			WithDetail("data_dir", dataDir)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrDataDirAccess, "%s is not a directory", dataDir).
			WithDetail("data_dir", dataDir)
	}

	ctx := &Context{
		game:      game,
		dataDir:   filepath.Clean(dataDir),
		gameDir:   filepath.Dir(filepath.Clean(dataDir)),
		headers:   provider,
		versioner: noVersioner{},
		activeSet: map[string]struct{}{},
		positions: map[string]int{},
		listings:  map[string]map[string]string{},
	}
	for _, opt := range opts {
		opt(ctx)
	}

	var entries []pluginState
	if pluginsFile != "" {
		entries, err = readPluginsFile(pluginsFile)
		if err != nil {
			return nil, err
		}
	} else {
		entries, err = scanDataDir(ctx.dataDir)
		if err != nil {
			return nil, err
		}
	}

	skipped := 0
	for _, e := range entries {
		if _, ok := ctx.resolveUnder(ctx.dataDir, e.name); !ok {
			skipped++
			logger.Debug().Str("plugin", e.name).Msg("listed plugin not installed, skipping")
			continue
		}
		ctx.positions[strings.ToLower(e.name)] = len(ctx.order)
		ctx.order = append(ctx.order, e.name)
		if e.active {
			ctx.active = append(ctx.active, e.name)
			ctx.activeSet[strings.ToLower(e.name)] = struct{}{}
		}
	}

	logger.Debug().
		Str("game", game.Name).
		Int("plugins", len(ctx.order)).
		Int("active", len(ctx.active)).
		Int("skipped", skipped).
		Msg("load order ready")
	return ctx, nil
}

// Game returns the game this load order belongs to.
func (c *Context) Game() games.Game { return c.game }

// DataDir returns the cleaned data directory path.
func (c *Context) DataDir() string { return c.dataDir }

// Plugins returns every installed plugin in load-order position.
func (c *Context) Plugins() []string { return c.order }

// ActivePlugins returns the active plugins in load-order position.
func (c *Context) ActivePlugins() []string { return c.active }

// Position returns a plugin's load-order index. Lookup is
// case-insensitive.
func (c *Context) Position(name string) (int, bool) {
	pos, ok := c.positions[strings.ToLower(name)]
	return pos, ok
}

// IsPluginActive reports whether the named plugin is active.
func (c *Context) IsPluginActive(name string) bool {
	_, ok := c.activeSet[strings.ToLower(name)]
	return ok
}

// Header reads the named plugin's header through the configured
// provider.
func (c *Context) Header(name string) (*plugins.Header, error) {
	path, ok := c.resolveUnder(c.dataDir, name)
	if !ok {
		return nil, &plugins.HeaderError{Path: name, Err: os.ErrNotExist}
	}
	return c.headers.Header(path)
}

// FileExists implements condition.Environment.
func (c *Context) FileExists(path string) bool {
	_, ok := c.resolvePath(path)
	return ok
}

// FileReadable implements condition.Environment.
func (c *Context) FileReadable(path string) bool {
	abs, ok := c.resolvePath(path)
	if !ok {
		return false
	}
	f, err := os.Open(abs)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// FileSize implements condition.Environment.
func (c *Context) FileSize(path string) (int64, bool) {
	abs, ok := c.resolvePath(path)
	if !ok {
		return 0, false
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return 0, false
	}
	return info.Size(), true
}

// FileCRC implements condition.Environment.
func (c *Context) FileCRC(path string) (uint32, bool) {
	abs, ok := c.resolvePath(path)
	if !ok {
		return 0, false
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return 0, false
	}
	return crc32.ChecksumIEEE(data), true
}

// PluginIsMaster implements condition.Environment.
func (c *Context) PluginIsMaster(name string) (bool, error) {
	header, err := c.Header(name)
	if err != nil {
		return false, headerUnavailable(name, err)
	}
	return header.IsMaster, nil
}

// PluginHasFormID implements condition.Environment.
func (c *Context) PluginHasFormID(name string, id uint32) (bool, error) {
	header, err := c.Header(name)
	if err != nil {
		return false, headerUnavailable(name, err)
	}
	return header.HasFormID(id), nil
}

// FileVersion implements condition.Environment. Plugin versions come
// from the header description; anything else defers to the
// executable versioner.
func (c *Context) FileVersion(path string) (string, bool, error) {
	abs, ok := c.resolvePath(path)
	if !ok {
		return "", false, nil
	}
	if isPluginFile(path) {
		header, err := c.headers.Header(abs)
		if err != nil {
			return "", false, headerUnavailable(path, err)
		}
		return header.Version, true, nil
	}
	v, err := c.versioner.FileVersion(abs)
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// ProductVersion implements condition.Environment.
func (c *Context) ProductVersion(path string) (string, bool, error) {
	abs, ok := c.resolvePath(path)
	if !ok {
		return "", false, nil
	}
	v, err := c.versioner.ProductVersion(abs)
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// GlobPaths implements condition.Environment. The final path segment
// is a regular expression; any leading directory segments are
// literal.
func (c *Context) GlobPaths(pattern string) ([]string, error) {
	pattern = condition.Unwrap(pattern)
	pattern = strings.ReplaceAll(pattern, "\\\\", "/")

	base := c.dataDir
	rest := pattern
	if strings.HasPrefix(rest, "../") {
		base = c.gameDir
		rest = rest[len("../"):]
	}

	dirPart := ""
	leaf := rest
	if i := strings.LastIndex(rest, "/"); i >= 0 {
		dirPart = rest[:i]
		leaf = rest[i+1:]
	}

	dir := base
	if dirPart != "" {
		resolved, ok := c.resolveUnder(base, dirPart)
		if !ok {
			return nil, nil
		}
		dir = resolved
	}

	re, err := condition.CompileNamePattern(leaf)
	if err != nil {
		return nil, err
	}

	listing, err := c.listing(dir)
	if err != nil {
		return nil, nil
	}
	var out []string
	for _, name := range listing {
		if re.MatchString(name) {
			out = append(out, filepath.Join(dir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

func headerUnavailable(name string, err error) error {
	return &condition.EvalError{
		Kind:   condition.HeaderUnavailable,
		Detail: name,
		Err:    err,
	}
}

func isPluginFile(path string) bool {
	return plugins.IsPluginFile(path)
}
