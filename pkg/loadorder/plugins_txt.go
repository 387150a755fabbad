package loadorder

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/arthur-debert/lootlint/pkg/errors"
)

type pluginState struct {
	name   string
	active bool
}

// readPluginsFile parses an active-plugin list. Lines starting with
// '#' are comments. Newer games prefix active plugins with '*' and
// list inactive ones bare; older games list only active plugins with
// no marker. If no line carries a '*', every listed plugin is treated
// as active.
func readPluginsFile(path string) ([]pluginState, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLoadOrderRead, "cannot read plugin list %s", path).
			WithDetail("path", path)
	}
	defer f.Close()

	entries, err := parsePluginsList(f)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLoadOrderRead, "cannot read plugin list %s", path).
			WithDetail("path", path)
	}
	return entries, nil
}

func parsePluginsList(r io.Reader) ([]pluginState, error) {
	var entries []pluginState
	starred := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		active := false
		if strings.HasPrefix(line, "*") {
			active = true
			starred = true
			line = strings.TrimSpace(line[1:])
			if line == "" {
				continue
			}
		}
		entries = append(entries, pluginState{name: line, active: active})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if !starred {
		for i := range entries {
			entries[i].active = true
		}
	}
	return entries, nil
}

// scanDataDir is the fallback when no plugin list is available: every
// plugin file in the data directory, sorted case-insensitively, all
// treated as active.
func scanDataDir(dataDir string) ([]pluginState, error) {
	dirEntries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDataDirAccess, "cannot list data directory %s", dataDir).
			WithDetail("data_dir", dataDir)
	}
	var entries []pluginState
	for _, e := range dirEntries {
		if e.IsDir() || !isPluginFile(e.Name()) {
			continue
		}
		entries = append(entries, pluginState{name: e.Name(), active: true})
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].name) < strings.ToLower(entries[j].name)
	})
	return entries, nil
}
