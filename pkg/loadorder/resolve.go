package loadorder

import (
	"os"
	"path/filepath"
	"strings"
)

// resolvePath maps a condition path argument to an absolute path on
// disk, matching each segment case-insensitively. Paths are relative
// to the data directory; a single leading "../" escapes to the game
// install directory and no further.
func (c *Context) resolvePath(path string) (string, bool) {
	path = strings.ReplaceAll(path, "\\", "/")
	base := c.dataDir
	if strings.HasPrefix(path, "../") {
		base = c.gameDir
		path = path[len("../"):]
	}
	return c.resolveUnder(base, path)
}

// resolveUnder walks rel's slash-separated segments below base,
// consulting the per-directory listing cache for case-insensitive
// matches. Any ".." segment fails the lookup.
func (c *Context) resolveUnder(base, rel string) (string, bool) {
	current := base
	segments := strings.Split(rel, "/")
	for _, seg := range segments {
		if seg == "" || seg == "." {
			continue
		}
		if seg == ".." {
			return "", false
		}
		listing, err := c.listing(current)
		if err != nil {
			return "", false
		}
		actual, ok := listing[strings.ToLower(seg)]
		if !ok {
			return "", false
		}
		current = filepath.Join(current, actual)
	}
	if current == base {
		return "", false
	}
	return current, true
}

// listing returns dir's entries keyed by lowercased name, reading the
// directory once.
func (c *Context) listing(dir string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.listings[dir]; ok {
		return cached, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	listing := make(map[string]string, len(entries))
	for _, e := range entries {
		listing[strings.ToLower(e.Name())] = e.Name()
	}
	c.listings[dir] = listing
	return listing, nil
}
