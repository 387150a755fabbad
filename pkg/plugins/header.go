// Package plugins extracts the header facts lootlint needs from
// installed plugin files: flags, masters, checksum and FormIDs.
package plugins

import (
	"fmt"
	"path/filepath"
	"strings"
)

// IsPluginFile reports whether name has a plugin file extension.
func IsPluginFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".esp", ".esm", ".esl":
		return true
	}
	return false
}

// Header holds the parsed facts about one plugin file.
type Header struct {
	// Name is the plugin file name (base name of Path).
	Name string

	// Path is the file the header was read from.
	Path string

	// IsMaster reports the ESM flag (or an .esm extension).
	IsMaster bool

	// IsLight reports the ESL flag (or an .esl extension).
	IsLight bool

	// CRC is the CRC-32 checksum of the whole file, the checksum LOOT
	// masterlists key dirty/clean info on.
	CRC uint32

	// Version is the version string extracted from the plugin
	// description, if any.
	Version string

	// Masters lists the plugin's master files in declaration order.
	Masters []string

	// FormIDs lists the FormIDs of all records the plugin defines, in
	// file order. Empty for formats without FormIDs (Morrowind).
	FormIDs []uint32
}

// HasFormID reports whether the plugin defines the given FormID.
func (h *Header) HasFormID(id uint32) bool {
	for _, fid := range h.FormIDs {
		if fid == id {
			return true
		}
	}
	return false
}

// Provider yields parsed headers for plugin files. Implementations are
// expected to be cheap to call repeatedly for the same path.
type Provider interface {
	Header(path string) (*Header, error)
}

// HeaderError reports a plugin file that could not be read or parsed.
// A corrupt plugin is diagnostically relevant, so callers surface this
// rather than swallowing it.
type HeaderError struct {
	Path string
	Err  error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("plugin header %s: %v", e.Path, e.Err)
}

func (e *HeaderError) Unwrap() error {
	return e.Err
}
