package plugins

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arthur-debert/lootlint/pkg/games"
	"github.com/arthur-debert/lootlint/pkg/logging"
)

// Record flags in the TES4 header record.
const (
	flagMaster = 0x00000001
	flagLight  = 0x00000200
)

// descVersionRe extracts a version number from a plugin description,
/// matching the esplugin heuristic ("version: 1.2.3", "v1.2", ...).
var descVersionRe = regexp.MustCompile(`(?i)\bversion:?\s*v?([0-9][0-9a-z.\-+]*)`)

// Reader parses plugin headers for one game's record layout.
type Reader struct {
	game games.Game
}

// NewReader creates a header reader for the given game.
func NewReader(game games.Game) *Reader {
	return &Reader{game: game}
}

// Header reads and parses the plugin file at path.
func (r *Reader) Header(path string) (*Header, error) {
	logger := logging.GetLogger("plugins.reader")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &HeaderError{Path: path, Err: err}
	}

	h := &Header{
		Name: filepath.Base(path),
		Path: path,
		CRC:  crc32.ChecksumIEEE(data),
	}
	ext := strings.ToLower(filepath.Ext(h.Name))
	h.IsMaster = ext == ".esm"
	h.IsLight = ext == ".esl"

	// Zero-byte placeholders exist in the wild; they carry no header.
	if len(data) == 0 {
		h.CRC = 0
		return h, nil
	}

	switch r.game.Layout {
	case games.LayoutTES3:
		if len(data) < 4 || string(data[:4]) != "TES3" {
			return nil, &HeaderError{Path: path, Err: fmt.Errorf("not a TES3 plugin")}
		}
		return h, nil
	case games.LayoutTES4, games.LayoutLate:
		if err := r.parseTES4(data, h); err != nil {
			return nil, &HeaderError{Path: path, Err: err}
		}
		logger.Trace().
			Str("plugin", h.Name).
			Bool("light", h.IsLight).
			Int("formids", len(h.FormIDs)).
			Msg("parsed plugin header")
		return h, nil
	default:
		return nil, &HeaderError{Path: path, Err: fmt.Errorf("unsupported record layout %d", r.game.Layout)}
	}
}

// recordHeaderLen returns the record header size for the game's layout.
func (r *Reader) recordHeaderLen() int {
	if r.game.Layout == games.LayoutTES4 {
		return 20
	}
	return 24
}

func (r *Reader) parseTES4(data []byte, h *Header) error {
	hdrLen := r.recordHeaderLen()
	if len(data) < hdrLen {
		return fmt.Errorf("file truncated before header record")
	}
	if string(data[:4]) != "TES4" {
		return fmt.Errorf("not a TES4 plugin")
	}

	dataSize := binary.LittleEndian.Uint32(data[4:8])
	flags := binary.LittleEndian.Uint32(data[8:12])
	if flags&flagMaster != 0 {
		h.IsMaster = true
	}
	if r.game.Layout == games.LayoutLate && flags&flagLight != 0 {
		h.IsLight = true
	}

	end := hdrLen + int(dataSize)
	if end > len(data) {
		return fmt.Errorf("header record extends past end of file")
	}
	if err := parseHeaderSubrecords(data[hdrLen:end], h); err != nil {
		return err
	}

	// FormID scanning needs 24-byte record headers; the older layout
	// keeps FormIDs in the same slot but is not checked for light-range
	// validity, so skip the full walk there.
	if r.game.Layout == games.LayoutLate {
		return scanFormIDs(data[end:], h)
	}
	return nil
}

// parseHeaderSubrecords walks the TES4 header record's subrecords,
// collecting masters and the description-derived version.
func parseHeaderSubrecords(data []byte, h *Header) error {
	off := 0
	for off+6 <= len(data) {
		typ := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint16(data[off+4 : off+6]))
		off += 6
		if off+size > len(data) {
			return fmt.Errorf("subrecord %s extends past header record", typ)
		}
		payload := data[off : off+size]
		off += size
		switch typ {
		case "MAST":
			h.Masters = append(h.Masters, strings.TrimRight(string(payload), "\x00"))
		case "SNAM":
			desc := strings.TrimRight(string(payload), "\x00")
			if m := descVersionRe.FindStringSubmatch(desc); m != nil {
				h.Version = m[1]
			}
		}
	}
	return nil
}

// scanFormIDs walks the top-level groups after the header record and
// collects every record's FormID.
func scanFormIDs(data []byte, h *Header) error {
	return walkGroup(data, h)
}

func walkGroup(data []byte, h *Header) error {
	off := 0
	for off+24 <= len(data) {
		typ := string(data[off : off+4])
		size := binary.LittleEndian.Uint32(data[off+4 : off+8])
		if typ == "GRUP" {
			// GRUP size includes its own 24-byte header.
			if size < 24 || off+int(size) > len(data) {
				return fmt.Errorf("group extends past end of file")
			}
			if err := walkGroup(data[off+24:off+int(size)], h); err != nil {
				return err
			}
			off += int(size)
			continue
		}
		formID := binary.LittleEndian.Uint32(data[off+12 : off+16])
		h.FormIDs = append(h.FormIDs, formID)
		next := off + 24 + int(size)
		if next <= off || next > len(data) {
			return fmt.Errorf("record %s extends past end of file", typ)
		}
		off = next
	}
	if off != len(data) {
		return fmt.Errorf("trailing bytes after last record")
	}
	return nil
}
