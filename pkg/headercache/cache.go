// Package headercache persists parsed plugin headers in a SQLite
// database so repeated runs skip re-reading unchanged plugin files.
// Entries are invalidated by file size and modification time.
package headercache

import (
	"database/sql"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/lootlint/pkg/errors"
	"github.com/arthur-debert/lootlint/pkg/logging"
	"github.com/arthur-debert/lootlint/pkg/plugins"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS headers (
	path      TEXT PRIMARY KEY,
	size      INTEGER NOT NULL,
	mtime     INTEGER NOT NULL,
	name      TEXT NOT NULL,
	is_master INTEGER NOT NULL,
	is_light  INTEGER NOT NULL,
	crc       INTEGER NOT NULL,
	version   TEXT NOT NULL,
	masters   TEXT NOT NULL,
	form_ids  BLOB NOT NULL
);
`

// Cache is a read-through plugins.Provider backed by SQLite. Lookup
// misses and stale entries fall through to the wrapped provider; any
// cache failure degrades to an uncached read, never a failed run.
type Cache struct {
	db     *sql.DB
	inner  plugins.Provider
	logger zerolog.Logger
}

// Open opens (creating if needed) the cache database at path,
// wrapping inner.
func Open(path string, inner plugins.Provider) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrHeaderCache, "cannot create cache directory for %s", path)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrHeaderCache, "cannot open header cache %s", path)
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, errors.ErrHeaderCache, "cannot initialize header cache %s", path)
	}
	return &Cache{
		db:     db,
		inner:  inner,
		logger: logging.GetLogger("headercache"),
	}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Header implements plugins.Provider.
func (c *Cache) Header(path string) (*plugins.Header, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &plugins.HeaderError{Path: path, Err: err}
	}
	size := info.Size()
	mtime := info.ModTime().UnixNano()

	if header, ok := c.lookup(path, size, mtime); ok {
		return header, nil
	}

	header, err := c.inner.Header(path)
	if err != nil {
		return nil, err
	}
	c.store(path, size, mtime, header)
	return header, nil
}

func (c *Cache) lookup(path string, size, mtime int64) (*plugins.Header, bool) {
	row := c.db.QueryRow(
		`SELECT size, mtime, name, is_master, is_light, crc, version, masters, form_ids
		 FROM headers WHERE path = ?`, path)

	var (
		gotSize, gotMtime  int64
		isMaster, isLight  bool
		crc                uint32
		name, version      string
		masters            string
		formIDs            []byte
	)
	err := row.Scan(&gotSize, &gotMtime, &name, &isMaster, &isLight, &crc, &version, &masters, &formIDs)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		c.logger.Debug().Err(err).Str("path", path).Msg("header cache lookup failed")
		return nil, false
	}
	if gotSize != size || gotMtime != mtime {
		return nil, false
	}

	header := &plugins.Header{
		Name:     name,
		Path:     path,
		IsMaster: isMaster,
		IsLight:  isLight,
		CRC:      crc,
		Version:  version,
		FormIDs:  decodeFormIDs(formIDs),
	}
	if masters != "" {
		header.Masters = strings.Split(masters, "\n")
	}
	return header, true
}

func (c *Cache) store(path string, size, mtime int64, h *plugins.Header) {
	_, err := c.db.Exec(
		`INSERT INTO headers(path, size, mtime, name, is_master, is_light, crc, version, masters, form_ids)
		 VALUES(?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(path) DO UPDATE SET
		   size=excluded.size, mtime=excluded.mtime, name=excluded.name,
		   is_master=excluded.is_master, is_light=excluded.is_light,
		   crc=excluded.crc, version=excluded.version,
		   masters=excluded.masters, form_ids=excluded.form_ids`,
		path, size, mtime, h.Name, h.IsMaster, h.IsLight, h.CRC, h.Version,
		strings.Join(h.Masters, "\n"), encodeFormIDs(h.FormIDs))
	if err != nil {
		c.logger.Debug().Err(err).Str("path", path).Msg("header cache store failed")
	}
}

func encodeFormIDs(ids []uint32) []byte {
	out := make([]byte, 4*len(ids))
	for i, id := range ids {
		binary.LittleEndian.PutUint32(out[4*i:], id)
	}
	return out
}

func decodeFormIDs(b []byte) []uint32 {
	if len(b) < 4 {
		return nil
	}
	out := make([]uint32, 0, len(b)/4)
	for i := 0; i+4 <= len(b); i += 4 {
		out = append(out, binary.LittleEndian.Uint32(b[i:]))
	}
	return out
}
