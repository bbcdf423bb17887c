// Package buildcache persists compiled outputs between batch runs so that
// unchanged inputs are not compiled again.
package buildcache

import (
	"fmt"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE IF NOT EXISTS outputs (
	key      TEXT PRIMARY KEY,
	css      TEXT NOT NULL,
	classmap TEXT NOT NULL DEFAULT '',
	created  INTEGER NOT NULL
);`

// Entry is one cached output.
type Entry struct {
	CSS string
	// ClassMap is the encoded class map, empty in readable mode.
	ClassMap string
}

// Cache is a SQLite backed store. A single connection is shared, calls
// are serialized.
type Cache struct {
	log  *zap.Logger
	mu   sync.Mutex
	conn *sqlite.Conn
}

// Open opens or creates the cache database at path. ":memory:" gives a
// private in-memory cache.
func Open(log *zap.Logger, path string) (*Cache, error) {
	if log == nil {
		log = zap.NewNop()
	}
	flags := []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenCreate}
	if path == ":memory:" {
		flags = append(flags, sqlite.OpenMemory)
	} else {
		flags = append(flags, sqlite.OpenWAL)
	}
	conn, err := sqlite.OpenConn(path, flags...)
	if err != nil {
		return nil, fmt.Errorf("unable to open build cache %s: %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare build cache %s: %w", path, err)
	}
	return &Cache{log: log.Named("buildcache"), conn: conn}, nil
}

// Key identifies an output by input content, compile options and engine
// table versions.
func Key(input []byte, options string, tables string) string {
	h := xxh3.New()
	h.Write(input)
	h.WriteString("\x00" + options + "\x00" + tables)
	sum := h.Sum128()
	return fmt.Sprintf("%016x%016x", sum.Hi, sum.Lo)
}

// Get returns the entry stored under key.
func (c *Cache) Get(key string) (Entry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		e     Entry
		found bool
	)
	err := sqlitex.Execute(c.conn, `SELECT css, classmap FROM outputs WHERE key = ?`,
		&sqlitex.ExecOptions{
			Args: []any{key},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				e.CSS = stmt.ColumnText(0)
				e.ClassMap = stmt.ColumnText(1)
				found = true
				return nil
			},
		})
	if err != nil {
		return Entry{}, false, fmt.Errorf("unable to read build cache: %w", err)
	}
	c.log.Debug("Lookup", zap.String("key", key), zap.Bool("hit", found))
	return e, found, nil
}

// Put stores e under key, replacing any previous entry.
func (c *Cache) Put(key string, e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := sqlitex.Execute(c.conn, `INSERT OR REPLACE INTO outputs (key, css, classmap, created) VALUES (?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{key, e.CSS, e.ClassMap, time.Now().Unix()}})
	if err != nil {
		return fmt.Errorf("unable to write build cache: %w", err)
	}
	return nil
}

// Len returns the number of stored entries.
func (c *Cache) Len() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int
	err := sqlitex.Execute(c.conn, `SELECT count(*) FROM outputs`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			n = stmt.ColumnInt(0)
			return nil
		}})
	return n, err
}

// Close releases the database.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}
