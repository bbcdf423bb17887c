// Package atomize derives deterministic atomic class names from declaration
// fingerprints and tracks which rules use them.
package atomize

import (
	"encoding/base32"
	"encoding/binary"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/unicode/norm"

	"stylec/css"
)

// ClassPrefix starts every generated class name so it never begins with a
// digit.
const ClassPrefix = "c"

// lowercase, digits first, safe in URLs and CSS identifiers
var encoding = base32.NewEncoding("0123456789abcdefghijklmnopqrstuv").WithPadding(base32.NoPadding)

// Key is the semantic identity of one atomic declaration.
type Key struct {
	Breakpoint string
	Shape      string
	Property   string
	Value      string
}

// Fingerprint joins the key fields in fixed order. Text is NFC normalized
// so canonically equivalent input yields the same class.
func Fingerprint(seed string, k Key) string {
	var b strings.Builder
	b.Grow(len(seed) + len(k.Breakpoint) + len(k.Shape) + len(k.Property) + len(k.Value) + 4)
	for i, f := range []string{seed, k.Breakpoint, k.Shape, k.Property, k.Value} {
		if i > 0 {
			b.WriteByte(0)
		}
		b.WriteString(f)
	}
	return norm.NFC.String(b.String())
}

// ClassName hashes a fingerprint into a class name: the prefix followed by
// 13 base32 characters of a 64-bit xxh3 digest.
func ClassName(fingerprint string) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], xxh3.HashString(fingerprint))
	return ClassPrefix + encoding.EncodeToString(buf[:])
}

// Cache memoizes fingerprint to class name. Entries are written once and
// never change, so one cache may be shared by sheets compiled concurrently.
type Cache struct {
	m      sync.Map
	size   atomic.Int64
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Class returns the class name for fingerprint, computing it on first use.
func (c *Cache) Class(fingerprint string) string {
	if v, ok := c.m.Load(fingerprint); ok {
		c.hits.Add(1)
		return v.(string)
	}
	c.misses.Add(1)
	v, loaded := c.m.LoadOrStore(fingerprint, ClassName(fingerprint))
	if !loaded {
		c.size.Add(1)
	}
	return v.(string)
}

// Stats reports number of entries, hits and misses.
func (c *Cache) Stats() (size, hits, misses int64) {
	return c.size.Load(), c.hits.Load(), c.misses.Load()
}

// Generator maps declarations to class names. Seed is mixed into every
// fingerprint; sheets use the prefix table version so that class names
// change when emitted text for the same declaration does.
type Generator struct {
	cache *Cache
	seed  string
}

// NewGenerator creates a generator. A nil cache gets a private one.
func NewGenerator(cache *Cache, seed string) *Generator {
	if cache == nil {
		cache = NewCache()
	}
	return &Generator{cache: cache, seed: seed}
}

// Atomize returns the class name for a declaration. It is a pure function
// of its arguments and the generator seed.
func (g *Generator) Atomize(breakpoint, shape, property string, v css.Value) string {
	return g.AtomizeKey(Key{Breakpoint: breakpoint, Shape: shape, Property: property, Value: css.Serialize(v)})
}

// AtomizeKey is Atomize for an already serialized value.
func (g *Generator) AtomizeKey(k Key) string {
	return g.cache.Class(Fingerprint(g.seed, k))
}
