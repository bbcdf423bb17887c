// Package assets maps asset ids referenced from style values to URLs of
// files found on disk.
package assets

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Kind of an asset.
type Kind int

const (
	KindImage Kind = iota
	KindFont
)

func (k Kind) String() string {
	if k == KindFont {
		return "font"
	}
	return "image"
}

// Asset is one file known to the manifest.
type Asset struct {
	ID        string
	Path      string
	URL       string
	Kind      Kind
	Extension string
}

// Manifest resolves asset ids. It is immutable once built and safe for
// concurrent use.
type Manifest struct {
	log    *zap.Logger
	assets map[string]Asset
}

// enough for filetype matchers and an svg root element after a prolog
const headSize = 1024

// Scan builds a manifest from dir. The id of a file is its slash separated
// path relative to dir without extension; its URL is the same relative path
// under urlPrefix. Files whose content is neither an image nor a font are
// reported and skipped.
func Scan(log *zap.Logger, dir, urlPrefix string) (*Manifest, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manifest{log: log.Named("assets"), assets: make(map[string]Asset)}
	prefix := strings.TrimSuffix(urlPrefix, "/")

	var errs error
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		a, err := inspect(path)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("asset %s: %w", rel, err))
			return nil
		}
		a.ID = strings.TrimSuffix(rel, filepath.Ext(rel))
		a.URL = rel
		if prefix != "" {
			a.URL = prefix + "/" + rel
		}
		if prev, dup := m.assets[a.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("asset %s: id %q is already used by %s", rel, a.ID, prev.Path))
			return nil
		}
		m.assets[a.ID] = a
		m.log.Debug("Asset found", zap.String("id", a.ID), zap.Stringer("kind", a.Kind), zap.String("url", a.URL))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to scan assets: %w", err)
	}
	return m, errs
}

// inspect classifies a file by content.
func inspect(path string) (Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Asset{}, err
	}
	defer f.Close()

	head := make([]byte, headSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Asset{}, err
	}
	head = head[:n]

	a := Asset{Path: path}
	switch {
	case filetype.IsImage(head):
		a.Kind = KindImage
	case filetype.IsFont(head):
		a.Kind = KindFont
	case strings.EqualFold(filepath.Ext(path), ".svg") && bytes.Contains(head, []byte("<svg")):
		a.Kind, a.Extension = KindImage, "svg"
		return a, nil
	default:
		return Asset{}, fmt.Errorf("content is neither an image nor a font")
	}
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return Asset{}, fmt.Errorf("unrecognized content")
	}
	a.Extension = kind.Extension
	return a, nil
}

// Lookup returns the asset with id.
func (m *Manifest) Lookup(id string) (Asset, bool) {
	a, ok := m.assets[id]
	return a, ok
}

// Resolve returns the URL of an asset. Unknown ids are returned unchanged.
// It satisfies css.AssetResolver.
func (m *Manifest) Resolve(id string) string {
	if a, ok := m.assets[id]; ok {
		return a.URL
	}
	m.log.Debug("Unknown asset", zap.String("id", id))
	return id
}

// FontFormat returns the format() hint for a font asset.
func (m *Manifest) FontFormat(id string) (string, bool) {
	a, ok := m.assets[id]
	if !ok || a.Kind != KindFont {
		return "", false
	}
	switch a.Extension {
	case "woff", "woff2":
		return a.Extension, true
	case "ttf":
		return "truetype", true
	case "otf":
		return "opentype", true
	}
	return "", false
}

// IDs returns asset ids in natural order.
func (m *Manifest) IDs() []string {
	ids := make([]string, 0, len(m.assets))
	for id := range m.assets {
		ids = append(ids, id)
	}
	sort.Sort(natural.StringSlice(ids))
	return ids
}

// Len returns the number of assets.
func (m *Manifest) Len() int {
	return len(m.assets)
}
