package build

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"stylec/archive"
)

// source is a single snapshot document. name is the path relative to the
// requested input (always including file name) with forward slashes.
type source struct {
	name     string
	origin   string
	data     []byte
	modified time.Time
}

// stem returns the source file name without extension.
func (s source) stem() string {
	base := path.Base(s.name)
	return strings.TrimSuffix(base, path.Ext(base))
}

// dir returns the directory part of the source name, "" for top level.
func (s source) dir() string {
	if d := path.Dir(s.name); d != "." {
		return d
	}
	return ""
}

var snapshotExts = map[string]bool{".yaml": true, ".yml": true, ".json": true}

func isSnapshotName(name string) bool {
	return snapshotExts[strings.ToLower(path.Ext(name))]
}

// collect finds snapshot documents under src. Source could be a file, a
// directory (walked recursively), a zip archive or a path inside zip archive.
// Results are sorted by name in natural order.
func collect(ctx context.Context, src string, log *zap.Logger) ([]source, error) {
	var (
		head, tail string
		out        []source
	)
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return nil, fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if out, err = collectDir(ctx, head, log); err != nil {
				return nil, fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := archive.IsArchive(head)
		if err != nil {
			// checking format - but cannot open target file
			return nil, fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if out, err = collectArchive(ctx, head, filepath.ToSlash(tail), log); err != nil {
				return nil, fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		if len(tail) != 0 {
			return nil, fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}
		data, err := os.ReadFile(head)
		if err != nil {
			return nil, fmt.Errorf("unable to read source: %w", err)
		}
		out = append(out, source{name: filepath.Base(head), origin: head, data: data, modified: fi.ModTime()})
		break
	}
	if len(head) == 0 {
		return nil, fmt.Errorf("input source was not found (%s)", src)
	}

	sort.SliceStable(out, func(i, j int) bool { return natural.Less(out[i].name, out[j].name) })
	return out, nil
}

// collectDir walks directory tree finding snapshot documents.
func collectDir(ctx context.Context, dir string, log *zap.Logger) ([]source, error) {
	var out []source
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", p), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if !isSnapshotName(p) {
			log.Debug("Skipping file, not recognized as snapshot", zap.String("file", p))
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", p), zap.Error(err))
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, source{name: filepath.ToSlash(rel), origin: p, data: data, modified: info.ModTime()})
		return nil
	})
	if err == nil && len(out) == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return out, err
}

// collectArchive finds snapshot documents inside archive under "pathIn".
func collectArchive(ctx context.Context, arc, pathIn string, log *zap.Logger) ([]source, error) {
	var out []source
	err := archive.Walk(arc, pathIn, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !isSnapshotName(f.Name) {
			log.Debug("Skipping file, not recognized as snapshot", zap.String("archive", arc), zap.String("file", f.Name))
			return nil
		}
		data, err := archive.ReadFile(f)
		if err != nil {
			return fmt.Errorf("unable to read %s: %w", f.Name, err)
		}
		name := strings.TrimPrefix(strings.TrimPrefix(f.Name, pathIn), "/")
		if name == "" {
			// path points to the file itself
			name = path.Base(f.Name)
		}
		out = append(out, source{name: name, origin: arc + ":" + f.Name, data: data, modified: f.Modified})
		return nil
	})
	if err == nil && len(out) == 0 {
		if pathIn != "" {
			return nil, errors.New("nothing found under " + pathIn)
		}
		log.Debug("Nothing to process", zap.String("archive", arc))
	}
	return out, err
}
