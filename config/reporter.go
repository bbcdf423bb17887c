package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"stylec/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty report. When destination cannot be
// created the report goes to a temporary file.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	return &Report{entries: make(map[string]entry), file: f}, nil
}

type entry struct {
	original string
	actual   string
	stamp    time.Time
	data     []byte
}

// Report accumulates files, directories and generated data for the debug
// archive written on Close. All methods are safe on nil receiver, which
// means no report has been requested, and safe for concurrent use.
type Report struct {
	mu      sync.Mutex
	entries map[string]entry
	file    *os.File
}

// Close writes the archive.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finalize()
}

// Name returns absolute name of the archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store remembers path to a file or directory which is read when archive is
// written. Storing different paths under the same name is a programming error.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.entries[name]; exists && old.original != path {
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old.original, path))
	}
	e := entry{original: path, actual: path}
	if p, err := filepath.Abs(path); err == nil {
		e.actual = p
	}
	r.entries[name] = e
}

// StoreData puts data into the archive under name. When name is taken a
// numeric suffix is added before extension.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.unique(name)] = entry{data: data, stamp: time.Now()}
}

// StoreCopy copies file or directory to a temporary location right away, so
// the archive has content as it was at the time of the call.
func (r *Report) StoreCopy(name, src string) error {
	if r == nil {
		return nil
	}

	abs, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	dir, err := os.MkdirTemp("", misc.GetAppName()+"-r-")
	if err != nil {
		return err
	}

	e := entry{stamp: time.Now(), original: src}
	switch {
	case info.Mode().IsRegular():
		if e.actual, err = copyFile(dir, abs, info.ModTime()); err != nil {
			return err
		}
	case info.Mode().IsDir():
		if err := copyDir(dir, abs); err != nil {
			return err
		}
		e.actual = dir
	default:
		return fmt.Errorf("unable to copy %s: not a file or directory", src)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.unique(name)] = e
	return nil
}

// unique must be called with lock held.
func (r *Report) unique(name string) string {
	if _, exists := r.entries[name]; !exists {
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		if _, exists := r.entries[candidate]; !exists {
			return candidate
		}
	}
}

func copyFile(dir, src string, modTime time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, filepath.Base(src))

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dst, os.Chtimes(dst, modTime, modTime)
}

// walkFiles calls fn for every regular file under root with slash separated
// relative name. Links, sockets and such are skipped.
func walkFiles(root string, fn func(rel, full string, info os.FileInfo) error) error {
	return filepath.Walk(root, func(full string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, full)
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(rel), full, info)
	})
}

func copyDir(dir, src string) error {
	return walkFiles(src, func(rel, full string, info os.FileInfo) error {
		_, err := copyFile(filepath.Dir(filepath.Join(dir, filepath.FromSlash(rel))), full, info.ModTime())
		return err
	})
}

// finalize must be called with lock held.
func (r *Report) finalize() error {
	arc := zip.NewWriter(r.file)

	names := slices.Sorted(maps.Keys(r.entries))
	if err := saveFile(arc, "MANIFEST", time.Now(), prepareManifest(names, r.entries)); err != nil {
		arc.Close()
		return err
	}
	for _, name := range names {
		if err := saveEntry(arc, name, r.entries[name]); err != nil {
			arc.Close()
			return err
		}
	}
	return arc.Close()
}

func saveEntry(arc *zip.Writer, name string, e entry) error {
	if len(e.data) > 0 {
		return saveFile(arc, name, e.stamp, bytes.NewReader(e.data))
	}

	info, err := os.Stat(e.actual)
	if err != nil {
		// absent files are ignored
		return nil
	}
	switch {
	case info.Mode().IsRegular():
		return saveLocal(arc, name, e.actual, info.ModTime())
	case info.Mode().IsDir():
		return walkFiles(e.actual, func(rel, full string, info os.FileInfo) error {
			return saveLocal(arc, path.Join(name, rel), full, info.ModTime())
		})
	}
	return nil
}

func prepareManifest(names []string, entries map[string]entry) *bytes.Buffer {
	now := time.Now()
	buf := new(bytes.Buffer)
	for _, k := range names {
		e := entries[k]
		if e.stamp.IsZero() {
			e.stamp = now
		}
		fmt.Fprintf(buf, "%s\t%s\t%s : %s\n", e.stamp.UTC().Format(time.UnixDate), k, e.original, e.actual)
	}
	return buf
}

func saveLocal(dst *zip.Writer, name, src string, t time.Time) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	return saveFile(dst, name, t, f)
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
