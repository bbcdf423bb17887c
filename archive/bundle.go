package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	fixzip "github.com/hidez8891/zip"
)

// Bundle collects compiled outputs into a single zip archive. Entries are
// written to a temporary file first, Close moves the result into place.
type Bundle struct {
	target string
	fix    bool
	tmp    *os.File
	arc    *zip.Writer
	names  map[string]bool
}

// NewBundle starts a bundle which will be stored at target. When fix is set
// data descriptors are stripped from the final archive, some readers cannot
// handle them.
func NewBundle(target string, fix bool) (*Bundle, error) {
	tmp, err := os.CreateTemp("", "bundle-*.zip")
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary bundle: %w", err)
	}
	return &Bundle{
		target: target,
		fix:    fix,
		tmp:    tmp,
		arc:    zip.NewWriter(tmp),
		names:  make(map[string]bool),
	}, nil
}

// Add stores data under name. Names use forward slashes and must be unique.
func (b *Bundle) Add(name string, data []byte, modified time.Time) error {
	name = path.Clean(name)
	if !isSafePath(name) {
		return fmt.Errorf("bundle entry %q: unsafe path", name)
	}
	if b.names[name] {
		return fmt.Errorf("bundle entry %q already exists", name)
	}
	w, err := b.arc.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	b.names[name] = true
	return nil
}

// Len returns the number of stored entries.
func (b *Bundle) Len() int {
	return len(b.names)
}

// Close finalizes the archive and writes it to target.
func (b *Bundle) Close() error {
	tmpName := b.tmp.Name()
	defer os.Remove(tmpName)

	if err := b.arc.Close(); err != nil {
		b.tmp.Close()
		return fmt.Errorf("unable to finalize bundle: %w", err)
	}
	if err := b.tmp.Close(); err != nil {
		return fmt.Errorf("unable to finalize bundle: %w", err)
	}
	if b.fix {
		return copyZipWithoutDataDescriptors(tmpName, b.target)
	}
	return copyFile(tmpName, b.target)
}

func copyZipWithoutDataDescriptors(from, to string) error {

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {

	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destinationFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destinationFile.Close()

	if _, err = io.Copy(destinationFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	if err = destinationFile.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}
	return nil
}

// Target returns where the bundle is stored.
func (b *Bundle) Target() string {
	return b.target
}
