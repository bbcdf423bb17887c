package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	zipFile, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer zipFile.Close()

	w := zip.NewWriter(zipFile)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
}

func TestWalk(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "themes.zip")
	writeZip(t, zipPath, map[string]string{
		"themes/dark.yaml":  "version: 1\nname: dark\n",
		"themes/light.yaml": "version: 1\nname: light\n",
		"themes/sub/":       "",
		"base.yaml":         "version: 1\n",
	})

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"themes prefix", "themes/", []string{"themes/dark.yaml", "themes/light.yaml"}},
		{"empty prefix", "", []string{"base.yaml", "themes/dark.yaml", "themes/light.yaml"}},
		{"no match", "fonts/", nil},
		{"case sensitive", "Themes/", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var visited []string
			err := Walk(zipPath, tt.pattern, func(archive string, file *zip.File) error {
				if archive != zipPath {
					t.Errorf("archive = %s, want %s", archive, zipPath)
				}
				visited = append(visited, file.Name)
				return nil
			})
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			sort.Strings(visited)
			if len(visited) != len(tt.want) {
				t.Fatalf("visited %v, want %v", visited, tt.want)
			}
			for i := range visited {
				if visited[i] != tt.want[i] {
					t.Errorf("visited[%d] = %s, want %s", i, visited[i], tt.want[i])
				}
			}
		})
	}

	t.Run("walkFn returns error", func(t *testing.T) {
		stop := errors.New("stop")
		count := 0
		err := Walk(zipPath, "", func(string, *zip.File) error {
			count++
			return stop
		})
		if !errors.Is(err, stop) || count != 1 {
			t.Errorf("Walk() = %v after %d files, want early stop", err, count)
		}
	})

	t.Run("content", func(t *testing.T) {
		err := Walk(zipPath, "themes/dark", func(_ string, file *zip.File) error {
			data, err := ReadFile(file)
			if err != nil {
				return err
			}
			if string(data) != "version: 1\nname: dark\n" {
				t.Errorf("content = %q", data)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
	})
}

func TestWalk_InvalidArchive(t *testing.T) {
	noop := func(string, *zip.File) error { return nil }

	if err := Walk(filepath.Join(t.TempDir(), "missing.zip"), "", noop); err == nil {
		t.Error("expected error for nonexistent file")
	}

	invalid := filepath.Join(t.TempDir(), "invalid.zip")
	if err := os.WriteFile(invalid, []byte("not a zip file"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Walk(invalid, "", noop); err == nil {
		t.Error("expected error for invalid zip file")
	}

	unsafe := filepath.Join(t.TempDir(), "unsafe.zip")
	writeZip(t, unsafe, map[string]string{"../escape.yaml": "version: 1\n"})
	if err := Walk(unsafe, "", noop); err == nil {
		t.Error("expected error for path traversal entry")
	}
}

func TestIsArchive(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "a.zip")
	writeZip(t, zipPath, map[string]string{"a.yaml": "version: 1\n"})
	plain := filepath.Join(dir, "a.yaml")
	if err := os.WriteFile(plain, []byte("version: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{zipPath, true},
		{plain, false},
		{empty, false},
	}
	for _, tt := range tests {
		got, err := IsArchive(tt.path)
		if err != nil {
			t.Errorf("IsArchive(%s) error = %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("IsArchive(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if _, err := IsArchive(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestIsSafePath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"site.css", true},
		{"themes/dark.css", true},
		{"/etc/passwd", false},
		{`\windows`, false},
		{"../up.css", false},
		{"a/../../b", false},
	}
	for _, tt := range tests {
		if got := isSafePath(tt.name); got != tt.want {
			t.Errorf("isSafePath(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
