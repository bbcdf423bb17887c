package assets_test

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"

	"stylec/assets"
)

var (
	pngHead   = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	woff2Head = []byte("wOF2\x00\x01\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")
	svgDoc    = []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"/>`)
)

func write(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "img10.png", pngHead)
	write(t, dir, "img2.png", pngHead)
	write(t, dir, "icons/logo.svg", svgDoc)
	write(t, dir, "fonts/inter.woff2", woff2Head)
	write(t, dir, ".hidden/skip.png", pngHead)

	m, err := assets.Scan(zap.NewNop(), dir, "https://cdn.example.com/static/")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if got, want := m.IDs(), []string{"fonts/inter", "icons/logo", "img2", "img10"}; !slices.Equal(got, want) {
		t.Errorf("IDs = %v, want %v", got, want)
	}
	if got, want := m.Resolve("icons/logo"), "https://cdn.example.com/static/icons/logo.svg"; got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
	if got := m.Resolve("missing"); got != "missing" {
		t.Errorf("unknown ids must resolve to themselves, got %q", got)
	}
	if f, ok := m.FontFormat("fonts/inter"); !ok || f != "woff2" {
		t.Errorf("FontFormat = %q, %v", f, ok)
	}
	if _, ok := m.FontFormat("img2"); ok {
		t.Error("images have no font format")
	}
	if a, ok := m.Lookup("img2"); !ok || a.Kind != assets.KindImage || a.Extension != "png" {
		t.Errorf("Lookup = %+v, %v", a, ok)
	}
}

func TestScan_Rejects(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "ok.png", pngHead)
	write(t, dir, "notes.png", []byte("just text"))
	write(t, dir, "dup.png", pngHead)
	write(t, dir, "dup.svg", svgDoc)

	m, err := assets.Scan(zap.NewNop(), dir, "")
	if err == nil {
		t.Fatal("expected errors")
	}
	if !strings.Contains(err.Error(), "notes.png") || !strings.Contains(err.Error(), `id "dup"`) {
		t.Errorf("unexpected error %v", err)
	}
	if m == nil || m.Len() != 2 {
		t.Fatalf("valid assets must still be kept")
	}
	if got := m.Resolve("ok"); got != "ok.png" {
		t.Errorf("Resolve = %q, want ok.png", got)
	}
}

func TestScan_MissingDir(t *testing.T) {
	if _, err := assets.Scan(nil, filepath.Join(t.TempDir(), "none"), ""); err == nil {
		t.Error("missing directory must fail")
	}
}
