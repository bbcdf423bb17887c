package archive

import (
	"archive/zip"
	"path/filepath"
	"testing"
	"time"
)

func TestBundle(t *testing.T) {
	for _, fix := range []bool{false, true} {
		target := filepath.Join(t.TempDir(), "site.zip")
		b, err := NewBundle(target, fix)
		if err != nil {
			t.Fatalf("NewBundle() error = %v", err)
		}
		now := time.Now()
		if err := b.Add("site.css", []byte(".a{color:red}\n"), now); err != nil {
			t.Fatal(err)
		}
		if err := b.Add("themes/dark.classes.json", []byte("{}"), now); err != nil {
			t.Fatal(err)
		}
		if err := b.Add("site.css", nil, now); err == nil {
			t.Error("duplicate entry must fail")
		}
		if err := b.Add("../x.css", nil, now); err == nil {
			t.Error("unsafe entry must fail")
		}
		if b.Len() != 2 {
			t.Errorf("Len() = %d, want 2", b.Len())
		}
		if err := b.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		r, err := zip.OpenReader(target)
		if err != nil {
			t.Fatalf("bundle (fix=%v) is not readable: %v", fix, err)
		}
		got := make(map[string]bool)
		for _, f := range r.File {
			got[f.Name] = true
			if fix && f.Flags&0x8 != 0 {
				t.Errorf("%s still has data descriptor", f.Name)
			}
			data, err := ReadFile(f)
			if err != nil {
				t.Errorf("unable to read %s: %v", f.Name, err)
			}
			if f.Name == "site.css" && string(data) != ".a{color:red}\n" {
				t.Errorf("site.css = %q", data)
			}
		}
		r.Close()
		if !got["site.css"] || !got["themes/dark.classes.json"] {
			t.Errorf("bundle (fix=%v) entries = %v", fix, got)
		}
	}
}
