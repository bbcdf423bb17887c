package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer r.Close()

	out := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read %s: %v", f.Name, err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}

	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}

	input := filepath.Join(dir, "site.yaml")
	if err := os.WriteFile(input, []byte("version: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	sources := filepath.Join(dir, "sources")
	if err := os.MkdirAll(filepath.Join(sources, "nested"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sources, "nested", "a.yaml"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}

	r.Store("input.yaml", input)
	r.StoreData("dump/site.txt", []byte("StyleSheet (0 rules)"))
	if err := r.StoreCopy("sources", sources); err != nil {
		t.Fatalf("StoreCopy() error: %v", err)
	}
	if r.Name() != conf.Destination {
		t.Errorf("Name() = %q, want %q", r.Name(), conf.Destination)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	files := readArchive(t, conf.Destination)
	if files["input.yaml"] != "version: 1\n" {
		t.Errorf("input.yaml = %q", files["input.yaml"])
	}
	if files["dump/site.txt"] != "StyleSheet (0 rules)" {
		t.Errorf("dump/site.txt = %q", files["dump/site.txt"])
	}
	if files["sources/nested/a.yaml"] != "a" {
		t.Errorf("copied directory missing, have %v", files)
	}
	manifest := files["MANIFEST"]
	for _, name := range []string{"dump/site.txt", "input.yaml", "sources"} {
		if !strings.Contains(manifest, "\t"+name+"\t") {
			t.Errorf("MANIFEST does not list %s:\n%s", name, manifest)
		}
	}
}

func TestReport_Overwrite(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.Store("a", "one.log")
	r.Store("a", "one.log")

	defer func() {
		if recover() == nil {
			t.Error("storing different paths under the same name must panic")
		}
	}()
	r.Store("a", "two.log")
}

func TestReport_StoreDataVersioned(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.StoreData("dump/site.txt", []byte("1"))
	r.StoreData("dump/site.txt", []byte("2"))
	r.StoreData("dump/site.txt", []byte("3"))

	for name, want := range map[string]string{
		"dump/site.txt":   "1",
		"dump/site-1.txt": "2",
		"dump/site-2.txt": "3",
	} {
		if got := string(r.entries[name].data); got != want {
			t.Errorf("entry %s = %q, want %q", name, got, want)
		}
	}
}

func TestReport_Concurrent(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.StoreData("dump.txt", []byte{byte('a' + i)})
		}()
	}
	wg.Wait()
	if len(r.entries) != 16 {
		t.Errorf("have %d entries, want 16", len(r.entries))
	}
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	// all methods are safe on nil report
	r.Store("a", "b")
	r.StoreData("a", nil)
	if err := r.StoreCopy("a", "b"); err != nil {
		t.Errorf("StoreCopy on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name on nil report = %q", r.Name())
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
