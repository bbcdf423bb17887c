package classmap_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"stylec/classmap"
	"stylec/stylesheet"
)

func compiled(t *testing.T) *stylesheet.Result {
	t.Helper()
	s := stylesheet.New(zap.NewNop(), nil)
	for _, r := range []*stylesheet.PlainRule{
		{ID: "r10", Selector: ".b", Styles: []stylesheet.Entry{stylesheet.Raw("color", "red")}},
		{ID: "r2", Selector: ".a", Styles: []stylesheet.Entry{stylesheet.Raw("display", "block"), stylesheet.Raw("color", "red")}},
	} {
		if err := s.UpsertRule(r); err != nil {
			t.Fatal(err)
		}
	}
	res, err := s.Compile(stylesheet.Options{Mode: stylesheet.ModeAtomic})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestFromResult(t *testing.T) {
	m := classmap.FromResult("site", compiled(t))
	if len(m.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %+v", m.Entries)
	}
	order := []string{m.Entries[0].Rule + "/" + m.Entries[0].Property, m.Entries[1].Rule + "/" + m.Entries[1].Property, m.Entries[2].Rule + "/" + m.Entries[2].Property}
	if strings.Join(order, " ") != "r2/color r2/display r10/color" {
		t.Errorf("unexpected order %v", order)
	}
	if m.Entries[0].Classes[0] != m.Entries[2].Classes[0] {
		t.Error("identical declarations must share a class")
	}
}

func TestWrite(t *testing.T) {
	m := classmap.FromResult("site", compiled(t))
	class := m.Entries[0].Classes[0]

	tests := []struct {
		format classmap.Format
		want   []string
	}{
		{classmap.FormatYAML, []string{"sheet: site", "  - rule: r2", "      - " + class}},
		{classmap.FormatXML, []string{`<?xml version="1.0" encoding="UTF-8"?>`, `<classmap sheet="site">`, `<declaration rule="r2" property="color">`, "<class>" + class + "</class>"}},
		{classmap.FormatIon, []string{"site", "r10", class}},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := m.Write(&buf, tt.format); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}

	var buf bytes.Buffer
	if err := m.Write(&buf, classmap.FormatJSON); err != nil {
		t.Fatal(err)
	}
	var back classmap.Map
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if back.Sheet != "site" || len(back.Entries) != 3 {
		t.Errorf("unexpected json %+v", back)
	}
}

func TestWriteFile(t *testing.T) {
	m := classmap.FromResult("site", compiled(t))
	dir := t.TempDir()

	path := filepath.Join(dir, "classes.yml")
	if err := m.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if data, err := os.ReadFile(path); err != nil || !bytes.Contains(data, []byte("sheet: site")) {
		t.Errorf("unexpected file content %q, %v", data, err)
	}
	if err := m.WriteFile(filepath.Join(dir, "classes.txt")); err == nil {
		t.Error("unknown extension must fail")
	}
}
