package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"stylec/config"
	"stylec/stylesheet"
)

func preparedEnv(t *testing.T) *LocalEnv {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("unable to load default configuration: %v", err)
	}
	return &LocalEnv{Cfg: cfg, Log: zap.NewNop()}
}

func TestPrepare_Defaults(t *testing.T) {
	env := preparedEnv(t)
	if err := env.Prepare(); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	defer env.Release()

	if env.Engine == nil {
		t.Fatal("engine not prepared")
	}
	if env.Assets != nil || env.Cache != nil {
		t.Error("assets and cache must stay off by default")
	}
}

func TestPrepare_Full(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0755); err != nil {
		t.Fatal(err)
	}
	logo := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1 1"></svg>`
	if err := os.WriteFile(filepath.Join(dir, "assets", "logo.svg"), []byte(logo), 0644); err != nil {
		t.Fatal(err)
	}
	table := "version: 7\nproperties:\n  - property: user-select\n    prefixes: [\"-webkit-\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "prefixes.yaml"), []byte(table), 0644); err != nil {
		t.Fatal(err)
	}

	env := preparedEnv(t)
	env.Cfg.Assets.Dir = filepath.Join(dir, "assets")
	env.Cfg.Engine.PrefixTable = filepath.Join(dir, "prefixes.yaml")
	env.Cfg.Output.CachePath = filepath.Join(dir, "cache", "build.sqlite")
	if err := os.MkdirAll(filepath.Dir(env.Cfg.Output.CachePath), 0755); err != nil {
		t.Fatal(err)
	}

	if err := env.Prepare(); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	defer env.Release()

	if env.Assets == nil || env.Assets.Len() != 1 {
		t.Fatalf("assets not scanned: %v", env.Assets)
	}
	if env.Cache == nil {
		t.Fatal("cache not opened")
	}
	if !strings.Contains(env.Engine.Tables(), "p7") {
		t.Errorf("prefix table not used, tables %s", env.Engine.Tables())
	}

	sheet := stylesheet.New(zap.NewNop(), env.Engine)
	if err := sheet.UpsertRule(&stylesheet.PlainRule{ID: "r", Selector: ".r",
		Styles: []stylesheet.Entry{stylesheet.Raw("background-image", `url("asset:logo")`)}}); err != nil {
		t.Fatal(err)
	}
	res, err := sheet.Compile(stylesheet.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.CSS, `url("/static/logo.svg")`) {
		t.Errorf("asset not resolved:\n%s", res.CSS)
	}

	if err := env.Release(); err != nil {
		t.Errorf("Release() error = %v", err)
	}
	if env.Cache != nil {
		t.Error("cache must be released")
	}
}

func TestPrepare_Errors(t *testing.T) {
	if err := (&LocalEnv{}).Prepare(); err == nil {
		t.Error("uninitialized environment must fail")
	}

	env := preparedEnv(t)
	env.Cfg.Engine.ShorthandTable = filepath.Join(t.TempDir(), "missing.yaml")
	if err := env.Prepare(); err == nil {
		t.Error("missing shorthand table must fail")
	}
}
