package state

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stylec/assets"
	"stylec/buildcache"
	"stylec/prefix"
	"stylec/shorthand"
	"stylec/stylesheet"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}

// Prepare builds the compile machinery described by configuration: asset
// manifest, engine with its tables and, when requested, build cache. It
// must be called after configuration and logging are set.
func (e *LocalEnv) Prepare() error {
	if e.Cfg == nil || e.Log == nil {
		return errors.New("environment is not initialized")
	}
	log := e.Log
	cfg := &e.Cfg.Engine

	opts := []stylesheet.EngineOption{stylesheet.WithMaxDepth(cfg.MaxValueDepth)}

	if cfg.ShorthandTable != "" {
		t, err := shorthand.LoadTableFile(cfg.ShorthandTable)
		if err != nil {
			return fmt.Errorf("unable to load shorthand table: %w", err)
		}
		opts = append(opts, stylesheet.WithShorthandTable(t))
	}
	if cfg.PrefixTable != "" {
		t, err := prefix.LoadTableFile(cfg.PrefixTable)
		if err != nil {
			return fmt.Errorf("unable to load prefix table: %w", err)
		}
		opts = append(opts, stylesheet.WithPrefixTable(t))
	}

	if dir := e.Cfg.Assets.Dir; dir != "" {
		m, err := assets.Scan(log, dir, e.Cfg.Assets.URLPrefix)
		if m == nil {
			return err
		}
		if err != nil {
			// manifest keeps what could be recognized
			for _, er := range multierr.Errors(err) {
				log.Warn("Skipping asset", zap.Error(er))
			}
		}
		log.Debug("Assets ready", zap.String("dir", dir), zap.Int("count", m.Len()))
		e.Assets = m
		opts = append(opts, stylesheet.WithAssets(m.Resolve))
	}

	engine, err := stylesheet.NewEngine(log, opts...)
	if err != nil {
		return err
	}
	e.Engine = engine

	if path := e.Cfg.Output.CachePath; path != "" {
		c, err := buildcache.Open(log, path)
		if err != nil {
			return err
		}
		e.Cache = c
	}
	return nil
}

// Release closes resources opened by Prepare.
func (e *LocalEnv) Release() error {
	if e.Cache == nil {
		return nil
	}
	err := e.Cache.Close()
	e.Cache = nil
	return err
}
