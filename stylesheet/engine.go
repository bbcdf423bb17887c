package stylesheet

import (
	"fmt"

	"go.uber.org/zap"

	"stylec/atomize"
	"stylec/css"
	"stylec/prefix"
	"stylec/shorthand"
)

// Engine holds the immutable machinery shared by sheets: parser, property
// registry, shorthand and prefix tables, class cache. One engine may serve
// many sheets compiled concurrently.
type Engine struct {
	log        *zap.Logger
	parser     *css.Parser
	properties *css.Registry
	expander   *shorthand.Expander
	prefixer   *prefix.Prefixer
	cache      *atomize.Cache
	serializer css.Serializer
}

type engineOptions struct {
	maxDepth   int
	shorthands *shorthand.Table
	prefixes   *prefix.Table
	cache      *atomize.Cache
	assets     css.AssetResolver
	extraProps []string
}

// EngineOption customizes NewEngine.
type EngineOption func(*engineOptions)

// WithMaxDepth sets the value nesting limit.
func WithMaxDepth(depth int) EngineOption {
	return func(o *engineOptions) { o.maxDepth = depth }
}

// WithShorthandTable replaces the built in shorthand table.
func WithShorthandTable(t *shorthand.Table) EngineOption {
	return func(o *engineOptions) { o.shorthands = t }
}

// WithPrefixTable replaces the built in vendor prefix table.
func WithPrefixTable(t *prefix.Table) EngineOption {
	return func(o *engineOptions) { o.prefixes = t }
}

// WithCache shares a class name cache between engines.
func WithCache(c *atomize.Cache) EngineOption {
	return func(o *engineOptions) { o.cache = c }
}

// WithAssets sets the resolver used for image asset ids.
func WithAssets(r css.AssetResolver) EngineOption {
	return func(o *engineOptions) { o.assets = r }
}

// WithProperties registers additional known properties.
func WithProperties(names ...string) EngineOption {
	return func(o *engineOptions) { o.extraProps = append(o.extraProps, names...) }
}

// NewEngine builds an engine. It fails only when a supplied table is
// invalid.
func NewEngine(log *zap.Logger, opts ...EngineOption) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}
	parser := css.NewParser(log, o.maxDepth)
	exp, err := shorthand.New(log, parser, o.shorthands)
	if err != nil {
		return nil, fmt.Errorf("unable to load shorthand table: %w", err)
	}
	pfx, err := prefix.New(log, o.prefixes)
	if err != nil {
		return nil, fmt.Errorf("unable to load prefix table: %w", err)
	}
	if o.cache == nil {
		o.cache = atomize.NewCache()
	}
	e := &Engine{
		log:        log.Named("engine"),
		parser:     parser,
		properties: css.NewRegistry(o.extraProps...),
		expander:   exp,
		prefixer:   pfx,
		cache:      o.cache,
		serializer: css.Serializer{Assets: o.assets},
	}
	e.log.Debug("Engine ready",
		zap.Int("max-depth", parser.MaxDepth()),
		zap.Int("shorthand-version", exp.Version()),
		zap.Int("prefix-version", pfx.Version()))
	return e, nil
}

// DefaultEngine returns an engine with built in tables. The tables are
// embedded, so failure is a programming error.
func DefaultEngine(log *zap.Logger) *Engine {
	e, err := NewEngine(log)
	if err != nil {
		panic(err)
	}
	return e
}

// Parser returns the engine parser.
func (e *Engine) Parser() *css.Parser { return e.parser }

// Cache returns the class name cache.
func (e *Engine) Cache() *atomize.Cache { return e.cache }

// seed mixes the prefix table version into class names.
func (e *Engine) seed() string {
	return fmt.Sprintf("p%d", e.prefixer.Version())
}

// Tables identifies the shorthand and prefix tables the engine was built
// from. Outputs from engines with different tables are not interchangeable.
func (e *Engine) Tables() string {
	return fmt.Sprintf("s%d/p%d/d%d", e.expander.Version(), e.prefixer.Version(), e.parser.MaxDepth())
}
