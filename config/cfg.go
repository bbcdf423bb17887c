package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	EngineConfig struct {
		Mode            CompileMode `yaml:"mode" validate:"gte=0"`
		IncludePrefixes bool        `yaml:"include_prefixes"`
		MergeShorthands bool        `yaml:"merge_shorthands"`
		MaxValueDepth   int         `yaml:"max_value_depth" validate:"min=4,max=1024"`
		Breakpoints     []string    `yaml:"breakpoints,omitempty" validate:"dive,required"`
		AtomicRules     []string    `yaml:"atomic_rules,omitempty" validate:"dive,required"`
		ShorthandTable  string      `yaml:"shorthand_table,omitempty" sanitize:"assure_file_access"`
		PrefixTable     string      `yaml:"prefix_table,omitempty" sanitize:"assure_file_access"`
	}

	AssetsConfig struct {
		Dir       string `yaml:"dir,omitempty" sanitize:"path_clean"`
		URLPrefix string `yaml:"url_prefix" validate:"required"`
	}

	BundleConfig struct {
		FixZip  bool `yaml:"fix_zip"`
		Dumps   bool `yaml:"dumps"`
		Sources bool `yaml:"sources"`
	}

	OutputConfig struct {
		NameTemplate          string       `yaml:"name_template"`
		FileNameTransliterate bool         `yaml:"file_name_transliterate"`
		ClassMap              ClassMapFmt  `yaml:"class_map" validate:"gte=0"`
		Workers               int          `yaml:"workers" validate:"gte=0"`
		CachePath             string       `yaml:"cache_path,omitempty" sanitize:"path_clean,assure_dir_exists_for_file"`
		Bundle                BundleConfig `yaml:"bundle"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Engine    EngineConfig   `yaml:"engine"`
		Assets    AssetsConfig   `yaml:"assets"`
		Output    OutputConfig   `yaml:"output"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	OutputNameTemplateFieldName TemplateFieldName = "name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("configuration sanitizing failed: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration tamplate to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
