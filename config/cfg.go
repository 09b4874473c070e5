package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	FetchConfig struct {
		Attempts  int           `yaml:"attempts" validate:"min=1,max=10"`
		Backoff   time.Duration `yaml:"backoff" validate:"gte=0"`
		Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
		MaxSize   int64         `yaml:"max_size" validate:"min=1"`
		UserAgent string        `yaml:"user_agent"`
	}

	DocumentConfig struct {
		RepairHTML            bool        `yaml:"repair_html"`
		Images                bool        `yaml:"images"`
		Tables                bool        `yaml:"tables"`
		InlineStyles          bool        `yaml:"inline_styles"`
		ParagraphStyle        string      `yaml:"paragraph_style"`
		TableStyle            string      `yaml:"table_style"`
		WatermarkMarker       string      `yaml:"watermark_marker" validate:"required"`
		MaxTableDepth         int         `yaml:"max_table_depth" validate:"min=1,max=64"`
		FixZip                bool        `yaml:"fix_zip"`
		FileNameTransliterate bool        `yaml:"file_name_transliterate"`
		Fetch                 FetchConfig `yaml:"fetch"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// Only fields we defined are allowed, so yaml.Unmarshal is not enough
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration expands embedded configuration template to get defaults,
// superimposes values from the file at the given path (if any) and validates
// the result.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
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

// Prepare returns expanded configuration template.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
