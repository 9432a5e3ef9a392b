package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"siteblock/logger"

	"gopkg.in/yaml.v3"
)

// 可配置的上游行类型；include 与 regexp 不在其中，永远不会被处理
var supportedKinds = map[string]bool{
	"domain":  true,
	"full":    true,
	"keyword": true,
}

// CreateDefaultConfig 创建默认配置文件
func CreateDefaultConfig(filePath string) error {
	return os.WriteFile(filePath, []byte(DefaultConfigContent), 0644)
}

// LoadConfig 从 YAML 文件加载配置，文件不存在时自动创建默认配置
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := CreateDefaultConfig(filePath); err != nil {
			return nil, fmt.Errorf("create default config: %w", err)
		}
		data = []byte(DefaultConfigContent)
	}

	return Parse(data)
}

// Parse decodes YAML config content, fills defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaultValues(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes cfg back as YAML.
func SaveConfig(filePath string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

// Validate checks the fields that defaults cannot fix.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Input) == "" {
		errs = append(errs, errors.New("input must not be empty"))
	}
	if strings.TrimSpace(c.Output) == "" {
		errs = append(errs, errors.New("output must not be empty"))
	}

	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url must not be empty"))
	} else if u, err := url.Parse(c.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("invalid base_url %q: %w", c.BaseURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file" {
		errs = append(errs, fmt.Errorf("unsupported base_url scheme %q", u.Scheme))
	}

	if c.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be >= 1, got %d", c.Concurrency))
	}

	switch c.Dialect {
	case DialectPlain, DialectRules:
	default:
		errs = append(errs, fmt.Errorf("unknown dialect %q (want %s or %s)", c.Dialect, DialectPlain, DialectRules))
	}

	for kind, shape := range c.Kinds {
		if !supportedKinds[kind] {
			errs = append(errs, fmt.Errorf("kind %q cannot be enabled", kind))
		}
		if shape != ShapeSuffix && shape != ShapeExact {
			errs = append(errs, fmt.Errorf("kind %q: unknown shape %q", kind, shape))
		}
	}
	if _, ok := c.Kinds[c.PlainKind]; !ok {
		errs = append(errs, fmt.Errorf("plain_kind %q is not listed in kinds", c.PlainKind))
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	return errors.Join(errs...)
}
