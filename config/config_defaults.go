package config

import "github.com/c2h5oh/datasize"

const (
	DefaultInput   = "target_sites.txt"
	DefaultOutput  = "adguardhome_blocklist.txt"
	DefaultBaseURL = "https://raw.githubusercontent.com/v2fly/domain-list-community/master/data"
	DefaultTitle   = "AdGuard Home Blocklist"
)

// Default returns a config with every field set to its default value.
func Default() *Config {
	cfg := &Config{}
	setDefaultValues(cfg)
	return cfg
}

// setDefaultValues 设置配置文件中缺失字段的默认值
func setDefaultValues(cfg *Config) {
	if cfg.Input == "" {
		cfg.Input = DefaultInput
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}

	setFetchDefaults(cfg)
	setRuleDefaults(cfg)

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// setFetchDefaults 设置下载相关的默认值
func setFetchDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 10
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "siteblock/1.0"
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 1
	}
	if cfg.MaxDownloadSize == 0 {
		cfg.MaxDownloadSize = 10 * datasize.MB
	}
}

// setRuleDefaults 设置规则解析与输出相关的默认值
func setRuleDefaults(cfg *Config) {
	if cfg.Dialect == "" {
		cfg.Dialect = DialectPlain
	}
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	// kinds 整段缺省时才填默认值，用户显式配置的集合保持原样
	if len(cfg.Kinds) == 0 {
		cfg.Kinds = map[string]string{
			"domain": ShapeSuffix,
			"full":   ShapeExact,
		}
	}
	if cfg.PlainKind == "" {
		cfg.PlainKind = "domain"
	}
}
