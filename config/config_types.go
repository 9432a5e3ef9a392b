package config

import (
	"time"

	"github.com/c2h5oh/datasize"
)

// 输出格式
const (
	DialectPlain = "plain" // 纯域名列表，# 注释头
	DialectRules = "rules" // AdBlock 网络规则列表，! 注释头
)

// 规则形态：决定某类上游行在 rules 格式下如何输出
const (
	ShapeSuffix = "suffix" // ||domain^  匹配域名及其子域名
	ShapeExact  = "exact"  // |domain^   仅匹配域名本身
)

// Config 主配置结构
type Config struct {
	// 关键词列表文件，每行一个 v2fly 数据文件名
	Input string `yaml:"input,omitempty" json:"input"`
	// 生成的黑名单文件
	Output string `yaml:"output,omitempty" json:"output"`

	BaseURL         string            `yaml:"base_url,omitempty" json:"base_url"`
	TimeoutSeconds  int               `yaml:"timeout_seconds,omitempty" json:"timeout_seconds"`
	UserAgent       string            `yaml:"user_agent,omitempty" json:"user_agent"`
	Concurrency     int               `yaml:"concurrency,omitempty" json:"concurrency"`
	CacheDir        string            `yaml:"cache_dir,omitempty" json:"cache_dir"`
	MaxDownloadSize datasize.ByteSize `yaml:"max_download_size,omitempty" json:"max_download_size"`

	Dialect string `yaml:"dialect,omitempty" json:"dialect"`
	Title   string `yaml:"title,omitempty" json:"title"`

	// 支持的行类型 -> 规则形态，例如 domain: suffix, full: exact
	Kinds map[string]string `yaml:"kinds,omitempty" json:"kinds"`
	// 无前缀行按哪种类型处理（v2fly 语义下等同于 domain）
	PlainKind       string `yaml:"plain_kind,omitempty" json:"plain_kind"`
	ValidateDomains bool   `yaml:"validate_domains" json:"validate_domains"`

	MetricsFile string `yaml:"metrics_file,omitempty" json:"metrics_file"`
	LogLevel    string `yaml:"log_level,omitempty" json:"log_level"`
}

// Timeout returns the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
