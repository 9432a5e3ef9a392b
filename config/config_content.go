package config

// DefaultConfigContent 默认配置文件内容，包含详细说明
const DefaultConfigContent = `# siteblock 配置文件

# 关键词列表文件：每行一个 v2fly/domain-list-community 的数据文件名
# 以 # 开头的行和空行会被忽略
input: target_sites.txt

# 生成的 AdGuard Home 黑名单文件
output: adguardhome_blocklist.txt

# 上游数据地址，最终请求 <base_url>/<关键词>
# 也支持 file:// 本地目录（离线调试用）
base_url: https://raw.githubusercontent.com/v2fly/domain-list-community/master/data

# 单次请求超时（秒），默认 10
timeout_seconds: 10
user_agent: siteblock/1.0

# 并发下载数，默认 1（逐个关键词顺序下载）
concurrency: 1

# 条件请求缓存目录（ETag / Last-Modified），留空表示不缓存
cache_dir: ""

# 单个数据文件的最大下载大小
max_download_size: 10MB

# 输出格式：plain（纯域名，一行一个）或 rules（|domain^ / ||domain^ 规则）
dialect: plain
title: AdGuard Home Blocklist

# 支持的上游行类型及其在 rules 格式下的形态
#   suffix -> ||domain^  （域名及子域名）
#   exact  -> |domain^   （仅域名本身）
# include: 与 regexp: 永远不支持；keyword: 默认不启用
kinds:
  domain: suffix
  full: exact

# 无前缀的行按哪种类型处理
plain_kind: domain

# 是否严格校验域名格式（不合法的域名会被丢弃），默认 false
validate_domains: false

# Prometheus textfile 指标输出路径，留空表示不输出
metrics_file: ""

# 日志级别: debug, info, warn, error. 默认 info
log_level: "info"
`
