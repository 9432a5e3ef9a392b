package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// dottedQuad 匹配形如 1.2.3.4 的 IPv4 字面量（不校验每段取值范围）
var dottedQuad = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// IsDottedQuad 检查是否为点分四段的 IPv4 字面量
func IsDottedQuad(s string) bool {
	return dottedQuad.MatchString(s)
}

// NormalizeDomain 规范化域名：小写并去掉末尾的点
func NormalizeDomain(domain string) string {
	return strings.TrimSuffix(strings.ToLower(domain), ".")
}

// IsASCII reports whether s has no multi-byte runes.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Dedup 去除重复项，保留首次出现的顺序
func Dedup(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
