package adblock

import (
	"strings"
	"sync"
)

// SimpleFilter is a map and radix tree engine for generated lists. It
// understands ||domain^ (domain and subdomains), |domain^ and bare domains
// (exact name only).
type SimpleFilter struct {
	exactMatcher  *ExactMatcher
	suffixMatcher *SuffixMatcher
	mu            sync.RWMutex
}

// NewSimpleFilter creates a new SimpleFilter.
func NewSimpleFilter() *SimpleFilter {
	return &SimpleFilter{
		exactMatcher:  NewExactMatcher(),
		suffixMatcher: NewSuffixMatcher(),
	}
}

// CheckHost implements the FilterEngine interface.
func (f *SimpleFilter) CheckHost(domain string) (bool, string) {
	domain = strings.ToLower(strings.TrimSuffix(domain, "."))

	f.mu.RLock()
	defer f.mu.RUnlock()

	// 1. 精确匹配
	if matched, rule := f.exactMatcher.Match(domain); matched {
		return true, rule
	}

	// 2. 后缀匹配 (||example.com^)
	if matched, rule := f.suffixMatcher.Match(domain); matched {
		return true, rule
	}

	return false, ""
}

// LoadRules implements the FilterEngine interface.
// It parses rules and adds them to the appropriate matcher.
func (f *SimpleFilter) LoadRules(rules []string) error {
	exact := NewExactMatcher()
	suffix := NewSuffixMatcher()

	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule == "" || strings.HasPrefix(rule, "!") || strings.HasPrefix(rule, "#") {
			continue // Skip empty lines and comments
		}

		switch {
		case strings.HasPrefix(rule, "||") && strings.HasSuffix(rule, "^"):
			suffix.AddRule(strings.TrimSuffix(strings.TrimPrefix(rule, "||"), "^"), rule)
		case strings.HasPrefix(rule, "|") && strings.HasSuffix(rule, "^"):
			exact.AddRule(strings.TrimSuffix(strings.TrimPrefix(rule, "|"), "^"), rule)
		default:
			// Plain domain (exact match)
			exact.AddRule(rule, rule)
		}
	}

	f.mu.Lock()
	f.exactMatcher = exact
	f.suffixMatcher = suffix
	f.mu.Unlock()
	return nil
}

// Count implements the FilterEngine interface.
func (f *SimpleFilter) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.exactMatcher.Count() + f.suffixMatcher.Count()
}
