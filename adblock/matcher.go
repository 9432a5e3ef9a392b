package adblock

import (
	"strings"
	"sync"

	radix "github.com/hashicorp/go-immutable-radix"
)

// Matcher 定义规则匹配器接口
type Matcher interface {
	// Match 检查域名是否匹配规则，返回命中的规则原文
	Match(domain string) (bool, string)
	// AddRule 添加一条规则：domain 为规则中的域名部分，rule 为规则原文
	AddRule(domain, rule string)
	// Count 返回规则数量
	Count() int
}

// ExactMatcher 精确匹配器 (|example.com^ 与纯域名列表)
type ExactMatcher struct {
	rules map[string]string // domain -> rule
	mu    sync.RWMutex
}

// NewExactMatcher 创建一个新的精确匹配器
func NewExactMatcher() *ExactMatcher {
	return &ExactMatcher{
		rules: make(map[string]string),
	}
}

// Match 检查域名是否与某条规则完全相同
func (m *ExactMatcher) Match(domain string) (bool, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if rule, ok := m.rules[strings.ToLower(domain)]; ok {
		return true, rule
	}
	return false, ""
}

// AddRule 添加一条精确匹配规则
func (m *ExactMatcher) AddRule(domain, rule string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[strings.ToLower(domain)] = rule
}

// Count 返回规则数量
func (m *ExactMatcher) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rules)
}

// SuffixMatcher 后缀匹配器 (用于 ||example.com^ 类型的规则)
// 使用 Radix Tree 实现：域名按标签颠倒后存储，后缀匹配即前缀查找
type SuffixMatcher struct {
	tree *radix.Tree
	mu   sync.Mutex // 仅用于保护写操作（更新 tree 指针）
}

// NewSuffixMatcher 创建一个新的后缀匹配器
func NewSuffixMatcher() *SuffixMatcher {
	return &SuffixMatcher{
		tree: radix.New(),
	}
}

// reverseLabels 颠倒域名标签并以 "." 结尾
// "sub.example.com" -> "com.example.sub."
// 结尾的点保证只在标签边界上匹配：规则 example.com 不会命中 notexample.com
func reverseLabels(domain string) []byte {
	parts := strings.Split(strings.ToLower(domain), ".")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return []byte(strings.Join(parts, ".") + ".")
}

// Match 检查域名是否匹配后缀规则
// 规则 example.com 命中 example.com 与 sub.example.com
func (m *SuffixMatcher) Match(domain string) (bool, string) {
	m.mu.Lock()
	tree := m.tree
	m.mu.Unlock()

	// LongestPrefix 找到与颠倒后的域名共享最长前缀的 key，即最具体的那条规则
	_, v, found := tree.Root().LongestPrefix(reverseLabels(domain))
	if !found {
		return false, ""
	}
	return true, v.(string)
}

// AddRule 添加一条后缀匹配规则
// domain 是规则的域名部分，例如 "example.com" (来自 ||example.com^)
func (m *SuffixMatcher) AddRule(domain, rule string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Insert 返回一棵新树，旧树对正在进行的查找保持不变
	newTree, _, _ := m.tree.Insert(reverseLabels(domain), rule)
	m.tree = newTree
}

// Count 返回规则数量
func (m *SuffixMatcher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tree.Len()
}
