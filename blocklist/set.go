// Package blocklist aggregates tokens and writes the final list file.
package blocklist

import (
	"sort"
	"sync"
)

// Set is a deduplicated token set, safe for concurrent Add.
type Set struct {
	mu     sync.Mutex
	tokens map[string]struct{}
}

func NewSet() *Set {
	return &Set{tokens: make(map[string]struct{})}
}

// Add inserts a token and reports whether it was new.
func (s *Set) Add(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token]; ok {
		return false
	}
	s.tokens[token] = struct{}{}
	return true
}

// AddAll inserts tokens and returns how many were new.
func (s *Set) AddAll(tokens []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, t := range tokens {
		if _, ok := s.tokens[t]; !ok {
			s.tokens[t] = struct{}{}
			added++
		}
	}
	return added
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// Sorted returns the tokens in ascending byte order.
func (s *Set) Sorted() []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.tokens))
	for t := range s.tokens {
		out = append(out, t)
	}
	s.mu.Unlock()

	sort.Strings(out)
	return out
}
