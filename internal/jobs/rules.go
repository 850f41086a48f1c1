// Package jobs fetches the external job board and maps each posting onto
// the site's fixed vocabulary.
package jobs

import "strings"

// MatchVia records which rule produced a normalized value.
type MatchVia string

// Match outcomes
const (
	ViaExact   MatchVia = "exact"
	ViaKeyword MatchVia = "keyword"
	ViaDefault MatchVia = "default"
)

// Match is a normalized value plus how it was reached. Public results only
// carry Value; Via lets callers and tests tell a confident match from a
// fallback.
type Match[T any] struct {
	Value T
	Via   MatchVia
}

// exactRule maps one lowercased input to a value.
type exactRule[T any] struct {
	input string
	value T
}

// keywordRule maps any input containing one of keywords to a value.
type keywordRule[T any] struct {
	keywords []string
	value    T
}

// ruleSet is evaluated in order: exact rules, then keyword rules, then the
// fallback. The first hit wins.
type ruleSet[T any] struct {
	exact    []exactRule[T]
	keywords []keywordRule[T]
	fallback T
	// foldCase lowercases the input before exact comparison.
	foldCase bool
}

func (r ruleSet[T]) match(input string) Match[T] {
	key := strings.TrimSpace(input)
	if r.foldCase {
		key = strings.ToLower(key)
	}
	for _, rule := range r.exact {
		if key == rule.input {
			return Match[T]{Value: rule.value, Via: ViaExact}
		}
	}

	haystack := strings.ToLower(key)
	for _, rule := range r.keywords {
		if containsAny(haystack, rule.keywords) {
			return Match[T]{Value: rule.value, Via: ViaKeyword}
		}
	}
	return Match[T]{Value: r.fallback, Via: ViaDefault}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
