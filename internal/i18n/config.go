// Package i18n decides which supported locale a request is served in.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported URL prefix and dictionary key, e.g. "ko".
type Locale string

// Built-in locales
const (
	Korean  Locale = "ko"
	English Locale = "en"
)

func (l Locale) String() string { return string(l) }

// Config is the immutable set of supported locales. It is built once at
// startup and passed by value; there is no package-level locale state.
type Config struct {
	def     Locale
	locales []Locale
	matcher language.Matcher
}

// DefaultConfig returns ko (default) and en.
func DefaultConfig() Config {
	cfg, err := NewConfig(Korean, Korean, English)
	if err != nil {
		panic(err) // static input
	}
	return cfg
}

// NewConfig builds a locale set. def must be one of locales.
// The default locale is always placed first so that it is the matcher's
// fallback when no preference matches.
func NewConfig(def Locale, locales ...Locale) (Config, error) {
	if len(locales) == 0 {
		return Config{}, fmt.Errorf("at least one locale is required")
	}

	ordered := make([]Locale, 0, len(locales))
	seen := make(map[Locale]bool, len(locales))
	ordered = append(ordered, def)
	seen[def] = true
	found := false
	for _, l := range locales {
		if l == def {
			found = true
		}
		if l == "" || strings.Contains(string(l), "/") {
			return Config{}, fmt.Errorf("invalid locale %q", l)
		}
		if seen[l] {
			continue
		}
		seen[l] = true
		ordered = append(ordered, l)
	}
	if !found {
		return Config{}, fmt.Errorf("default locale %q is not in the supported set %v", def, locales)
	}

	tags := make([]language.Tag, 0, len(ordered))
	for _, l := range ordered {
		tag, err := language.Parse(string(l))
		if err != nil {
			return Config{}, fmt.Errorf("locale %q is not a BCP-47 tag: %w", l, err)
		}
		tags = append(tags, tag)
	}

	return Config{
		def:     def,
		locales: ordered,
		matcher: language.NewMatcher(tags),
	}, nil
}

// Default returns the fallback locale.
func (c Config) Default() Locale { return c.def }

// Locales returns the supported locales, default first.
func (c Config) Locales() []Locale {
	out := make([]Locale, len(c.locales))
	copy(out, c.locales)
	return out
}

// Parse returns the supported locale named by s.
func (c Config) Parse(s string) (Locale, bool) {
	for _, l := range c.locales {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// FromPath returns the locale carried by the first path segment, if any.
// Both "/ko" and "/ko/..." carry "ko"; "/kor" does not.
func (c Config) FromPath(path string) (Locale, bool) {
	for _, l := range c.locales {
		prefix := "/" + string(l)
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return l, true
		}
	}
	return "", false
}

// Negotiate picks the best supported locale for an Accept-Language header.
// Empty or malformed headers, and headers with no usable match, yield the
// default locale.
func (c Config) Negotiate(acceptLanguage string) Locale {
	l, _ := c.negotiate(acceptLanguage)
	return l
}

func (c Config) negotiate(acceptLanguage string) (Locale, bool) {
	if strings.TrimSpace(acceptLanguage) == "" || c.matcher == nil {
		return c.def, false
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.def, false
	}

	_, index, confidence := c.matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(c.locales) {
		return c.def, false
	}
	return c.locales[index], true
}
