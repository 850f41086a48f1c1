package i18n

import (
	"context"
	"strings"
)

// Action is the resolver outcome.
type Action int

// A request either already has a locale (HasLocale) or needs one.
const (
	// ActionPassthrough means the path already starts with a supported locale.
	ActionPassthrough Action = iota
	// ActionRedirect means the client must be sent to Target.
	ActionRedirect
)

func (a Action) String() string {
	if a == ActionRedirect {
		return "redirect"
	}
	return "passthrough"
}

// Decision is the result of Resolve.
type Decision struct {
	Action Action
	// Target is set only for ActionRedirect.
	Target string
	// Locale is the locale found in the path (passthrough) or negotiated
	// from Accept-Language (redirect).
	Locale Locale
	// Negotiated is false when a redirect fell back to the default locale.
	Negotiated bool
}

// Resolver guarantees every served page path has a locale segment.
// It is stateless and safe for concurrent use.
type Resolver struct {
	cfg Config
}

// NewResolver returns a resolver over cfg.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Config returns the locale set the resolver was built with.
func (r *Resolver) Config() Config { return r.cfg }

// Resolve never fails: any path and header produce a decision.
func (r *Resolver) Resolve(path, acceptLanguage string) Decision {
	if l, ok := r.cfg.FromPath(path); ok {
		return Decision{Action: ActionPassthrough, Locale: l}
	}

	l, negotiated := r.cfg.negotiate(acceptLanguage)
	return Decision{
		Action:     ActionRedirect,
		Target:     JoinLocale(l, path),
		Locale:     l,
		Negotiated: negotiated,
	}
}

// JoinLocale prefixes path with locale. Runs of slashes in the path are
// collapsed so every segment is separated by exactly one slash; a query
// string is left untouched.
func JoinLocale(l Locale, path string) string {
	rest, query, hasQuery := strings.Cut(strings.TrimLeft(path, "/"), "?")
	for strings.Contains(rest, "//") {
		rest = strings.ReplaceAll(rest, "//", "/")
	}
	if hasQuery {
		rest += "?" + query
	}
	return "/" + string(l) + "/" + rest
}

type contextKey struct{}

// WithLocale stores the active locale on ctx.
func WithLocale(ctx context.Context, l Locale) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the locale stored by WithLocale.
func FromContext(ctx context.Context) (Locale, bool) {
	l, ok := ctx.Value(contextKey{}).(Locale)
	return l, ok && l != ""
}
