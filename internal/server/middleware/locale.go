package middleware

import (
	"net/http"

	"github.com/jonathan/corpsite/internal/i18n"
)

// PathnameHeader carries the request path past the locale middleware so a
// not-found page can recover the active locale.
const PathnameHeader = "X-Pathname"

// RedirectRecorder counts locale redirects.
type RedirectRecorder interface {
	RecordRedirect(locale string)
}

// LocaleOptions configures Locale.
type LocaleOptions struct {
	Resolver *i18n.Resolver
	// Reserved reports paths that bypass locale resolution entirely.
	Reserved func(path string) bool
	Metrics  RedirectRecorder
}

// Locale sends unprefixed page paths to their locale-prefixed equivalent
// with a 307, keeping the query string. Prefixed paths pass through with
// the security headers, the pathname header and the locale on the context.
func Locale(opts LocaleOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if opts.Reserved != nil && opts.Reserved(path) {
				next.ServeHTTP(w, r)
				return
			}

			decision := opts.Resolver.Resolve(path, r.Header.Get("Accept-Language"))
			if decision.Action == i18n.ActionRedirect {
				target := decision.Target
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				if opts.Metrics != nil {
					opts.Metrics.RecordRedirect(decision.Locale.String())
				}
				w.Header().Set("Vary", "Accept-Language")
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
				return
			}

			SetSecurityHeaders(w.Header())
			w.Header().Set(PathnameHeader, path)
			r.Header.Set(PathnameHeader, path)
			ctx := i18n.WithLocale(r.Context(), decision.Locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
