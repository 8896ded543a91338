package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

var localeKey = localeContextKey{}

// DefaultLocale is the product default; the UI is Azerbaijani-first.
const DefaultLocale = "az"

var supported = []language.Tag{
	language.MustParse("az"),
	language.English,
}

var matcher = language.NewMatcher(supported)

// Locale negotiates the request locale from X-Locale or Accept-Language and
// stores the normalized tag ("az" or "en") on the context.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := detectLocale(r)
		ctx := context.WithValue(r.Context(), localeKey, locale)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func detectLocale(r *http.Request) string {
	header := r.Header.Get("X-Locale")
	if header == "" {
		header = r.Header.Get("Accept-Language")
	}
	if header == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLocale
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// LocaleFromContext returns the negotiated locale, falling back to the default.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(localeKey).(string); ok && v != "" {
		return v
	}
	return DefaultLocale
}
