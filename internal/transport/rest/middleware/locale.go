package middleware

import (
	"context"
	"net/http"

	"formassist/internal/form"
	"formassist/internal/model"
)

// Locale negotiates the display locale from the lang query parameter, falling
// back to Accept-Language
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := r.URL.Query().Get("lang")
		if lang == "" {
			lang = r.Header.Get("Accept-Language")
		}
		ctx := context.WithValue(r.Context(), LocaleKey, form.MatchLocale(lang))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetLocale returns the negotiated locale, or the default outside the middleware
func GetLocale(ctx context.Context) model.Locale {
	if v, ok := ctx.Value(LocaleKey).(model.Locale); ok {
		return v
	}
	return model.DefaultLocale
}
