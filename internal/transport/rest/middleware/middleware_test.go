package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"formassist/internal/model"
	"formassist/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireSession(t *testing.T) {
	auth := service.NewAuthService("secret")
	token, err := auth.GenerateSessionToken("session-1")
	require.NoError(t, err)

	var got string
	h := NewSessionMiddleware(auth).RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetSessionID(r.Context())
	}))

	tests := []struct {
		name    string
		header  string
		query   string
		status  int
		message string
	}{
		{name: "bearer", header: "Bearer " + token, status: http.StatusOK},
		{name: "query", query: "?token=" + token, status: http.StatusOK},
		{name: "missing", status: http.StatusUnauthorized, message: "missing authorization"},
		{name: "wrong scheme", header: "Basic " + token, status: http.StatusUnauthorized, message: "missing authorization"},
		{name: "invalid", header: "Bearer nope", status: http.StatusUnauthorized, message: "invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = ""
			req := httptest.NewRequest(http.MethodGet, "/v1/session"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "session-1", got)
			} else {
				assert.Empty(t, got)
				assert.JSONEq(t, `{"error":"`+tt.message+`"}`, rec.Body.String())
			}
		})
	}
}

func TestLocale(t *testing.T) {
	var got model.Locale
	h := Locale(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetLocale(r.Context())
	}))

	tests := []struct {
		target string
		header string
		want   model.Locale
	}{
		{target: "/v1/modules", want: model.LocaleEnglish},
		{target: "/v1/modules?lang=pl", header: "cy", want: model.LocalePolish},
		{target: "/v1/modules", header: "cy-GB,cy;q=0.9,en;q=0.5", want: model.LocaleWelsh},
		{target: "/v1/modules", header: "fr-FR", want: model.LocaleEnglish},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.target, nil)
		if tt.header != "" {
			req.Header.Set("Accept-Language", tt.header)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, tt.want, got, "%s %s", tt.target, tt.header)
	}
	assert.Equal(t, model.DefaultLocale, GetLocale(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
