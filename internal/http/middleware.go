package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/fjod/go_pizza/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	UserHeader     = "X-User-Email"
	LanguageHeader = "X-Language"
)

type ctxKey int

const (
	userKey ctxKey = iota
	languageKey
)

// IdentityMiddleware is the demo authentication: the caller names themselves in X-User-Email.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.Header.Get(UserHeader))
		ctx := context.WithValue(r.Context(), userKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LanguageMiddleware resolves the active language from ?lang= or X-Language, defaulting to English.
func LanguageMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("lang")
		if raw == "" {
			raw = r.Header.Get(LanguageHeader)
		}
		ctx := context.WithValue(r.Context(), languageKey, domain.ParseLanguage(strings.ToLower(raw)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger logs one line per request with the trace ids of the request span.
func RequestLogger(l *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			logger.WithContext(r.Context(), l).Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

func getUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(userKey).(string); ok {
		return email
	}
	return ""
}

// cartOwner keys the cart of a caller who has not identified themselves under the anonymous id.
func cartOwner(ctx context.Context) string {
	if email := getUserEmail(ctx); email != "" {
		return email
	}
	return domain.AnonymousUserID
}

func getLanguage(ctx context.Context) domain.Language {
	if lang, ok := ctx.Value(languageKey).(domain.Language); ok {
		return lang
	}
	return domain.LanguageEnglish
}
