package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"geo-quiz-service/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type ctxKey int

const ctxKeyClaims ctxKey = iota

func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Int64("duration_ms", time.Since(start).Milliseconds()),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// sessionAuth accepts a token from the Authorization header or, for browsers opening a
// WebSocket, the token query parameter. The token subject must be the session in the path.
func sessionAuth(tokens *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || raw == "" {
				raw = r.URL.Query().Get("token")
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				msg := auth.ErrInvalidToken.Error()
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = auth.ErrExpiredToken.Error()
				}
				writeError(w, http.StatusUnauthorized, msg)
				return
			}
			if claims.SessionID() != chi.URLParam(r, "sessionID") {
				writeError(w, http.StatusForbidden, "token does not grant access to this session")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(ctxKeyClaims).(*auth.Claims)
	return claims
}
