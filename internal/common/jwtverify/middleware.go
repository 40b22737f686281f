package jwtverify

import (
	"context"
	"net/http"
	"time"

	commonhttp "github.com/AlibekovAA/chat-accounts/internal/common/http"
	"github.com/AlibekovAA/chat-accounts/internal/common/logger"
)

type Claims struct {
	UserID    string
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

// Verifier checks a bearer token. Errors should be domain errors so the
// client gets a precise status.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

type VerifierFunc func(ctx context.Context, token string) (Claims, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (Claims, error) {
	return f(ctx, token)
}

type contextKey string

const claimsKey contextKey = "jwt_claims"

func Middleware(verifier Verifier, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := commonhttp.BearerToken(r)
			if !ok {
				log.Warnf("jwt auth failed path=%s: missing or invalid authorization header", r.URL.Path)
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization,
					"missing or invalid authorization", nil, commonhttp.TraceIDFromContext(r.Context()))
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				log.Warnf("jwt auth failed path=%s: %v", r.URL.Path, err)
				commonhttp.HandleError(w, r, err, log)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}
