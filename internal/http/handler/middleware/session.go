package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate -o fake -fake-name TokenValidator . TokenValidator
type TokenValidator interface {
	Validate(token string) (jwt.MapClaims, error)
}

// SessionMiddleware guards mutating endpoints with a bearer session token and
// puts the token's signer address on the request context.
type SessionMiddleware struct {
	logs      *zap.SugaredLogger
	validator TokenValidator
}

func NewSessionMiddleware(logger *zap.SugaredLogger, validator TokenValidator) *SessionMiddleware {
	return &SessionMiddleware{
		logs:      logger,
		validator: validator,
	}
}

func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			m.unauthorized(w, "missing bearer token")
			return
		}

		claims, err := m.validator.Validate(token)
		if err != nil {
			m.logs.Infow("session token rejected", "error", err)
			m.unauthorized(w, "invalid session token")
			return
		}

		actor, ok := claims["sub"].(string)
		if !ok || actor == "" {
			m.unauthorized(w, "invalid session token")
			return
		}

		ctx := context.WithValue(r.Context(), ActorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *SessionMiddleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
