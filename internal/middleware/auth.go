package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"mealmart-be/internal/auth"
	"mealmart-be/internal/httpx"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PrincipalResolver matches a verified token subject to a stored user id.
// Implemented by the user service; identity issuance itself is external.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, authID string) (uuid.UUID, error)
}

type AuthMiddleware struct {
	secret   []byte
	resolver PrincipalResolver
}

func NewAuthMiddleware(secret string, resolver PrincipalResolver) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), resolver: resolver}
}

// RequireToken verifies the bearer token and stores its subject and email
// claims in the request context. 401 on anything malformed; no detail leaks.
func (m *AuthMiddleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		email, _ := claims["email"].(string)

		ctx := auth.WithSubject(r.Context(), sub, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePrincipal additionally resolves the subject to a local user record
// and stores the user id. Requests from subjects with no stored profile get 401.
func (m *AuthMiddleware) RequirePrincipal(next http.Handler) http.Handler {
	return m.RequireToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, ok := auth.SubjectID(r.Context())
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		userID, err := m.resolver.ResolvePrincipal(r.Context(), sub)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := auth.WithPrincipal(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}))
}
