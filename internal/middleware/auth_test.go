package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mealmart-be/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

type stubResolver struct {
	userID uuid.UUID
	err    error
}

func (s *stubResolver) ResolvePrincipal(ctx context.Context, authID string) (uuid.UUID, error) {
	return s.userID, s.err
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "auth0|abc",
		"email": "jo@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func TestRequireTokenValid(t *testing.T) {
	mw := NewAuthMiddleware(testJWTSecret, &stubResolver{})

	var gotSub, gotEmail string
	handler := mw.RequireToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub, _ = auth.SubjectID(r.Context())
		gotEmail = auth.Email(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testJWTSecret, validClaims()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "auth0|abc", gotSub)
	assert.Equal(t, "jo@example.com", gotEmail)
}

func TestRequireTokenRejections(t *testing.T) {
	mw := NewAuthMiddleware(testJWTSecret, &stubResolver{})
	handler := mw.RequireToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	noSub := validClaims()
	delete(noSub, "sub")

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", validClaims())},
		{"expired", "Bearer " + signToken(t, testJWTSecret, expired)},
		{"missing sub", "Bearer " + signToken(t, testJWTSecret, noSub)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireTokenRejectsUnsignedAlg(t *testing.T) {
	mw := NewAuthMiddleware(testJWTSecret, &stubResolver{})
	handler := mw.RequireToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePrincipalResolves(t *testing.T) {
	userID := uuid.New()
	mw := NewAuthMiddleware(testJWTSecret, &stubResolver{userID: userID})

	var gotID uuid.UUID
	handler := mw.RequirePrincipal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = auth.PrincipalID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testJWTSecret, validClaims()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotID)
}

func TestRequirePrincipalUnknownSubject(t *testing.T) {
	mw := NewAuthMiddleware(testJWTSecret, &stubResolver{err: errors.New("user not found")})
	handler := mw.RequirePrincipal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testJWTSecret, validClaims()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
