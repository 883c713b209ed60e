package auth

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	principalIDKey ctxKey = "principal_id"
	authIDKey      ctxKey = "auth_id"
	emailKey       ctxKey = "email"
)

// WithSubject stores the verified token subject (external identity id)
// and email claim. Set by the bearer-token middleware.
func WithSubject(ctx context.Context, authID, email string) context.Context {
	ctx = context.WithValue(ctx, authIDKey, authID)
	ctx = context.WithValue(ctx, emailKey, email)
	return ctx
}

// WithPrincipal stores the resolved local user id. Set once the subject
// has been matched to a stored user record.
func WithPrincipal(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, principalIDKey, userID)
}

func PrincipalID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(principalIDKey).(uuid.UUID)
	return id, ok
}

func SubjectID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(authIDKey).(string)
	return id, ok && id != ""
}

func Email(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}
