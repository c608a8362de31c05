package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the coarse permission category stored on a user row and carried in
// token claims.
type Role string

const (
	RolePatient  Role = "PATIENT"
	RoleProvider Role = "PROVIDER"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleProvider
}

// RoleFromCode maps the numeric role accepted by the registration payload to
// the stored enum: 0 is PATIENT, 1 is PROVIDER. Any other code is rejected.
func RoleFromCode(code int) (Role, error) {
	switch code {
	case 0:
		return RolePatient, nil
	case 1:
		return RoleProvider, nil
	default:
		return "", fmt.Errorf("unknown role code %d", code)
	}
}

// Claims are the identity attributes embedded in a signed bearer token.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

type contextKey int

const claimsContextKey contextKey = iota

// WithClaims attaches verified claims to a request context.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, c)
}

// ClaimsFrom returns the claims attached by the auth guard, if any.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsContextKey).(*Claims)
	return c, ok
}
