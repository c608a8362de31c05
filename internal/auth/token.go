package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// verification failure kinds
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
)

type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// TokenConfigFromEnv reads the signing secret and token lifetime. JWT_SECRET
// is mandatory; rotating it invalidates every outstanding token.
func TokenConfigFromEnv() (TokenConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return TokenConfig{}, errors.New("JWT_SECRET is required")
	}
	ttl := 7 * 24 * time.Hour
	if v := os.Getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return TokenConfig{}, errors.New("bad JWT_TTL: " + err.Error())
		}
		ttl = d
	}
	return TokenConfig{Secret: []byte(secret), TTL: ttl}, nil
}

// TokenService issues and verifies HS256 bearer tokens carrying identity
// claims. The secret is process-wide and read-only after startup.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{secret: cfg.Secret, ttl: cfg.TTL}
}

// Issue signs id/email/role plus issuance and expiry timestamps.
func (s *TokenService) Issue(userID, email string, role Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify parses and validates a token string, returning its claims or one of
// ErrTokenMalformed, ErrTokenSignature, ErrTokenExpired.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
