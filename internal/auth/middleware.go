package auth

import (
	"net/http"
	"strings"

	"github.com/calyxhealth/hospital-records/internal/httputil"
)

// RequireAuth returns middleware that extracts a bearer token from the
// Authorization header, verifies it and attaches the claims to the request
// context. A missing token fails with 403, a present-but-invalid one with
// 401; no request continues without verified claims.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				httputil.RespondError(w, http.StatusForbidden, "No token provided")
				return
			}
			claims, err := tokens.Verify(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRoles returns middleware that gates a route to the given roles. It
// expects RequireAuth to have run first; absent claims fail with 401.
func RequireRoles(allowed ...Role) func(http.Handler) http.Handler {
	set := map[Role]struct{}{}
	for _, a := range allowed {
		set[a] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if _, ok := set[claims.Role]; !ok {
				httputil.RespondError(w, http.StatusForbidden, "Access denied. Insufficient permissions.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
