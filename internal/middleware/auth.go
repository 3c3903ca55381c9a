// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/angelamos/gatekeeper/internal/core"
)

const (
	AccountIDKey   contextKey = "account_id"
	AccountRoleKey contextKey = "account_role"
)

// ServiceToken authenticates operator and service callers against the
// shared admin token. Comparison is constant time.
func ServiceToken(token string) func(http.Handler) http.Handler {
	expected := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := ExtractToken(r)
			if presented == "" {
				core.Unauthorized(w, "missing authorization token")
				return
			}

			if subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
				core.Unauthorized(w, "invalid service token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RoleLookup resolves an account id to its role. Satisfied by the account
// service.
type RoleLookup func(ctx context.Context, accountID string) (string, error)

// Identity optionally attaches the calling account's id and role from the
// X-Account-ID header. Unknown ids pass through anonymous; tiered rate
// limiting then falls back to the default tier.
func Identity(lookup RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID := r.Header.Get("X-Account-ID")
			if accountID == "" {
				next.ServeHTTP(w, r)
				return
			}

			role, err := lookup(r.Context(), accountID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, AccountIDKey, accountID)
			ctx = context.WithValue(ctx, AccountRoleKey, role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func GetAccountID(ctx context.Context) string {
	if id, ok := ctx.Value(AccountIDKey).(string); ok {
		return id
	}
	return ""
}

func GetAccountRole(ctx context.Context) string {
	if role, ok := ctx.Value(AccountRoleKey).(string); ok {
		return role
	}
	return ""
}
