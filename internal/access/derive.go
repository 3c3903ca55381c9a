// AngelaMos | 2026
// derive.go

package access

import (
	"github.com/angelamos/gatekeeper/internal/account"
)

// DeriveRole maps entitlement state onto the USER/VIP pair. BANNED always
// wins, and operator-assigned roles are never auto-changed; in both cases
// the current role is returned unchanged. The result is therefore always
// one of {current, USER, VIP}.
func DeriveRole(current string, hasActive bool) string {
	switch current {
	case account.RoleBanned, account.RoleAdmin, account.RoleOwner:
		return current
	}

	if hasActive {
		return account.RoleVIP
	}
	return account.RoleUser
}
