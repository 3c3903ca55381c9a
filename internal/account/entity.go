// AngelaMos | 2026
// entity.go

package account

import (
	"time"
)

// Account is a registered member of the service. Role is either derived
// from entitlement state (USER/VIP), assigned by an operator (ADMIN/OWNER),
// or forced by the ban ledger (BANNED).
type Account struct {
	ID           string     `db:"id"`
	DiscordID    string     `db:"discord_id"`
	Username     string     `db:"username"`
	HWID         *string    `db:"hwid"`
	Role         string     `db:"role"`
	BanReason    *string    `db:"ban_reason"`
	BanSource    *string    `db:"ban_source"`
	PreviousRole *string    `db:"previous_role"`
	LastLogin    *time.Time `db:"last_login"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

const (
	RoleUser   = "USER"
	RoleVIP    = "VIP"
	RoleAdmin  = "ADMIN"
	RoleOwner  = "OWNER"
	RoleBanned = "BANNED"
)

// Ban sources, derived from the selector that located the account.
const (
	BanSourceDirectory = "DIRECTORY"
	BanSourceHWID      = "HWID"
	BanSourceID        = "ID"
)

func (a *Account) IsBanned() bool {
	return a.Role == RoleBanned
}

// IsProtected reports whether the account holds an operator-assigned role
// that the ban ledger and role derivation must never touch.
func (a *Account) IsProtected() bool {
	return a.Role == RoleAdmin || a.Role == RoleOwner
}

func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleVIP, RoleAdmin, RoleOwner, RoleBanned:
		return true
	}
	return false
}
