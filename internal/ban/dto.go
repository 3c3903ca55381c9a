// AngelaMos | 2026
// dto.go

package ban

// Selector kinds. hardwareId fans out to every account sharing the
// fingerprint; the other two resolve exactly one account.
const (
	SelectorPrimaryID   = "primaryId"
	SelectorDirectoryID = "directoryId"
	SelectorHardwareID  = "hardwareId"
)

// Per-account outcome statuses.
const (
	OutcomeApplied           = "applied"
	OutcomeRejectedProtected = "rejected_protected"
	OutcomeNotFound          = "not_found"
	OutcomeNotBanned         = "not_banned"
)

type Selector struct {
	Kind  string `json:"kind" validate:"required,oneof=primaryId directoryId hardwareId"`
	Value string `json:"value" validate:"required"`
}

type BanRequest struct {
	Selector Selector `json:"selector" validate:"required"`
	Reason   string   `json:"reason" validate:"required,min=3,max=512"`
}

type UnbanRequest struct {
	Selector Selector `json:"selector" validate:"required"`
}

// Outcome reports what happened to one resolved account. A batch carries
// one entry per account; a rejection never aborts the rest.
type Outcome struct {
	AccountID string `json:"account_id,omitempty"`
	DiscordID string `json:"discord_id,omitempty"`
	Status    string `json:"status"`
	Role      string `json:"role,omitempty"`
}
