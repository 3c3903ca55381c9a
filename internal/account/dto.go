// AngelaMos | 2026
// dto.go

package account

import (
	"time"
)

type RegisterRequest struct {
	DiscordID string `json:"discord_id" validate:"required,max=32"`
	Username  string `json:"username"   validate:"required,min=1,max=64"`
}

type SetHWIDRequest struct {
	HWID string `json:"hwid" validate:"required,min=8,max=128"`
}

type AssignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=ADMIN OWNER"`
}

type AccountResponse struct {
	ID           string     `json:"id"`
	DiscordID    string     `json:"discord_id"`
	Username     string     `json:"username"`
	Role         string     `json:"role"`
	BanReason    *string    `json:"ban_reason,omitempty"`
	BanSource    *string    `json:"ban_source,omitempty"`
	PreviousRole *string    `json:"previous_role,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type ListParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToAccountResponse(a *Account) AccountResponse {
	return AccountResponse{
		ID:           a.ID,
		DiscordID:    a.DiscordID,
		Username:     a.Username,
		Role:         a.Role,
		BanReason:    a.BanReason,
		BanSource:    a.BanSource,
		PreviousRole: a.PreviousRole,
		LastLogin:    a.LastLogin,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func ToAccountResponseList(accts []Account) []AccountResponse {
	responses := make([]AccountResponse, 0, len(accts))
	for _, a := range accts {
		responses = append(responses, ToAccountResponse(&a))
	}
	return responses
}
