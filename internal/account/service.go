// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/gatekeeper/internal/core"
)

// RoleApplier persists a role change and mirrors it to the external
// directory. Implemented by the access service; accepting the interface
// here keeps account free of an import cycle.
type RoleApplier interface {
	Apply(ctx context.Context, acct *Account, role string) error
}

type Service struct {
	repo  Repository
	roles RoleApplier
}

func NewService(repo Repository, roles RoleApplier) *Service {
	return &Service{repo: repo, roles: roles}
}

var usernameSanitizer = regexp.MustCompile(`[^a-z0-9]`)

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*Account, error) {
	username := usernameSanitizer.ReplaceAllString(
		strings.ToLower(req.Username), "")
	if username == "" {
		return nil, fmt.Errorf(
			"register: username has no usable characters: %w",
			core.ErrInvalidInput,
		)
	}

	acct := &Account{
		ID:        uuid.New().String(),
		DiscordID: req.DiscordID,
		Username:  username,
		Role:      RoleUser,
	}

	if err := s.repo.Create(ctx, acct); err != nil {
		return nil, err
	}

	return acct, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByDiscordID(
	ctx context.Context,
	discordID string,
) (*Account, error) {
	return s.repo.GetByDiscordID(ctx, discordID)
}

func (s *Service) List(
	ctx context.Context,
	params ListParams,
) ([]Account, int, error) {
	return s.repo.List(ctx, params)
}

// AssignRole is the operator override for ADMIN/OWNER. Derivation and the
// reconciliation sweep never touch accounts at these roles afterwards.
func (s *Service) AssignRole(
	ctx context.Context,
	id, role string,
) (*Account, error) {
	if role != RoleAdmin && role != RoleOwner {
		return nil, fmt.Errorf(
			"assign role: invalid role %q: %w", role, core.ErrInvalidInput)
	}

	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if acct.IsBanned() {
		return nil, fmt.Errorf(
			"assign role: account is banned: %w", core.ErrConflict)
	}

	if err := s.roles.Apply(ctx, acct, role); err != nil {
		return nil, err
	}

	return acct, nil
}

func (s *Service) LinkHWID(ctx context.Context, id, hwid string) error {
	return s.repo.SetHWID(ctx, id, hwid)
}

// RoleOf feeds the identity middleware.
func (s *Service) RoleOf(ctx context.Context, id string) (string, error) {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return acct.Role, nil
}

// RecordLogin stamps LastLogin. Called by the session front end when an
// account connects.
func (s *Service) RecordLogin(ctx context.Context, id string) (*Account, error) {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	acct.LastLogin = &now
	if err := s.repo.Update(ctx, acct); err != nil {
		return nil, err
	}

	return acct, nil
}
