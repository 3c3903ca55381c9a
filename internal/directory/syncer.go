// AngelaMos | 2026
// syncer.go

package directory

import (
	"context"
)

// Syncer mirrors an account's role to the external directory. Sync is
// one-way and idempotent: implementations remove every managed role label
// the member currently holds, then assign exactly the label for role.
//
// Callers treat Sync as best-effort. A failure is logged and counted but
// never rolls back the local role change that triggered it.
type Syncer interface {
	Sync(ctx context.Context, discordID, role string) error
}

// Nop is used when directory sync is disabled and in tests.
type Nop struct{}

func (Nop) Sync(ctx context.Context, discordID, role string) error {
	return nil
}
