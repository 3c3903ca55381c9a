// AngelaMos | 2026
// merge_test.go

package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/gatekeeper/internal/core"
)

func TestMergeCreation(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		tier string
		want time.Time
	}{
		{TierDaily, now.AddDate(0, 0, 1)},
		{TierMonthly, time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)},
		{TierYearly, time.Date(2027, 3, 15, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			result, err := Merge(nil, tt.tier, now)
			require.NoError(t, err)

			assert.False(t, result.Extends)
			assert.Equal(t, now, result.StartsAt)
			assert.Equal(t, tt.want, result.EndsAt)
		})
	}
}

func TestMergeCreationRejectsWeekly(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	_, err := Merge(nil, TierWeekly, now)
	require.ErrorIs(t, err, ErrTierUnavailable)
}

func TestMergeExtensionChainsFromCurrentEnd(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	current := &Entitlement{
		ID:       "ent-1",
		StartsAt: now.AddDate(0, -1, 0),
		EndsAt:   time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC),
		Active:   true,
	}

	result, err := Merge(current, TierMonthly, now)
	require.NoError(t, err)

	assert.True(t, result.Extends)
	assert.Equal(t, current.StartsAt, result.StartsAt)
	// One calendar month past the current end, regardless of now.
	assert.Equal(t, time.Date(2026, 4, 20, 12, 0, 0, 0, time.UTC), result.EndsAt)
}

func TestMergeExtensionAcceptsWeekly(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	current := &Entitlement{
		ID:       "ent-1",
		StartsAt: now.AddDate(0, 0, -3),
		EndsAt:   now.AddDate(0, 0, 4),
		Active:   true,
	}

	result, err := Merge(current, TierWeekly, now)
	require.NoError(t, err)

	assert.True(t, result.Extends)
	assert.Equal(t, current.EndsAt.AddDate(0, 0, 7), result.EndsAt)
}

func TestMergeMonthEndNormalization(t *testing.T) {
	// Jan 31 + 1 calendar month lands on the normalized date, not a fixed
	// hour count.
	now := time.Date(2026, 1, 31, 9, 30, 0, 0, time.UTC)

	result, err := Merge(nil, TierMonthly, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC), result.EndsAt)
}

func TestMergeUnknownTier(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	_, err := Merge(nil, "lifetime", now)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	current := &Entitlement{EndsAt: now.AddDate(0, 0, 2), Active: true}
	_, err = Merge(current, "lifetime", now)
	require.ErrorIs(t, err, core.ErrInvalidInput)
}
