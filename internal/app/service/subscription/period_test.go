package subscription

import (
	"testing"
	"time"

	"github.com/Youngger9765/duotopia-sub006/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateFirstSubscription(t *testing.T) {
	plan := &types.Plan{Name: "standard", MonthlyPrice: 1000, QuotaSeconds: 1000}

	tests := []struct {
		name       string
		start      time.Time
		wantEnd    time.Time
		wantAmount int64
		wantMethod types.PricingMethod
		wantBonus  int
	}{
		{
			name:       "month end rolls through next month",
			start:      day(2025, time.January, 31),
			wantEnd:    day(2025, time.February, 28),
			wantAmount: 1000,
			wantMethod: types.PricingMethodGracePeriod,
			wantBonus:  1,
		},
		{
			name:       "leap year february",
			start:      day(2024, time.January, 31),
			wantEnd:    day(2024, time.February, 29),
			wantAmount: 1000,
			wantMethod: types.PricingMethodGracePeriod,
			wantBonus:  1,
		},
		{
			name:       "three days remaining grants grace period",
			start:      day(2025, time.March, 29),
			wantEnd:    day(2025, time.April, 30),
			wantAmount: 1000,
			wantMethod: types.PricingMethodGracePeriod,
			wantBonus:  3,
		},
		{
			name:       "six days remaining still grace",
			start:      day(2025, time.May, 26),
			wantEnd:    day(2025, time.June, 30),
			wantAmount: 1000,
			wantMethod: types.PricingMethodGracePeriod,
			wantBonus:  6,
		},
		{
			name:       "seven days remaining is prorated",
			start:      day(2025, time.May, 25),
			wantEnd:    day(2025, time.May, 31),
			wantAmount: 226, // 1000 * 7/31
			wantMethod: types.PricingMethodProrated,
		},
		{
			name:       "mid month prorated",
			start:      day(2025, time.March, 10),
			wantEnd:    day(2025, time.March, 31),
			wantAmount: 710, // 1000 * 22/31
			wantMethod: types.PricingMethodProrated,
		},
		{
			name:       "first of month pays full month",
			start:      day(2025, time.April, 1),
			wantEnd:    day(2025, time.April, 30),
			wantAmount: 1000,
			wantMethod: types.PricingMethodProrated,
		},
		{
			name:       "december rolls into next year",
			start:      day(2025, time.December, 29),
			wantEnd:    day(2026, time.January, 31),
			wantAmount: 1000,
			wantMethod: types.PricingMethodGracePeriod,
			wantBonus:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateFirstSubscription(tt.start, plan)
			assert.Equal(t, tt.wantEnd, got.EndDate)
			assert.Equal(t, tt.wantAmount, got.AmountDue)
			assert.Equal(t, tt.wantMethod, got.PricingMethod)
			assert.Equal(t, tt.wantBonus, got.BonusDays)
			if tt.wantMethod == types.PricingMethodGracePeriod {
				assert.Greater(t, got.BonusDays, 0)
			}
		})
	}
}

func TestCalculateRenewal(t *testing.T) {
	plan := &types.Plan{Name: "standard", MonthlyPrice: 1500, QuotaSeconds: 1000}

	tests := []struct {
		name    string
		current time.Time
		wantEnd time.Time
	}{
		{name: "plain month advance", current: day(2026, time.April, 5), wantEnd: day(2026, time.May, 5)},
		{name: "clamped to february", current: day(2025, time.January, 31), wantEnd: day(2025, time.February, 28)},
		{name: "clamped to leap february", current: day(2024, time.January, 31), wantEnd: day(2024, time.February, 29)},
		{name: "march 31 clamps to april 30", current: day(2025, time.March, 31), wantEnd: day(2025, time.April, 30)},
		{name: "year rollover", current: day(2025, time.December, 15), wantEnd: day(2026, time.January, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end, amount := CalculateRenewal(tt.current, plan)
			assert.Equal(t, tt.wantEnd, end)
			assert.Equal(t, int64(1500), amount)
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	require.Equal(t, 31, daysInMonth(2025, time.January))
	require.Equal(t, 28, daysInMonth(2025, time.February))
	require.Equal(t, 29, daysInMonth(2024, time.February))
	require.Equal(t, 30, daysInMonth(2025, time.April))
	require.Equal(t, 31, daysInMonth(2025, time.December))
}
