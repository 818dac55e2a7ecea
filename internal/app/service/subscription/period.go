package subscription

import (
	"math"
	"time"

	"github.com/Youngger9765/duotopia-sub006/pkg/types"
)

// GracePeriodDays is the threshold below which a first subscription rolls
// through the end of the next month at the flat price instead of being
// prorated.
const GracePeriodDays = 7

// FirstSubscriptionResult carries the computed billing window and price for
// a teacher's first subscription in a month.
type FirstSubscriptionResult struct {
	EndDate       time.Time           `json:"end_date"`
	AmountDue     int64               `json:"amount_due"`
	PricingMethod types.PricingMethod `json:"pricing_method"`
	// BonusDays 宽限期赠送的天数
	BonusDays   int `json:"bonus_days"`
	ActualDays  int `json:"actual_days"`
	DaysInMonth int `json:"days_in_month"`
}

// CalculateFirstSubscription computes the first billing window for a plan.
// Periods anchor to the 1st of the month. Signing up with fewer than
// GracePeriodDays left before the next month starts extends the period
// through the end of that next month at the flat monthly price, counting the
// leftover days as bonus days; otherwise the period runs to the end of the
// current month, prorated by remaining days over days in the month and
// rounded to the nearest currency unit.
func CalculateFirstSubscription(startDate time.Time, plan *types.Plan) *FirstSubscriptionResult {
	start := dateOnly(startDate)
	nextMonthStart := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location()).AddDate(0, 1, 0)
	daysRemaining := daysBetween(start, nextMonthStart)
	dim := daysInMonth(start.Year(), start.Month())

	if daysRemaining < GracePeriodDays {
		end := lastDayOfMonth(nextMonthStart)
		return &FirstSubscriptionResult{
			EndDate:       end,
			AmountDue:     plan.MonthlyPrice,
			PricingMethod: types.PricingMethodGracePeriod,
			BonusDays:     daysRemaining,
			ActualDays:    daysBetween(start, end) + 1,
			DaysInMonth:   dim,
		}
	}

	end := nextMonthStart.AddDate(0, 0, -1)
	amount := int64(math.Round(float64(plan.MonthlyPrice) * float64(daysRemaining) / float64(dim)))
	return &FirstSubscriptionResult{
		EndDate:       end,
		AmountDue:     amount,
		PricingMethod: types.PricingMethodProrated,
		ActualDays:    daysRemaining,
		DaysInMonth:   dim,
	}
}

// CalculateRenewal advances exactly one calendar month from the current end
// date, clamping the day-of-month to the target month's last valid day
// (Jan 31 renews to Feb 28/29). The amount is always the flat monthly price.
func CalculateRenewal(currentEndDate time.Time, plan *types.Plan) (time.Time, int64) {
	return addMonthsClamped(currentEndDate, 1), plan.MonthlyPrice
}

// addMonthsClamped moves t forward by the given number of calendar months,
// clamping the day-of-month instead of letting time.AddDate spill into the
// following month (Jan 31 + 1 month = Feb 28, not Mar 3).
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysInMonth(target.Year(), target.Month()); d > last {
		d = last
	}
	h, min, sec := t.Clock()
	return time.Date(target.Year(), target.Month(), d, h, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// day 0 of the next month normalizes to the last day of this month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func lastDayOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), daysInMonth(t.Year(), t.Month()), 0, 0, 0, 0, t.Location())
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b. Dates are re-anchored in UTC
// so DST transitions in the input location cannot skew the day count.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	au := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bu := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// endOfDay places a period boundary at the last second of its calendar day
// so date-window queries include the whole end date.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
