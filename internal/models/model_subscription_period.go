package models

import (
	"time"

	"github.com/Youngger9765/duotopia-sub006/pkg/types"
)

// QuotaBufferPercent is the soft overage allowed past quota_total before the
// hard limit rejects further deductions.
const QuotaBufferPercent = 20

// SubscriptionPeriod is one time-boxed entitlement window for a teacher.
// Rows are append-only history: after creation only quota_used (monotonic
// increase) and the status/cancellation fields may change.
type SubscriptionPeriod struct {
	ID        string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	TeacherID string `gorm:"column:teacher_id;type:varchar(64);not null;index:idx_teacher_status_end,priority:1" json:"teacher_id"`
	PlanName  string `gorm:"column:plan_name;type:varchar(64);not null" json:"plan_name"`
	// AmountPaid 实际支付金额，整数货币单位
	AmountPaid int64 `gorm:"column:amount_paid;type:bigint;not null" json:"amount_paid"`
	// QuotaTotal is the nominal allotment in canonical seconds; the hard
	// limit is QuotaTotal * (1 + QuotaBufferPercent/100).
	QuotaTotal    float64            `gorm:"column:quota_total;type:numeric(14,2);not null" json:"quota_total"`
	QuotaUsed     float64            `gorm:"column:quota_used;type:numeric(14,2);not null;default:0" json:"quota_used"`
	StartDate     time.Time          `gorm:"column:start_date;not null" json:"start_date"`
	EndDate       time.Time          `gorm:"column:end_date;not null;index:idx_teacher_status_end,priority:3" json:"end_date"`
	PaymentMethod string             `gorm:"column:payment_method;type:varchar(64)" json:"payment_method"`
	PaymentStatus types.PaymentStatus `gorm:"column:payment_status;type:varchar(32);not null" json:"payment_status"`
	Status        types.PeriodStatus `gorm:"column:status;type:varchar(32);not null;index:idx_teacher_status_end,priority:2" json:"status"`
	CancelledAt   *time.Time         `gorm:"column:cancelled_at;default:null" json:"cancelled_at"`
	CancelReason  *string            `gorm:"column:cancel_reason;type:varchar(255);default:null" json:"cancel_reason"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func (SubscriptionPeriod) TableName() string {
	return "subscription_period"
}

// HardLimit is the absolute ceiling for quota_used within this period.
func (p *SubscriptionPeriod) HardLimit() float64 {
	return p.QuotaTotal * (100 + QuotaBufferPercent) / 100
}

// QuotaRemaining is the remaining nominal quota; negative inside the buffer zone.
func (p *SubscriptionPeriod) QuotaRemaining() float64 {
	return p.QuotaTotal - p.QuotaUsed
}

// CurrentAt reports whether this row is the teacher's current period at t.
func (p *SubscriptionPeriod) CurrentAt(t time.Time) bool {
	return p != nil &&
		p.Status == types.PeriodStatusActive &&
		!t.Before(p.StartDate) &&
		!t.After(p.EndDate)
}
