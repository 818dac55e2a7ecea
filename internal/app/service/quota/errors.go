package quota

import (
	"fmt"

	"github.com/Youngger9765/duotopia-sub006/internal/models"
)

// QuotaExceededError rejects a deduction that would push quota_used past the
// hard limit (quota_total plus the buffer). The payload lets callers render
// an upgrade or renewal prompt.
type QuotaExceededError struct {
	QuotaTotal       float64 `json:"quota_total"`
	QuotaLimit       float64 `json:"quota_limit"`
	BufferPercentage int     `json:"buffer_percentage"`
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota hard limit exceeded: limit=%.2f (total=%.2f, buffer=%d%%)",
		e.QuotaLimit, e.QuotaTotal, e.BufferPercentage)
}

func newQuotaExceededError(period *models.SubscriptionPeriod) *QuotaExceededError {
	return &QuotaExceededError{
		QuotaTotal:       period.QuotaTotal,
		QuotaLimit:       period.HardLimit(),
		BufferPercentage: models.QuotaBufferPercent,
	}
}
