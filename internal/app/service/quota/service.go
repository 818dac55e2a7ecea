package quota

import (
	"context"
	"fmt"

	"github.com/Youngger9765/duotopia-sub006/internal/models"
	"github.com/Youngger9765/duotopia-sub006/pkg/logctx"
	"github.com/Youngger9765/duotopia-sub006/pkg/tool"
	"github.com/Youngger9765/duotopia-sub006/pkg/types"
	"github.com/Youngger9765/duotopia-sub006/pkg/units"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service is the fail-closed teacher-quota ledger. The only mutation path is
// a single conditional UPDATE re-checking the hard limit against the row's
// own current value, so concurrent deductions cannot overshoot.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

type DeductRequest struct {
	StudentID     *string           `json:"student_id"`
	AssignmentID  *string           `json:"assignment_id"`
	FeatureType   types.FeatureType `json:"feature_type"`
	UnitCount     float64           `json:"unit_count"`
	UnitType      units.Unit        `json:"unit_type"`
	FeatureDetail datatypes.JSON    `json:"feature_detail"`
}

type DeductResult struct {
	Entry *models.PointUsageLog `json:"entry"`
	// InBufferZone is set when usage has passed quota_total but is still
	// under the hard limit; a warning for the caller, not an error.
	InBufferZone bool `json:"in_buffer_zone"`
}

// CheckQuota reports whether the requested seconds fit under the hard limit.
func (s *Service) CheckQuota(period *models.SubscriptionPeriod, requestedSeconds float64) bool {
	return period.QuotaUsed+requestedSeconds <= period.HardLimit()
}

// Deduct converts the request to canonical seconds and charges them against
// the period. The balance increment and the usage-log append commit in one
// transaction; neither can land without the other.
func (s *Service) Deduct(ctx context.Context, period *models.SubscriptionPeriod, req *DeductRequest) (*DeductResult, error) {
	seconds, err := units.ToSeconds(req.UnitCount, req.UnitType)
	if err != nil {
		return nil, err
	}

	hardLimit := period.HardLimit()
	var entry *models.PointUsageLog

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.SubscriptionPeriod{}).
			Where("id = ? AND quota_used + ? <= ?", period.ID, seconds, hardLimit).
			Update("quota_used", gorm.Expr("quota_used + ?", seconds))
		if res.Error != nil {
			return fmt.Errorf("failed to increment quota_used: %w", res.Error)
		}

		// The UPDATE row-locks the period, so this read observes either our
		// own increment or, on rejection, the balance that blocked us.
		var fresh models.SubscriptionPeriod
		if err := tx.First(&fresh, "id = ?", period.ID).Error; err != nil {
			return fmt.Errorf("failed to reload period: %w", err)
		}

		if res.RowsAffected == 0 {
			return newQuotaExceededError(&fresh)
		}

		detail := req.FeatureDetail
		if detail == nil {
			detail = datatypes.JSON([]byte("{}"))
		}
		entry = &models.PointUsageLog{
			ID:                   tool.GenerateUUIDV7(),
			SubscriptionPeriodID: period.ID,
			TeacherID:            period.TeacherID,
			StudentID:            req.StudentID,
			AssignmentID:         req.AssignmentID,
			FeatureType:          req.FeatureType,
			FeatureDetail:        detail,
			PointsUsed:           seconds,
			QuotaBefore:          fresh.QuotaUsed - seconds,
			QuotaAfter:           fresh.QuotaUsed,
			UnitCount:            req.UnitCount,
			UnitType:             req.UnitType,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to append usage log: %w", err)
		}

		period.QuotaUsed = fresh.QuotaUsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &DeductResult{Entry: entry, InBufferZone: period.QuotaUsed > period.QuotaTotal}
	if result.InBufferZone {
		logctx.FromCtx(ctx, s.log).Warnw("quota in buffer zone",
			"teacher_id", period.TeacherID,
			"period_id", period.ID,
			"quota_used", period.QuotaUsed,
			"quota_total", period.QuotaTotal,
		)
	}
	return result, nil
}
