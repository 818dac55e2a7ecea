package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Youngger9765/duotopia-sub006/internal/models"
	"github.com/Youngger9765/duotopia-sub006/pkg/config"
	"github.com/Youngger9765/duotopia-sub006/pkg/logctx"
	"github.com/Youngger9765/duotopia-sub006/pkg/tool"
	"github.com/Youngger9765/duotopia-sub006/pkg/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoActivePeriod is returned when a teacher has no current subscription
// period; the teacher-quota path is fail-closed without one.
var ErrNoActivePeriod = errors.New("no active subscription period")

type Service struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, db: db, log: log}
}

type CreateSubscriptionRequest struct {
	TeacherID     string    `json:"teacher_id"`
	PlanName      string    `json:"plan_name"`
	StartDate     time.Time `json:"start_date"`
	PaymentMethod string    `json:"payment_method"`
	// AmountPaid overrides the computed amount when the payment event
	// already settled a different figure; nil means charge as computed.
	AmountPaid *int64 `json:"amount_paid"`
}

// CurrentPeriod returns the teacher's unique active period containing now.
func (s *Service) CurrentPeriod(ctx context.Context, teacherID string) (*models.SubscriptionPeriod, error) {
	now := time.Now()
	var period models.SubscriptionPeriod
	err := s.db.WithContext(ctx).
		Where("teacher_id = ? AND status = ? AND start_date <= ? AND end_date >= ?",
			teacherID, types.PeriodStatusActive, now, now).
		Order("end_date DESC").
		First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActivePeriod
		}
		return nil, fmt.Errorf("failed to load current period: %w", err)
	}
	return &period, nil
}

// CreateFirstSubscription opens a new billing window for a teacher from an
// external payment event. Any still-active rows are superseded (marked
// expired), never deleted.
func (s *Service) CreateFirstSubscription(ctx context.Context, req *CreateSubscriptionRequest) (*models.SubscriptionPeriod, *FirstSubscriptionResult, error) {
	plan, err := s.cfg.GetPlanByName(req.PlanName)
	if err != nil {
		return nil, nil, err
	}

	calc := CalculateFirstSubscription(req.StartDate, plan)
	amount := calc.AmountDue
	if req.AmountPaid != nil {
		amount = *req.AmountPaid
	}

	period := &models.SubscriptionPeriod{
		ID:            tool.GenerateUUIDV7(),
		TeacherID:     req.TeacherID,
		PlanName:      plan.Name,
		AmountPaid:    amount,
		QuotaTotal:    plan.QuotaSeconds,
		StartDate:     dateOnly(req.StartDate),
		EndDate:       endOfDay(calc.EndDate),
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: types.PaymentStatusPaid,
		Status:        types.PeriodStatusActive,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SubscriptionPeriod{}).
			Where("teacher_id = ? AND status = ?", req.TeacherID, types.PeriodStatusActive).
			Update("status", types.PeriodStatusExpired).Error; err != nil {
			return fmt.Errorf("failed to supersede active periods: %w", err)
		}
		if err := tx.Create(period).Error; err != nil {
			return fmt.Errorf("failed to create subscription period: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("subscription period created",
		"teacher_id", req.TeacherID,
		"plan", plan.Name,
		"pricing_method", calc.PricingMethod,
		"bonus_days", calc.BonusDays,
		"amount_due", calc.AmountDue,
		"end_date", period.EndDate,
	)
	return period, calc, nil
}

// Renew extends the teacher's subscription by one calendar month from the
// current end date. The new period starts the day after the current one ends;
// the current row stays active until its own end date passes.
func (s *Service) Renew(ctx context.Context, teacherID, paymentMethod string) (*models.SubscriptionPeriod, error) {
	current, err := s.CurrentPeriod(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	plan, err := s.cfg.GetPlanByName(current.PlanName)
	if err != nil {
		return nil, err
	}

	newEnd, amount := CalculateRenewal(current.EndDate, plan)
	period := &models.SubscriptionPeriod{
		ID:            tool.GenerateUUIDV7(),
		TeacherID:     teacherID,
		PlanName:      plan.Name,
		AmountPaid:    amount,
		QuotaTotal:    plan.QuotaSeconds,
		StartDate:     dateOnly(current.EndDate.AddDate(0, 0, 1)),
		EndDate:       endOfDay(newEnd),
		PaymentMethod: paymentMethod,
		PaymentStatus: types.PaymentStatusPaid,
		Status:        types.PeriodStatusActive,
	}

	if err := s.db.WithContext(ctx).Create(period).Error; err != nil {
		return nil, fmt.Errorf("failed to create renewal period: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("subscription renewed",
		"teacher_id", teacherID,
		"plan", plan.Name,
		"start_date", period.StartDate,
		"end_date", period.EndDate,
	)
	return period, nil
}

// Cancel marks the teacher's current period cancelled. The row is kept as
// history; quota already consumed stays on record.
func (s *Service) Cancel(ctx context.Context, teacherID, reason string) (*models.SubscriptionPeriod, error) {
	current, err := s.CurrentPeriod(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":        types.PeriodStatusCancelled,
		"cancelled_at":  now,
		"cancel_reason": reason,
	}
	if err := s.db.WithContext(ctx).Model(&models.SubscriptionPeriod{}).
		Where("id = ?", current.ID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel period: %w", err)
	}

	current.Status = types.PeriodStatusCancelled
	current.CancelledAt = &now
	current.CancelReason = &reason

	logctx.FromCtx(ctx, s.log).Infow("subscription cancelled",
		"teacher_id", teacherID, "period_id", current.ID, "reason", reason)
	return current, nil
}
