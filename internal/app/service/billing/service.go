package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Youngger9765/duotopia-sub006/internal/app/service/orgpoints"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/quota"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/subscription"
	"github.com/Youngger9765/duotopia-sub006/internal/models"
	"github.com/Youngger9765/duotopia-sub006/pkg/logctx"
	"github.com/Youngger9765/duotopia-sub006/pkg/metrics"
	"github.com/Youngger9765/duotopia-sub006/pkg/types"
	"github.com/Youngger9765/duotopia-sub006/pkg/units"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrClassroomNotFound = errors.New("classroom not found")

// Service is the entry point for billable events: it resolves the billing
// target from classroom ownership and dispatches to the matching ledger.
type Service struct {
	db        *gorm.DB
	log       *zap.SugaredLogger
	subs      *subscription.Service
	quota     *quota.Service
	orgPoints *orgpoints.Service
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, subs *subscription.Service, q *quota.Service, op *orgpoints.Service) *Service {
	return &Service{db: db, log: log, subs: subs, quota: q, orgPoints: op}
}

type UsageRequest struct {
	TeacherID     string            `json:"teacher_id"`
	StudentID     *string           `json:"student_id"`
	AssignmentID  *string           `json:"assignment_id"`
	ClassroomID   string            `json:"classroom_id"`
	FeatureType   types.FeatureType `json:"feature_type"`
	UnitCount     float64           `json:"unit_count"`
	UnitType      units.Unit        `json:"unit_type"`
	FeatureDetail datatypes.JSON    `json:"feature_detail"`
}

type UsageResult struct {
	Target     types.BillingTarget `json:"target"`
	LogID      string              `json:"log_id"`
	PointsUsed float64             `json:"points_used"`
	Remaining  float64             `json:"remaining"`
	// InBufferZone warns that teacher usage passed quota_total (still under
	// the hard limit).
	InBufferZone bool `json:"in_buffer_zone,omitempty"`
	// InsufficientPoints warns that the organization pool is overdrawn; the
	// event still went through.
	InsufficientPoints bool `json:"insufficient_points,omitempty"`
}

// RecordUsage meters one billable event. The teacher path is fail-closed
// (*quota.QuotaExceededError, subscription.ErrNoActivePeriod); the
// organization path is fail-open.
func (s *Service) RecordUsage(ctx context.Context, req *UsageRequest) (*UsageResult, error) {
	start := time.Now()

	var classroom models.Classroom
	if err := s.db.WithContext(ctx).First(&classroom, "id = ?", req.ClassroomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassroomNotFound
		}
		return nil, fmt.Errorf("failed to load classroom: %w", err)
	}

	target := ResolveBillingTarget(&classroom)
	result, err := s.deduct(ctx, target, req)

	metrics.DeductionDuration.WithLabelValues(string(target.Kind)).
		Observe(float64(time.Since(start).Milliseconds()))
	metrics.DeductionCounter.WithLabelValues(string(target.Kind), string(req.FeatureType), outcomeLabel(result, err)).Inc()

	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("usage recorded",
		"target", target.Kind,
		"teacher_id", req.TeacherID,
		"feature_type", req.FeatureType,
		"points_used", result.PointsUsed,
		"remaining", result.Remaining,
	)
	return result, nil
}

func (s *Service) deduct(ctx context.Context, target types.BillingTarget, req *UsageRequest) (*UsageResult, error) {
	switch target.Kind {
	case types.BillingTargetTeacher:
		period, err := s.subs.CurrentPeriod(ctx, target.TeacherID)
		if err != nil {
			return nil, err
		}
		res, err := s.quota.Deduct(ctx, period, &quota.DeductRequest{
			StudentID:     req.StudentID,
			AssignmentID:  req.AssignmentID,
			FeatureType:   req.FeatureType,
			UnitCount:     req.UnitCount,
			UnitType:      req.UnitType,
			FeatureDetail: req.FeatureDetail,
		})
		if err != nil {
			return nil, err
		}
		return &UsageResult{
			Target:       target,
			LogID:        res.Entry.ID,
			PointsUsed:   res.Entry.PointsUsed,
			Remaining:    period.QuotaRemaining(),
			InBufferZone: res.InBufferZone,
		}, nil

	case types.BillingTargetOrganization:
		res, err := s.orgPoints.Deduct(ctx, target.OrganizationID, &orgpoints.DeductRequest{
			TeacherID:   &req.TeacherID,
			FeatureType: req.FeatureType,
			UnitCount:   req.UnitCount,
			UnitType:    req.UnitType,
			Description: fmt.Sprintf("%s in classroom %s", req.FeatureType, req.ClassroomID),
		})
		if err != nil {
			return nil, err
		}
		return &UsageResult{
			Target:             target,
			LogID:              res.Entry.ID,
			PointsUsed:         res.Entry.PointsUsed,
			Remaining:          res.PointsRemaining,
			InsufficientPoints: !res.Sufficient,
		}, nil

	default:
		return nil, fmt.Errorf("unknown billing target kind: %s", target.Kind)
	}
}

func outcomeLabel(result *UsageResult, err error) string {
	switch {
	case err == nil && result != nil && result.InsufficientPoints:
		return "insufficient"
	case err == nil:
		return "ok"
	default:
		var exceeded *quota.QuotaExceededError
		if errors.As(err, &exceeded) {
			return "quota_exceeded"
		}
		return "error"
	}
}
