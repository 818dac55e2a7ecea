package orgpoints

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Youngger9765/duotopia-sub006/internal/models"
	"github.com/Youngger9765/duotopia-sub006/pkg/logctx"
	"github.com/Youngger9765/duotopia-sub006/pkg/metrics"
	"github.com/Youngger9765/duotopia-sub006/pkg/tool"
	"github.com/Youngger9765/duotopia-sub006/pkg/types"
	"github.com/Youngger9765/duotopia-sub006/pkg/units"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrOrganizationNotFound = errors.New("organization not found")

// Service is the fail-open organization point ledger: insufficient points
// never block a feature, the deduction lands and the shortfall is surfaced
// as a warning.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

type DeductRequest struct {
	TeacherID   *string           `json:"teacher_id"`
	FeatureType types.FeatureType `json:"feature_type"`
	UnitCount   float64           `json:"unit_count"`
	UnitType    units.Unit        `json:"unit_type"`
	Description string            `json:"description"`
}

type DeductResult struct {
	Entry *models.OrganizationPointsLog `json:"entry"`
	// Sufficient is false when the deduction overdrew the pool; the event
	// still went through.
	Sufficient      bool    `json:"sufficient"`
	PointsRemaining float64 `json:"points_remaining"`
}

// CheckPoints reports whether the pool covers the required points.
func (s *Service) CheckPoints(org *models.Organization, required float64) bool {
	return org.UsedPoints+required <= org.TotalPoints
}

// Get loads an organization by id.
func (s *Service) Get(ctx context.Context, organizationID string) (*models.Organization, error) {
	var org models.Organization
	if err := s.db.WithContext(ctx).First(&org, "id = ?", organizationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}
	return &org, nil
}

// Deduct converts the request to points (1 point = 1 canonical second) and
// increments used_points unconditionally, appending the audit row in the
// same transaction. Overdraft is logged and counted, never returned as an
// error.
func (s *Service) Deduct(ctx context.Context, organizationID string, req *DeductRequest) (*DeductResult, error) {
	points, err := units.ToSeconds(req.UnitCount, req.UnitType)
	if err != nil {
		return nil, err
	}

	var entry *models.OrganizationPointsLog
	var fresh models.Organization

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Organization{}).
			Where("id = ?", organizationID).
			Updates(map[string]interface{}{
				"used_points":        gorm.Expr("used_points + ?", points),
				"last_points_update": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to increment used_points: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrOrganizationNotFound
		}

		if err := tx.First(&fresh, "id = ?", organizationID).Error; err != nil {
			return fmt.Errorf("failed to reload organization: %w", err)
		}

		entry = &models.OrganizationPointsLog{
			ID:             tool.GenerateUUIDV7(),
			OrganizationID: organizationID,
			TeacherID:      req.TeacherID,
			PointsUsed:     points,
			FeatureType:    req.FeatureType,
			Description:    req.Description,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to append points log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &DeductResult{
		Entry:           entry,
		Sufficient:      fresh.UsedPoints <= fresh.TotalPoints,
		PointsRemaining: fresh.PointsRemaining(),
	}
	if !result.Sufficient {
		metrics.OrgOverdraftCounter.WithLabelValues(organizationID).Inc()
		logctx.FromCtx(ctx, s.log).Warnw("organization points overdrawn",
			"organization_id", organizationID,
			"used_points", fresh.UsedPoints,
			"total_points", fresh.TotalPoints,
			"feature_type", req.FeatureType,
		)
	}
	return result, nil
}

// TopUp grants points to the pool from an external payment/admin event.
func (s *Service) TopUp(ctx context.Context, organizationID string, points float64, description string) (*models.Organization, error) {
	if points <= 0 {
		return nil, fmt.Errorf("top-up points must be positive, got %v", points)
	}

	var fresh models.Organization
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Organization{}).
			Where("id = ?", organizationID).
			Updates(map[string]interface{}{
				"total_points":       gorm.Expr("total_points + ?", points),
				"last_points_update": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to increment total_points: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrOrganizationNotFound
		}
		if err := tx.First(&fresh, "id = ?", organizationID).Error; err != nil {
			return fmt.Errorf("failed to reload organization: %w", err)
		}

		entry := &models.OrganizationPointsLog{
			ID:             tool.GenerateUUIDV7(),
			OrganizationID: organizationID,
			PointsUsed:     points,
			FeatureType:    types.FeatureTypeTopUp,
			Description:    description,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to append points log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("organization points topped up",
		"organization_id", organizationID,
		"points", points,
		"total_points", fresh.TotalPoints,
	)
	return &fresh, nil
}
