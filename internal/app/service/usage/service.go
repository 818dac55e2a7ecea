package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Youngger9765/duotopia-sub006/internal/app/service/orgpoints"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/subscription"
	"github.com/Youngger9765/duotopia-sub006/internal/models"
	"github.com/Youngger9765/duotopia-sub006/pkg/types"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const topConsumerLimit = 10

// Service is the read side of the usage ledgers: balance snapshots and
// aggregations computed as grouped sums over the append-only logs.
type Service struct {
	db        *gorm.DB
	log       *zap.SugaredLogger
	subs      *subscription.Service
	orgPoints *orgpoints.Service
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, subs *subscription.Service, op *orgpoints.Service) *Service {
	return &Service{db: db, log: log, subs: subs, orgPoints: op}
}

type QuotaInfo struct {
	QuotaTotal     float64   `json:"quota_total"`
	QuotaUsed      float64   `json:"quota_used"`
	QuotaRemaining float64   `json:"quota_remaining"`
	Status         string    `json:"status"`
	PlanName       string    `json:"plan_name,omitempty"`
	PeriodStart    time.Time `json:"period_start,omitempty"`
	PeriodEnd      time.Time `json:"period_end,omitempty"`
}

// GetQuotaInfo snapshots the teacher's current period. A teacher without an
// active period gets status "inactive" and zeros rather than an error.
func (s *Service) GetQuotaInfo(ctx context.Context, teacherID string) (*QuotaInfo, error) {
	period, err := s.subs.CurrentPeriod(ctx, teacherID)
	if err != nil {
		if errors.Is(err, subscription.ErrNoActivePeriod) {
			return &QuotaInfo{Status: "inactive"}, nil
		}
		return nil, err
	}
	return &QuotaInfo{
		QuotaTotal:     period.QuotaTotal,
		QuotaUsed:      period.QuotaUsed,
		QuotaRemaining: period.QuotaRemaining(),
		Status:         string(period.Status),
		PlanName:       period.PlanName,
		PeriodStart:    period.StartDate,
		PeriodEnd:      period.EndDate,
	}, nil
}

type DailyUsage struct {
	Date   string  `json:"date"`
	Points float64 `json:"points"`
	Count  int64   `json:"count"`
}

type TopConsumer struct {
	ID     string  `json:"id"`
	Points float64 `json:"points"`
	Count  int64   `json:"count"`
}

type UsageSummary struct {
	TotalPoints      float64                       `json:"total_points"`
	TotalEvents      int64                         `json:"total_events"`
	DailyUsage       []*DailyUsage                 `json:"daily_usage"`
	TopStudents      []*TopConsumer                `json:"top_students"`
	TopAssignments   []*TopConsumer                `json:"top_assignments"`
	FeatureBreakdown map[types.FeatureType]float64 `json:"feature_breakdown"`
}

// GetUsageSummary aggregates the teacher's usage log over an optional
// [start, end] window.
func (s *Service) GetUsageSummary(ctx context.Context, teacherID string, start, end *time.Time) (*UsageSummary, error) {
	logQuery := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.PointUsageLog{}).Where("teacher_id = ?", teacherID)
		if start != nil {
			q = q.Where("created_at >= ?", *start)
		}
		if end != nil {
			q = q.Where("created_at <= ?", *end)
		}
		return q
	}

	summary := &UsageSummary{}

	var totals struct {
		Points float64
		Count  int64
	}
	if err := logQuery().
		Select("COALESCE(SUM(points_used), 0) AS points, COUNT(*) AS count").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to sum usage: %w", err)
	}
	summary.TotalPoints = totals.Points
	summary.TotalEvents = totals.Count

	if err := logQuery().
		Select("DATE(created_at) AS date, SUM(points_used) AS points, COUNT(*) AS count").
		Group("DATE(created_at)").
		Order("date").
		Scan(&summary.DailyUsage).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate daily usage: %w", err)
	}

	if err := logQuery().
		Where("student_id IS NOT NULL").
		Select("student_id AS id, SUM(points_used) AS points, COUNT(*) AS count").
		Group("student_id").
		Order("points DESC").
		Limit(topConsumerLimit).
		Scan(&summary.TopStudents).Error; err != nil {
		return nil, fmt.Errorf("failed to rank students: %w", err)
	}

	if err := logQuery().
		Where("assignment_id IS NOT NULL").
		Select("assignment_id AS id, SUM(points_used) AS points, COUNT(*) AS count").
		Group("assignment_id").
		Order("points DESC").
		Limit(topConsumerLimit).
		Scan(&summary.TopAssignments).Error; err != nil {
		return nil, fmt.Errorf("failed to rank assignments: %w", err)
	}

	var byFeature []struct {
		FeatureType types.FeatureType
		Points      float64
	}
	if err := logQuery().
		Select("feature_type, SUM(points_used) AS points").
		Group("feature_type").
		Scan(&byFeature).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate features: %w", err)
	}
	summary.FeatureBreakdown = lo.Associate(byFeature, func(row struct {
		FeatureType types.FeatureType
		Points      float64
	}) (types.FeatureType, float64) {
		return row.FeatureType, row.Points
	})

	return summary, nil
}

type OrganizationPointsInfo struct {
	TotalPoints      float64                         `json:"total_points"`
	UsedPoints       float64                         `json:"used_points"`
	PointsRemaining  float64                         `json:"points_remaining"`
	LastPointsUpdate *time.Time                      `json:"last_points_update"`
	RecentLogs       []*models.OrganizationPointsLog `json:"recent_logs"`
}

// GetOrganizationPointsInfo snapshots an organization pool with its most
// recent movements.
func (s *Service) GetOrganizationPointsInfo(ctx context.Context, organizationID string) (*OrganizationPointsInfo, error) {
	org, err := s.orgPoints.Get(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	var recent []*models.OrganizationPointsLog
	if err := s.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Limit(20).
		Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent points logs: %w", err)
	}
	return &OrganizationPointsInfo{
		TotalPoints:      org.TotalPoints,
		UsedPoints:       org.UsedPoints,
		PointsRemaining:  org.PointsRemaining(),
		LastPointsUpdate: org.LastPointsUpdate,
		RecentLogs:       recent,
	}, nil
}

// Scan usage log request/response (admin list pages).
type ScanUsageLogsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanUsageLogsResponse struct {
	Items []*models.PointUsageLog `json:"items"`
	Total int64                   `json:"total"`
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// ScanUsageLogs implements paginated/admin listing with filters.
func (s *Service) ScanUsageLogs(ctx context.Context, req *ScanUsageLogsRequest) (*ScanUsageLogsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.PointUsageLog{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count usage logs: %w", err)
	}

	var rows []*models.PointUsageLog
	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: sortBy}, Desc: req.SortOrder != "asc"}}})
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list usage logs: %w", err)
	}

	return &ScanUsageLogsResponse{Items: rows, Total: total}, nil
}
