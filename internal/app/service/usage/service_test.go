package usage

import (
	"context"
	"testing"
	"time"

	"github.com/Youngger9765/duotopia-sub006/internal/app/service/orgpoints"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/subscription"
	"github.com/Youngger9765/duotopia-sub006/internal/models"
	"github.com/Youngger9765/duotopia-sub006/pkg/config"
	"github.com/Youngger9765/duotopia-sub006/pkg/tool"
	"github.com/Youngger9765/duotopia-sub006/pkg/types"
	"github.com/Youngger9765/duotopia-sub006/pkg/units"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.SubscriptionPeriod{},
		&models.PointUsageLog{},
		&models.Organization{},
		&models.OrganizationPointsLog{},
	))

	log := zap.NewNop().Sugar()
	cfg := &config.Config{Plans: []*types.Plan{{Name: "standard", MonthlyPrice: 1000, QuotaSeconds: 1000}}}
	subs := subscription.NewService(cfg, db, log)
	return NewService(db, log, subs, orgpoints.NewService(db, log)), db
}

func seedLog(t *testing.T, db *gorm.DB, teacherID string, feature types.FeatureType, points float64, studentID, assignmentID *string, at time.Time) {
	t.Helper()
	entry := &models.PointUsageLog{
		ID:                   tool.GenerateUUIDV7(),
		SubscriptionPeriodID: "period-1",
		TeacherID:            teacherID,
		StudentID:            studentID,
		AssignmentID:         assignmentID,
		FeatureType:          feature,
		PointsUsed:           points,
		QuotaBefore:          0,
		QuotaAfter:           points,
		UnitCount:            points,
		UnitType:             units.UnitSeconds,
		CreatedAt:            at,
	}
	require.NoError(t, db.Create(entry).Error)
}

func TestGetQuotaInfo(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	info, err := s.GetQuotaInfo(ctx, "teacher-x")
	require.NoError(t, err)
	assert.Equal(t, "inactive", info.Status)
	assert.Zero(t, info.QuotaTotal)

	now := time.Now()
	period := &models.SubscriptionPeriod{
		ID:            tool.GenerateUUIDV7(),
		TeacherID:     "teacher-x",
		PlanName:      "standard",
		QuotaTotal:    1000,
		QuotaUsed:     250,
		StartDate:     now.AddDate(0, 0, -3),
		EndDate:       now.AddDate(0, 0, 27),
		PaymentStatus: types.PaymentStatusPaid,
		Status:        types.PeriodStatusActive,
	}
	require.NoError(t, db.Create(period).Error)

	info, err = s.GetQuotaInfo(ctx, "teacher-x")
	require.NoError(t, err)
	assert.Equal(t, "active", info.Status)
	assert.Equal(t, float64(1000), info.QuotaTotal)
	assert.Equal(t, float64(250), info.QuotaUsed)
	assert.Equal(t, float64(750), info.QuotaRemaining)
	assert.Equal(t, "standard", info.PlanName)
}

func TestGetUsageSummary(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	alice := "student-alice"
	bob := "student-bob"
	homework := "assignment-hw1"
	day1 := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

	seedLog(t, db, "teacher-1", types.FeatureTypeSpeechAssessment, 30, &alice, &homework, day1)
	seedLog(t, db, "teacher-1", types.FeatureTypeSpeechAssessment, 20, &bob, &homework, day1)
	seedLog(t, db, "teacher-1", types.FeatureTypeTTS, 50, &alice, nil, day2)
	// another teacher's row must not leak into the summary
	seedLog(t, db, "teacher-2", types.FeatureTypeTTS, 999, nil, nil, day1)

	summary, err := s.GetUsageSummary(ctx, "teacher-1", nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 100, summary.TotalPoints, 1e-9)
	assert.Equal(t, int64(3), summary.TotalEvents)

	require.Len(t, summary.DailyUsage, 2)
	assert.InDelta(t, 50, summary.DailyUsage[0].Points, 1e-9)
	assert.InDelta(t, 50, summary.DailyUsage[1].Points, 1e-9)

	require.Len(t, summary.TopStudents, 2)
	assert.Equal(t, alice, summary.TopStudents[0].ID)
	assert.InDelta(t, 80, summary.TopStudents[0].Points, 1e-9)

	require.Len(t, summary.TopAssignments, 1)
	assert.Equal(t, homework, summary.TopAssignments[0].ID)
	assert.InDelta(t, 50, summary.TopAssignments[0].Points, 1e-9)

	require.Len(t, summary.FeatureBreakdown, 2)
	assert.InDelta(t, 50, summary.FeatureBreakdown[types.FeatureTypeSpeechAssessment], 1e-9)
	assert.InDelta(t, 50, summary.FeatureBreakdown[types.FeatureTypeTTS], 1e-9)

	// window filter drops day1
	windowed, err := s.GetUsageSummary(ctx, "teacher-1", &day2, nil)
	require.NoError(t, err)
	assert.InDelta(t, 50, windowed.TotalPoints, 1e-9)
	assert.Equal(t, int64(1), windowed.TotalEvents)
}

func TestScanUsageLogs(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	at := time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedLog(t, db, "teacher-1", types.FeatureTypeTTS, float64(i+1), nil, nil, at.Add(time.Duration(i)*time.Minute))
	}

	res, err := s.ScanUsageLogs(ctx, &ScanUsageLogsRequest{
		Filters: []*types.CommonFilter{{Field: "teacher_id", Operator: types.CommonFilterOperatorEq, Values: []any{"teacher-1"}}},
		Size:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Total)
	require.Len(t, res.Items, 2)
	// default sort: created_at desc
	assert.InDelta(t, 5, res.Items[0].PointsUsed, 1e-9)
}

func TestGetOrganizationPointsInfo(t *testing.T) {
	s, db := newTestService(t)
	org := &models.Organization{ID: tool.GenerateUUIDV7(), Name: "Academy", TotalPoints: 100, UsedPoints: 40}
	require.NoError(t, db.Create(org).Error)
	require.NoError(t, db.Create(&models.OrganizationPointsLog{
		ID:             tool.GenerateUUIDV7(),
		OrganizationID: org.ID,
		PointsUsed:     40,
		FeatureType:    types.FeatureTypeTTS,
	}).Error)

	info, err := s.GetOrganizationPointsInfo(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(60), info.PointsRemaining)
	require.Len(t, info.RecentLogs, 1)
}
