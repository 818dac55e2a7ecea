package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Youngger9765/duotopia-sub006/internal/models"
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

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive and serializes
	// writers the way a shared postgres row lock would
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.SubscriptionPeriod{}, &models.PointUsageLog{}))
	return db
}

func seedPeriod(t *testing.T, db *gorm.DB, quotaTotal, quotaUsed float64) *models.SubscriptionPeriod {
	t.Helper()
	now := time.Now()
	period := &models.SubscriptionPeriod{
		ID:            tool.GenerateUUIDV7(),
		TeacherID:     "teacher-1",
		PlanName:      "standard",
		AmountPaid:    1000,
		QuotaTotal:    quotaTotal,
		QuotaUsed:     quotaUsed,
		StartDate:     now.AddDate(0, 0, -10),
		EndDate:       now.AddDate(0, 0, 20),
		PaymentStatus: types.PaymentStatusPaid,
		Status:        types.PeriodStatusActive,
	}
	require.NoError(t, db.Create(period).Error)
	return period
}

func TestCheckQuota(t *testing.T) {
	s := NewService(nil, zap.NewNop().Sugar())
	period := &models.SubscriptionPeriod{QuotaTotal: 1000, QuotaUsed: 1000}

	// buffer zone: 20% past quota_total is still allowed
	assert.True(t, s.CheckQuota(period, 200))
	assert.False(t, s.CheckQuota(period, 201))

	period.QuotaUsed = 0
	assert.True(t, s.CheckQuota(period, 1200))
	assert.False(t, s.CheckQuota(period, 1201))
}

func TestDeduct_HardLimitBoundary(t *testing.T) {
	db := newTestDB(t)
	s := NewService(db, zap.NewNop().Sugar())
	ctx := context.Background()
	period := seedPeriod(t, db, 1000, 0)

	// consume all the way to the 1200 hard limit
	for i := 0; i < 12; i++ {
		res, err := s.Deduct(ctx, period, &DeductRequest{
			FeatureType: types.FeatureTypeSpeechAssessment,
			UnitCount:   100,
			UnitType:    units.UnitSeconds,
		})
		require.NoError(t, err, "deduction %d", i)
		require.NotNil(t, res.Entry)
	}
	require.Equal(t, float64(1200), period.QuotaUsed)

	// the unit that would reach 1201 is rejected with the limit payload
	_, err := s.Deduct(ctx, period, &DeductRequest{
		FeatureType: types.FeatureTypeSpeechAssessment,
		UnitCount:   1,
		UnitType:    units.UnitSeconds,
	})
	require.Error(t, err)
	var exceeded *QuotaExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, float64(1000), exceeded.QuotaTotal)
	assert.Equal(t, float64(1200), exceeded.QuotaLimit)
	assert.Equal(t, 20, exceeded.BufferPercentage)

	// the rejected attempt must not leave an orphaned log row
	var count int64
	require.NoError(t, db.Model(&models.PointUsageLog{}).Count(&count).Error)
	assert.Equal(t, int64(12), count)
}

func TestDeduct_BufferZoneWarning(t *testing.T) {
	db := newTestDB(t)
	s := NewService(db, zap.NewNop().Sugar())
	period := seedPeriod(t, db, 100, 90)

	res, err := s.Deduct(context.Background(), period, &DeductRequest{
		FeatureType: types.FeatureTypeTTS,
		UnitCount:   20,
		UnitType:    units.UnitSeconds,
	})
	require.NoError(t, err)
	assert.True(t, res.InBufferZone)
	assert.Equal(t, float64(110), res.Entry.QuotaAfter)
}

func TestDeduct_UnitConversionAndLogInvariant(t *testing.T) {
	db := newTestDB(t)
	s := NewService(db, zap.NewNop().Sugar())
	ctx := context.Background()
	period := seedPeriod(t, db, 1000, 0)

	student := "student-1"
	assignment := "assignment-9"
	requests := []*DeductRequest{
		{FeatureType: types.FeatureTypeSpeechAssessment, UnitCount: 500, UnitType: units.UnitWords, StudentID: &student},
		{FeatureType: types.FeatureTypeImageCorrection, UnitCount: 2, UnitType: units.UnitImages, AssignmentID: &assignment},
		{FeatureType: types.FeatureTypeTTS, UnitCount: 1.5, UnitType: units.UnitMinutes},
	}
	for _, req := range requests {
		_, err := s.Deduct(ctx, period, req)
		require.NoError(t, err)
	}
	// 50 + 20 + 90
	assert.InDelta(t, 160, period.QuotaUsed, 1e-9)

	var logs []*models.PointUsageLog
	require.NoError(t, db.Order("created_at").Find(&logs).Error)
	require.Len(t, logs, 3)
	for _, l := range logs {
		assert.InDelta(t, l.QuotaAfter, l.QuotaBefore+l.PointsUsed, 1e-9)
	}

	_, err := s.Deduct(ctx, period, &DeductRequest{FeatureType: types.FeatureTypeTTS, UnitCount: 1, UnitType: units.Unit("tokens")})
	var invalid *units.InvalidUnitError
	require.True(t, errors.As(err, &invalid))
}

func TestDeduct_ConcurrentExactCapacity(t *testing.T) {
	db := newTestDB(t)
	s := NewService(db, zap.NewNop().Sugar())
	ctx := context.Background()

	// exactly N seconds of hard-limit headroom left
	const n = 10
	period := seedPeriod(t, db, 1000, 1200-n)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// each goroutine works from its own snapshot of the period
			p := *period
			_, err := s.Deduct(ctx, &p, &DeductRequest{
				FeatureType: types.FeatureTypeSpeechAssessment,
				UnitCount:   1,
				UnitType:    units.UnitSeconds,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var fresh models.SubscriptionPeriod
	require.NoError(t, db.First(&fresh, "id = ?", period.ID).Error)
	assert.Equal(t, float64(1200), fresh.QuotaUsed)

	var count int64
	require.NoError(t, db.Model(&models.PointUsageLog{}).Count(&count).Error)
	assert.Equal(t, int64(n), count)

	// the pool is exhausted now
	p := fresh
	_, err := s.Deduct(ctx, &p, &DeductRequest{
		FeatureType: types.FeatureTypeSpeechAssessment,
		UnitCount:   1,
		UnitType:    units.UnitSeconds,
	})
	var exceeded *QuotaExceededError
	require.True(t, errors.As(err, &exceeded))
}

func TestQuotaExceededError_IsWrapFriendly(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &QuotaExceededError{QuotaTotal: 1000, QuotaLimit: 1200, BufferPercentage: 20})
	var exceeded *QuotaExceededError
	require.True(t, errors.As(err, &exceeded))
	require.Equal(t, float64(1200), exceeded.QuotaLimit)
}
