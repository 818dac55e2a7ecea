package orgpoints

import (
	"context"
	"errors"
	"testing"

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
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Organization{}, &models.OrganizationPointsLog{}))
	return db
}

func seedOrg(t *testing.T, db *gorm.DB, total, used float64) *models.Organization {
	t.Helper()
	org := &models.Organization{
		ID:          tool.GenerateUUIDV7(),
		Name:        "Testing Academy",
		TotalPoints: total,
		UsedPoints:  used,
	}
	require.NoError(t, db.Create(org).Error)
	return org
}

func TestCheckPoints(t *testing.T) {
	s := NewService(nil, zap.NewNop().Sugar())
	org := &models.Organization{TotalPoints: 100, UsedPoints: 80}
	assert.True(t, s.CheckPoints(org, 20))
	assert.False(t, s.CheckPoints(org, 21))
}

func TestDeduct_Sufficient(t *testing.T) {
	db := newTestDB(t)
	s := NewService(db, zap.NewNop().Sugar())
	org := seedOrg(t, db, 100, 0)

	teacher := "teacher-1"
	res, err := s.Deduct(context.Background(), org.ID, &DeductRequest{
		TeacherID:   &teacher,
		FeatureType: types.FeatureTypeSpeechAssessment,
		UnitCount:   300,
		UnitType:    units.UnitWords,
		Description: "speech assessment batch",
	})
	require.NoError(t, err)
	assert.True(t, res.Sufficient)
	assert.InDelta(t, 70, res.PointsRemaining, 1e-9)
	assert.InDelta(t, 30, res.Entry.PointsUsed, 1e-9)

	var fresh models.Organization
	require.NoError(t, db.First(&fresh, "id = ?", org.ID).Error)
	assert.InDelta(t, 30, fresh.UsedPoints, 1e-9)
	require.NotNil(t, fresh.LastPointsUpdate)
}

func TestDeduct_OverdraftFailsOpen(t *testing.T) {
	db := newTestDB(t)
	s := NewService(db, zap.NewNop().Sugar())
	org := seedOrg(t, db, 10, 0)

	// deduction far beyond the pool still succeeds and still logs
	res, err := s.Deduct(context.Background(), org.ID, &DeductRequest{
		FeatureType: types.FeatureTypeTTS,
		UnitCount:   50,
		UnitType:    units.UnitSeconds,
	})
	require.NoError(t, err)
	assert.False(t, res.Sufficient)
	assert.InDelta(t, -40, res.PointsRemaining, 1e-9)

	var fresh models.Organization
	require.NoError(t, db.First(&fresh, "id = ?", org.ID).Error)
	assert.Greater(t, fresh.UsedPoints, fresh.TotalPoints)

	var count int64
	require.NoError(t, db.Model(&models.OrganizationPointsLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeduct_UnknownOrganization(t *testing.T) {
	db := newTestDB(t)
	s := NewService(db, zap.NewNop().Sugar())

	_, err := s.Deduct(context.Background(), tool.GenerateUUIDV7(), &DeductRequest{
		FeatureType: types.FeatureTypeTTS,
		UnitCount:   1,
		UnitType:    units.UnitSeconds,
	})
	require.True(t, errors.Is(err, ErrOrganizationNotFound))
}

func TestTopUp(t *testing.T) {
	db := newTestDB(t)
	s := NewService(db, zap.NewNop().Sugar())
	org := seedOrg(t, db, 100, 60)

	fresh, err := s.TopUp(context.Background(), org.ID, 500, "invoice #42")
	require.NoError(t, err)
	assert.InDelta(t, 600, fresh.TotalPoints, 1e-9)
	assert.InDelta(t, 60, fresh.UsedPoints, 1e-9)

	var entry models.OrganizationPointsLog
	require.NoError(t, db.First(&entry, "organization_id = ?", org.ID).Error)
	assert.Equal(t, types.FeatureTypeTopUp, entry.FeatureType)
	assert.InDelta(t, 500, entry.PointsUsed, 1e-9)

	_, err = s.TopUp(context.Background(), org.ID, 0, "noop")
	require.Error(t, err)
}
