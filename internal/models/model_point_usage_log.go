package models

import (
	"time"

	"github.com/Youngger9765/duotopia-sub006/pkg/types"
	"github.com/Youngger9765/duotopia-sub006/pkg/units"

	"gorm.io/datatypes"
)

// PointUsageLog is the immutable audit record of one teacher-quota
// deduction. Rows are never updated or deleted; balances must be
// reconstructable by replaying the log (quota_after = quota_before +
// points_used on every row).
type PointUsageLog struct {
	ID                   string            `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubscriptionPeriodID string            `gorm:"column:subscription_period_id;type:uuid;not null;index" json:"subscription_period_id"`
	TeacherID            string            `gorm:"column:teacher_id;type:varchar(64);not null;index:idx_usage_teacher_created,priority:1" json:"teacher_id"`
	StudentID            *string           `gorm:"column:student_id;type:varchar(64);default:null" json:"student_id"`
	AssignmentID         *string           `gorm:"column:assignment_id;type:varchar(64);default:null" json:"assignment_id"`
	FeatureType          types.FeatureType `gorm:"column:feature_type;type:varchar(64);not null" json:"feature_type"`
	// FeatureDetail stores feature-specific JSON (for example the assessed
	// sentence or the TTS voice).
	FeatureDetail datatypes.JSON `gorm:"column:feature_detail;type:jsonb;default:'{}'" json:"feature_detail"`
	PointsUsed    float64        `gorm:"column:points_used;type:numeric(14,2);not null" json:"points_used"`
	QuotaBefore   float64        `gorm:"column:quota_before;type:numeric(14,2);not null" json:"quota_before"`
	QuotaAfter    float64        `gorm:"column:quota_after;type:numeric(14,2);not null" json:"quota_after"`
	UnitCount     float64        `gorm:"column:unit_count;type:numeric(14,2);not null" json:"unit_count"`
	UnitType      units.Unit     `gorm:"column:unit_type;type:varchar(32);not null" json:"unit_type"`
	CreatedAt     time.Time      `gorm:"index:idx_usage_teacher_created,priority:2" json:"created_at"`
}

func (PointUsageLog) TableName() string {
	return "point_usage_log"
}
