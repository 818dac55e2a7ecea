package models

import (
	"time"

	"github.com/Youngger9765/duotopia-sub006/pkg/types"
)

// OrganizationPointsLog is the immutable audit record of one organization
// point movement: deductions carry the feature that consumed the points,
// top-ups carry FeatureTypeTopUp with the granted amount.
type OrganizationPointsLog struct {
	ID             string            `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OrganizationID string            `gorm:"column:organization_id;type:uuid;not null;index:idx_org_points_created,priority:1" json:"organization_id"`
	TeacherID      *string           `gorm:"column:teacher_id;type:varchar(64);default:null" json:"teacher_id"`
	PointsUsed     float64           `gorm:"column:points_used;type:numeric(14,2);not null" json:"points_used"`
	FeatureType    types.FeatureType `gorm:"column:feature_type;type:varchar(64);not null" json:"feature_type"`
	Description    string            `gorm:"column:description;type:varchar(255)" json:"description"`
	CreatedAt      time.Time         `gorm:"index:idx_org_points_created,priority:2" json:"created_at"`
}

func (OrganizationPointsLog) TableName() string {
	return "organization_points_log"
}
