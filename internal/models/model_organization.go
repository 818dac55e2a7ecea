package models

import "time"

// Organization holds the shared point pool for an organization's teachers.
// The balance is not time-boxed: total_points only grows via top-ups,
// used_points only grows via deductions. used_points exceeding total_points
// is an operational condition, not a storage invariant violation.
type Organization struct {
	ID          string  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name        string  `gorm:"column:name;type:varchar(255);not null" json:"name"`
	TotalPoints float64 `gorm:"column:total_points;type:numeric(14,2);not null;default:0" json:"total_points"`
	UsedPoints  float64 `gorm:"column:used_points;type:numeric(14,2);not null;default:0" json:"used_points"`
	// LastPointsUpdate 最近一次点数变动时间
	LastPointsUpdate *time.Time `gorm:"column:last_points_update;default:null" json:"last_points_update"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Organization) TableName() string {
	return "organization"
}

// PointsRemaining may be negative when the pool is overdrawn.
func (o *Organization) PointsRemaining() float64 {
	return o.TotalPoints - o.UsedPoints
}
