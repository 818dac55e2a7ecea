package models

import "time"

// Classroom is the routing input for billable events: classrooms owned by an
// organization bill the shared point pool, all others bill the teacher's
// subscription quota.
type Classroom struct {
	ID             string     `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name           string     `gorm:"column:name;type:varchar(255);not null" json:"name"`
	TeacherID      string     `gorm:"column:teacher_id;type:varchar(64);not null;index" json:"teacher_id"`
	OrganizationID *string    `gorm:"column:organization_id;type:uuid;default:null;index" json:"organization_id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Classroom) TableName() string {
	return "classroom"
}
