package billing

import (
	"github.com/Youngger9765/duotopia-sub006/internal/models"
	"github.com/Youngger9765/duotopia-sub006/pkg/types"
)

// ResolveBillingTarget picks the ledger a billable event charges against:
// classrooms owned by an organization bill the shared point pool, everything
// else bills the teacher's subscription quota. Pure; resolved once per event
// and threaded through, never re-derived mid-transaction.
func ResolveBillingTarget(classroom *models.Classroom) types.BillingTarget {
	if classroom.OrganizationID != nil && *classroom.OrganizationID != "" {
		return types.ForOrganization(*classroom.OrganizationID)
	}
	return types.ForTeacher(classroom.TeacherID)
}
