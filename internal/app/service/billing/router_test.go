package billing

import (
	"testing"

	"github.com/Youngger9765/duotopia-sub006/internal/models"
	"github.com/Youngger9765/duotopia-sub006/pkg/types"

	"github.com/stretchr/testify/assert"
)

func TestResolveBillingTarget(t *testing.T) {
	orgID := "org-1"
	empty := ""

	tests := []struct {
		name      string
		classroom *models.Classroom
		want      types.BillingTarget
	}{
		{
			name:      "organization classroom routes to the point pool",
			classroom: &models.Classroom{TeacherID: "t-1", OrganizationID: &orgID},
			want:      types.ForOrganization("org-1"),
		},
		{
			name:      "personal classroom routes to the teacher quota",
			classroom: &models.Classroom{TeacherID: "t-1"},
			want:      types.ForTeacher("t-1"),
		},
		{
			name:      "blank organization id counts as personal",
			classroom: &models.Classroom{TeacherID: "t-2", OrganizationID: &empty},
			want:      types.ForTeacher("t-2"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveBillingTarget(tt.classroom))
		})
	}
}
