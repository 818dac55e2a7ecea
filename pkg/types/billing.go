package types

// FeatureType identifies a billable AI feature.
type FeatureType string

const (
	FeatureTypeSpeechAssessment FeatureType = "speech_assessment"
	FeatureTypeTTS              FeatureType = "tts"
	FeatureTypeTextCorrection   FeatureType = "text_correction"
	FeatureTypeImageCorrection  FeatureType = "image_correction"

	// FeatureTypeTopUp marks organization point grants in the points log.
	FeatureTypeTopUp FeatureType = "top_up"
)

type PeriodStatus string

const (
	PeriodStatusActive    PeriodStatus = "active"
	PeriodStatusExpired   PeriodStatus = "expired"
	PeriodStatusCancelled PeriodStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
)

// PricingMethod records how the first-subscription amount was derived.
type PricingMethod string

const (
	PricingMethodProrated    PricingMethod = "prorated"
	PricingMethodGracePeriod PricingMethod = "grace_period"
)

type BillingTargetKind string

const (
	BillingTargetTeacher      BillingTargetKind = "teacher"
	BillingTargetOrganization BillingTargetKind = "organization"
)

// BillingTarget is the ledger a billable event charges against. It is
// resolved once per event from classroom ownership and passed down; call
// sites must not re-derive it.
type BillingTarget struct {
	Kind           BillingTargetKind `json:"kind"`
	TeacherID      string            `json:"teacher_id,omitempty"`
	OrganizationID string            `json:"organization_id,omitempty"`
}

func ForTeacher(teacherID string) BillingTarget {
	return BillingTarget{Kind: BillingTargetTeacher, TeacherID: teacherID}
}

func ForOrganization(organizationID string) BillingTarget {
	return BillingTarget{Kind: BillingTargetOrganization, OrganizationID: organizationID}
}
