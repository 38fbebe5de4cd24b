package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	ClaimStatusSubmitted   = "SUBMITTED"
	ClaimStatusUnderReview = "UNDER_REVIEW"
	ClaimStatusApproved    = "APPROVED"
	ClaimStatusDenied      = "DENIED"
	ClaimStatusPaid        = "PAID"
)

type Claim struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organizationId"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	PolicyID       uuid.UUID `gorm:"type:uuid;not null;index" json:"policyId"`
	ClaimNumber    string    `gorm:"uniqueIndex;not null;column:claim_number" json:"claimNumber"`
	Status         string    `gorm:"not null;default:SUBMITTED;index" json:"status"`
	ClaimAmount    float64   `gorm:"not null;column:claim_amount" json:"claimAmount"`
	ApprovedAmount *float64  `gorm:"column:approved_amount" json:"approvedAmount,omitempty"`
	DenialReason   *string   `gorm:"column:denial_reason" json:"denialReason,omitempty"`
	IncidentDate   time.Time `gorm:"not null;column:incident_date" json:"incidentDate"`
	Description    string    `gorm:"not null;column:description" json:"description"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null" json:"updatedAt"`
}

func (Claim) TableName() string {
	return "claim"
}

func IsValidClaimStatus(s string) bool {
	switch s {
	case ClaimStatusSubmitted, ClaimStatusUnderReview, ClaimStatusApproved, ClaimStatusDenied, ClaimStatusPaid:
		return true
	}
	return false
}
