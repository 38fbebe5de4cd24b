package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	PolicyTypeAuto     = "AUTO"
	PolicyTypeHome     = "HOME"
	PolicyTypeLife     = "LIFE"
	PolicyTypeHealth   = "HEALTH"
	PolicyTypeBusiness = "BUSINESS"
)

const (
	PolicyStatusPending   = "PENDING"
	PolicyStatusActive    = "ACTIVE"
	PolicyStatusInactive  = "INACTIVE"
	PolicyStatusCancelled = "CANCELLED"
	PolicyStatusExpired   = "EXPIRED"
)

type Policy struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"organizationId"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	CustomerID     *uuid.UUID `gorm:"type:uuid;index" json:"customerId,omitempty"`
	PolicyNumber   string     `gorm:"uniqueIndex;not null;column:policy_number" json:"policyNumber"`
	Type           string     `gorm:"not null;column:type" json:"type"`
	Status         string     `gorm:"not null;default:PENDING;index" json:"status"`
	Premium        float64    `gorm:"not null" json:"premium"`
	CoverageAmount float64    `gorm:"not null;column:coverage_amount" json:"coverageAmount"`
	StartDate      time.Time  `gorm:"column:start_date" json:"startDate"`
	EndDate        time.Time  `gorm:"column:end_date" json:"endDate"`
	CreatedAt      time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updatedAt"`
}

func (Policy) TableName() string {
	return "policy"
}

func IsValidPolicyType(t string) bool {
	switch t {
	case PolicyTypeAuto, PolicyTypeHome, PolicyTypeLife, PolicyTypeHealth, PolicyTypeBusiness:
		return true
	}
	return false
}

func IsValidPolicyStatus(s string) bool {
	switch s {
	case PolicyStatusPending, PolicyStatusActive, PolicyStatusInactive, PolicyStatusCancelled, PolicyStatusExpired:
		return true
	}
	return false
}
