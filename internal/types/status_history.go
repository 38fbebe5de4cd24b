package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Status history rows are append-only and always written in the same
// transaction as the entity status mutation. They are never updated or
// deleted.

type PolicyStatusHistory struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PolicyID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"policyId"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organizationId"`
	OldStatus      string         `gorm:"not null;column:old_status" json:"oldStatus"`
	NewStatus      string         `gorm:"not null;column:new_status" json:"newStatus"`
	ChangedBy      uuid.UUID      `gorm:"type:uuid;not null;column:changed_by" json:"changedBy"`
	Reason         *string        `gorm:"column:reason" json:"reason,omitempty"`
	Metadata       datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;index" json:"createdAt"`
}

func (PolicyStatusHistory) TableName() string {
	return "policy_status_history"
}

type ClaimStatusHistory struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ClaimID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"claimId"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organizationId"`
	OldStatus      string         `gorm:"not null;column:old_status" json:"oldStatus"`
	NewStatus      string         `gorm:"not null;column:new_status" json:"newStatus"`
	ChangedBy      uuid.UUID      `gorm:"type:uuid;not null;column:changed_by" json:"changedBy"`
	Reason         *string        `gorm:"column:reason" json:"reason,omitempty"`
	Metadata       datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;index" json:"createdAt"`
}

func (ClaimStatusHistory) TableName() string {
	return "claim_status_history"
}
