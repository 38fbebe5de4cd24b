package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	QuoteStatusActive    = "ACTIVE"
	QuoteStatusExpired   = "EXPIRED"
	QuoteStatusConverted = "CONVERTED"
)

type Quote struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organizationId"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	QuoteNumber    string    `gorm:"uniqueIndex;not null;column:quote_number" json:"quoteNumber"`
	Type           string    `gorm:"not null;column:type" json:"type"`
	Status         string    `gorm:"not null;default:ACTIVE;index" json:"status"`
	CoverageAmount float64   `gorm:"not null;column:coverage_amount" json:"coverageAmount"`
	Premium        float64   `gorm:"not null" json:"premium"`
	ExpiresAt      time.Time `gorm:"not null;column:expires_at" json:"expiresAt"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null" json:"updatedAt"`
}

func (Quote) TableName() string {
	return "quote"
}
