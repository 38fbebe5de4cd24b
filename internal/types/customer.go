package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	CustomerStatusActive   = "ACTIVE"
	CustomerStatusInactive = "INACTIVE"
)

type Customer struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organizationId"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	FirstName      string    `gorm:"not null;column:first_name" json:"firstName"`
	LastName       string    `gorm:"not null;column:last_name" json:"lastName"`
	Email          string    `gorm:"not null;column:email" json:"email"`
	Phone          string    `gorm:"column:phone" json:"phone"`
	Status         string    `gorm:"not null;default:ACTIVE;index" json:"status"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null" json:"updatedAt"`
}

func (Customer) TableName() string {
	return "customer"
}
