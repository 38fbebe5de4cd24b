package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAgent    = "agent"
	RoleAdjuster = "adjuster"
	RoleAdmin    = "admin"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organizationId"`
	Email          string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password       string    `gorm:"not null;column:password" json:"-"`
	FirstName      string    `gorm:"not null;column:first_name" json:"firstName"`
	LastName       string    `gorm:"not null;column:last_name" json:"lastName"`
	Role           string    `gorm:"not null;column:role" json:"role"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string {
	return "user"
}
