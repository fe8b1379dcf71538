package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is the billing contact a tenant charges and messages. Read-only
// for the reconciliation core; CRUD lives elsewhere.
type Customer struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	TenantID  string    `gorm:"type:char(36);not null;index" json:"tenant_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Phone     string    `gorm:"type:varchar(32)" json:"phone"`
	Email     string    `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (c *Customer) Validate() error {
	v := validator.New()

	return v.Struct(c)
}

// FirstName returns the leading name token for informal salutations.
func (c *Customer) FirstName() string {
	for i := 0; i < len(c.Name); i++ {
		if c.Name[i] == ' ' {
			return c.Name[:i]
		}
	}
	return c.Name
}
