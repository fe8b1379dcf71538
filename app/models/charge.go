package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChargeStatusPending = "pending"
	ChargeStatusPaid    = "paid"
	ChargeStatusOverdue = "overdue"
)

// Charge is a one-off charge issued to a customer (ad-hoc billing, not bound
// to a subscription).
type Charge struct {
	ID          string     `gorm:"type:char(36);primaryKey" json:"id"`
	TenantID    string     `gorm:"type:char(36);not null;index" json:"tenant_id"`
	CustomerID  string     `gorm:"type:char(36);not null;index" json:"customer_id"`
	Customer    Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Description string     `gorm:"type:varchar(255)" json:"description"`
	Amount      float64    `gorm:"type:decimal(10,2);not null" json:"amount" validate:"gte=0"`
	Status      string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status" validate:"oneof=pending paid overdue"`
	DueDate     time.Time  `json:"due_date"`
	PaidAt      *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Charge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (c *Charge) Validate() error {
	v := validator.New()

	return v.Struct(c)
}
