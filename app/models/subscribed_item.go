package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscribedItemStatusPending   = "pending"
	SubscribedItemStatusActive    = "active"
	SubscribedItemStatusCancelled = "cancelled"
)

// SubscribedItem is a recurring product a customer signed up for. Dates stay
// NULL until the first payment activates the item.
type SubscribedItem struct {
	ID          string     `gorm:"type:char(36);primaryKey" json:"id"`
	CustomerID  string     `gorm:"type:char(36);not null;index" json:"customer_id"`
	Customer    Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	ProductName string     `gorm:"type:varchar(255);not null" json:"product_name"`
	Price       float64    `gorm:"type:decimal(10,2);not null" json:"price" validate:"gte=0"`
	Status      string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status" validate:"oneof=pending active cancelled"`
	StartsAt    *time.Time `gorm:"type:timestamp;default:null" json:"starts_at,omitempty"`
	ExpiresAt   *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *SubscribedItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
