package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ResellerSubscriptionStatusPending   = "pending"
	ResellerSubscriptionStatusActive    = "active"
	ResellerSubscriptionStatusCancelled = "cancelled"
)

// ResellerSubscription is a cross-tenant subscription: one tenant (the buyer)
// subscribes to a service sold by another tenant (the seller).
type ResellerSubscription struct {
	ID            string     `gorm:"type:char(36);primaryKey" json:"id"`
	BuyerTenantID  string     `gorm:"type:char(36);not null;index" json:"buyer_tenant_id"`
	SellerTenantID string     `gorm:"type:char(36);not null;index" json:"seller_tenant_id"`
	Price         float64    `gorm:"type:decimal(10,2);not null" json:"price" validate:"gte=0"`
	Status        string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status" validate:"oneof=pending active cancelled"`
	StartsAt      *time.Time `gorm:"type:timestamp;default:null" json:"starts_at,omitempty"`
	EndsAt        *time.Time `gorm:"type:timestamp;default:null" json:"ends_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *ResellerSubscription) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
