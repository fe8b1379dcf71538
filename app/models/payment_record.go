package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentRecordStatusPending = "pending"
	PaymentRecordStatusPaid    = "paid"
)

// PaymentRecord is a generic payment row between two tenants. It may carry a
// reference to the reseller subscription it pays for.
type PaymentRecord struct {
	ID             string     `gorm:"type:char(36);primaryKey" json:"id"`
	BuyerTenantID  string     `gorm:"type:char(36);not null;index" json:"buyer_tenant_id"`
	SellerTenantID string     `gorm:"type:char(36);not null;index" json:"seller_tenant_id"`
	SubscriptionID *string    `gorm:"type:char(36);default:null;index" json:"subscription_id,omitempty"`
	Amount         float64    `gorm:"type:decimal(10,2);not null" json:"amount" validate:"gte=0"`
	Status         string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status" validate:"oneof=pending paid"`
	PaidAt         *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *PaymentRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
