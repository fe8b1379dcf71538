package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PlanSubscriptionStatusPending = "pending"
	PlanSubscriptionStatusActive  = "active"
)

// DefaultPlanDurationDays is applied when a plan does not declare a duration.
const DefaultPlanDurationDays = 30

// Plan is a catalog entry describing a sellable plan. Read-only for the
// reconciliation core.
type Plan struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Price        float64   `gorm:"type:decimal(10,2);not null" json:"price" validate:"gte=0"`
	DurationDays int       `gorm:"not null;default:30" json:"duration_days"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PlanSubscription binds a tenant to a catalog plan for a bounded period.
type PlanSubscription struct {
	ID              string     `gorm:"type:char(36);primaryKey" json:"id"`
	TenantID        string     `gorm:"type:char(36);not null;index" json:"tenant_id"`
	PlanID          string     `gorm:"type:char(36);not null;index" json:"plan_id"`
	Plan            Plan       `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Status          string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status" validate:"oneof=pending active"`
	StartDate       *time.Time `gorm:"type:timestamp;default:null" json:"start_date,omitempty"`
	EndDate         *time.Time `gorm:"type:timestamp;default:null" json:"end_date,omitempty"`
	NextBillingDate *time.Time `gorm:"type:timestamp;default:null" json:"next_billing_date,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *PlanSubscription) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// DurationDaysOrDefault returns the plan duration, falling back when the
// catalog row carries no usable value.
func (p *Plan) DurationDaysOrDefault() int {
	if p.DurationDays <= 0 {
		return DefaultPlanDurationDays
	}
	return p.DurationDays
}
