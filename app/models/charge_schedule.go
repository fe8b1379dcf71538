package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChargeScheduleTypeBeforeDue = "before_due"
	ChargeScheduleTypeOnDue     = "on_due"
	ChargeScheduleTypeAfterDue  = "after_due"
)

const (
	ScheduleStatusPending = "pending"
	ScheduleStatusSent    = "sent"
	ScheduleStatusFailed  = "failed"
)

// ChargeSchedule is one planned billing reminder for a customer, anchored to
// a due date by a signed day offset. Rows are created by the CRUD side when a
// subscribed item or charge is set up and consumed exactly once by the batch
// driver.
type ChargeSchedule struct {
	ID               string     `gorm:"type:char(36);primaryKey" json:"id"`
	TenantID         string     `gorm:"type:char(36);not null;index" json:"tenant_id"`
	CustomerID       string     `gorm:"type:char(36);not null;index" json:"customer_id"`
	SubscribedItemID *string    `gorm:"type:char(36);default:null" json:"subscribed_item_id,omitempty"`
	TemplateID       *string    `gorm:"type:char(36);default:null" json:"template_id,omitempty"`
	Type             string     `gorm:"type:varchar(16);not null" json:"type" validate:"oneof=before_due on_due after_due"`
	DayOffset        int        `gorm:"not null;default:0" json:"day_offset"`
	Status           string     `gorm:"type:varchar(16);not null;default:'pending';index:idx_charge_schedules_status_due,priority:1" json:"status" validate:"oneof=pending sent failed"`
	ScheduledFor     time.Time  `gorm:"index:idx_charge_schedules_status_due,priority:2" json:"scheduled_for"`
	SentAt           *time.Time `gorm:"type:timestamp;default:null" json:"sent_at,omitempty"`
	ErrorMessage     string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *ChargeSchedule) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
