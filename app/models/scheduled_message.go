package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduledMessage is an ad-hoc outbound message planned for a point in time.
// Content, when set, overrides the referenced template.
type ScheduledMessage struct {
	ID           string     `gorm:"type:char(36);primaryKey" json:"id"`
	TenantID     string     `gorm:"type:char(36);not null;index" json:"tenant_id"`
	CustomerID   string     `gorm:"type:char(36);not null;index" json:"customer_id"`
	TemplateID   *string    `gorm:"type:char(36);default:null" json:"template_id,omitempty"`
	Content      string     `gorm:"type:text" json:"content,omitempty"`
	Status       string     `gorm:"type:varchar(16);not null;default:'pending';index:idx_scheduled_messages_status_at,priority:1" json:"status" validate:"oneof=pending sent failed"`
	ScheduledAt  time.Time  `gorm:"index:idx_scheduled_messages_status_at,priority:2" json:"scheduled_at"`
	SentAt       *time.Time `gorm:"type:timestamp;default:null" json:"sent_at,omitempty"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *ScheduledMessage) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
