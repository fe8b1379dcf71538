package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageTemplate is a reusable message body with placeholder tokens.
// Read-only for the dispatch engine.
type MessageTemplate struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	TenantID  string    `gorm:"type:char(36);not null;index" json:"tenant_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Content   string    `gorm:"type:text;not null" json:"content" validate:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *MessageTemplate) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
