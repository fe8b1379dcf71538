package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TenantID      string    `gorm:"type:char(36);not null;index" json:"tenant_id"`
	Type          string    `gorm:"type:varchar(50)" json:"type" validate:"oneof=payment charge system"`
	Content       string    `gorm:"type:text" json:"content"`
	IsRead        bool      `gorm:"default:false" json:"is_read"`
	ReferenceKind string    `gorm:"type:varchar(32)" json:"reference_kind"`
	ReferenceID   string    `gorm:"type:char(36)" json:"reference_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (n *Notification) Validate() error {
	v := validator.New()

	return v.Struct(n)
}

// MarkAsRead marks a notification as read.
func (n *Notification) MarkAsRead(db *gorm.DB) error {
	n.IsRead = true
	return db.Model(n).Update("is_read", true).Error
}

// CreateNotification inserts a notification row for a tenant.
func CreateNotification(db *gorm.DB, tenantID, notificationType, content, referenceKind, referenceID string) error {
	notification := Notification{
		TenantID:      tenantID,
		Type:          notificationType,
		Content:       content,
		ReferenceKind: referenceKind,
		ReferenceID:   referenceID,
		IsRead:        false,
	}
	if err := notification.Validate(); err != nil {
		return err
	}

	return db.Create(&notification).Error
}
