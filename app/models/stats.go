package models

import "time"

// TenantStat accumulates per-tenant dispatch and webhook counters. Rows are
// incremented in batches by the metrics flusher, not per event.
type TenantStat struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TenantID         string    `gorm:"type:char(36);not null;uniqueIndex" json:"tenant_id"`
	WebhookProcessed uint64    `gorm:"not null;default:0" json:"webhook_processed"`
	WebhookIgnored   uint64    `gorm:"not null;default:0" json:"webhook_ignored"`
	MessagesSent     uint64    `gorm:"not null;default:0" json:"messages_sent"`
	MessagesFailed   uint64    `gorm:"not null;default:0" json:"messages_failed"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
