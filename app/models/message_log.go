package models

import "time"

// Message log source values.
const (
	MessageSourceChargeSchedule   = "charge_schedule"
	MessageSourceScheduledMessage = "scheduled_message"
	MessageSourcePaymentConfirmed = "payment_confirmation"
)

// MessageLog is an audit row for every outbound message attempt, successful
// or not. Operators use it to trace what a customer actually received.
type MessageLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TenantID      string    `gorm:"type:char(36);not null;index" json:"tenant_id"`
	CustomerID    string    `gorm:"type:char(36);index" json:"customer_id"`
	Phone         string    `gorm:"type:varchar(32)" json:"phone"`
	Content       string    `gorm:"type:text" json:"content"`
	Source        string    `gorm:"type:varchar(32);not null" json:"source"`
	ReferenceID   string    `gorm:"type:char(36)" json:"reference_id"`
	Status        string    `gorm:"type:varchar(16);not null" json:"status"`
	ProviderError string    `gorm:"type:text" json:"provider_error,omitempty"`
	SentAt        time.Time `json:"sent_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
