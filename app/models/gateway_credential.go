package models

import "time"

// GatewayCredential holds a tenant's bearer token for the payment gateway.
// One row per tenant that enabled gateway payments. Read-only here.
type GatewayCredential struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TenantID    string    `gorm:"type:char(36);not null;uniqueIndex" json:"tenant_id"`
	AccessToken string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// MessengerCredential holds a tenant's messaging-gateway instance and key.
type MessengerCredential struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TenantID   string    `gorm:"type:char(36);not null;uniqueIndex" json:"tenant_id"`
	InstanceID string    `gorm:"type:varchar(191);not null" json:"instance_id"`
	APIKey     string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
