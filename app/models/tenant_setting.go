package models

import (
	"errors"

	"gorm.io/gorm"
)

// Well-known tenant setting keys read by the dispatch engine.
const (
	TenantSettingChargeAutomation = "charge_automation_enabled"
	TenantSettingDisplayName      = "display_name"
	TenantSettingPaymentLinkBase  = "payment_link_base"
)

// TenantSetting is a per-tenant key/value configuration row.
type TenantSetting struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	TenantID string `gorm:"type:char(36);not null;index:ux_tenant_settings_tenant_key,unique,priority:1" json:"tenant_id"`
	Key      string `gorm:"column:setting_key;size:255;not null;index:ux_tenant_settings_tenant_key,unique,priority:2" json:"key" validate:"required,min=1,max=255"`
	Value    string `gorm:"type:text" json:"value"`
}

// GetTenantSetting returns the value for a tenant key, or def when the row
// does not exist.
func GetTenantSetting(db *gorm.DB, tenantID, key, def string) (string, error) {
	var s TenantSetting
	err := db.Where("tenant_id = ? AND setting_key = ?", tenantID, key).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return def, nil
		}
		return def, err
	}
	return s.Value, nil
}

// IsChargeAutomationEnabled reports whether the tenant opted into automated
// charge reminders. Missing rows default to enabled so existing tenants keep
// receiving reminders.
func IsChargeAutomationEnabled(db *gorm.DB, tenantID string) (bool, error) {
	v, err := GetTenantSetting(db, tenantID, TenantSettingChargeAutomation, "true")
	if err != nil {
		return false, err
	}
	return v == "true" || v == "1", nil
}
