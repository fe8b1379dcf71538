package dispatch

import (
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/BillFox/app/models"
)

// Repository bundles the schedule scanning queries, the terminal status
// writes and the read-only collaborator lookups the dispatch engine uses.
type Repository interface {
	// Scanner: all pending items whose timestamp passed the cutoff.
	DueChargeSchedules(now time.Time) ([]models.ChargeSchedule, error)
	DueScheduledMessages(now time.Time) ([]models.ScheduledMessage, error)

	MarkChargeScheduleSent(id string, at time.Time) error
	MarkChargeScheduleFailed(id, reason string) error
	MarkScheduledMessageSent(id string, at time.Time) error
	MarkScheduledMessageFailed(id, reason string) error

	GetCustomer(id string) (*models.Customer, error)
	GetTemplate(id string) (*models.MessageTemplate, error)
	GetTenant(id string) (*models.Tenant, error)
	GetSubscribedItem(id string) (*models.SubscribedItem, error)
	GetMessengerCredential(tenantID string) (*models.MessengerCredential, error)
	GetTenantSetting(tenantID, key, def string) (string, error)
	IsChargeAutomationEnabled(tenantID string) (bool, error)

	CreateMessageLog(row *models.MessageLog) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a dispatch repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) DueChargeSchedules(now time.Time) ([]models.ChargeSchedule, error) {
	var out []models.ChargeSchedule
	err := r.db.
		Where("status = ? AND scheduled_for <= ?", models.ScheduleStatusPending, now).
		Find(&out).Error
	return out, err
}

func (r *gormRepository) DueScheduledMessages(now time.Time) ([]models.ScheduledMessage, error) {
	var out []models.ScheduledMessage
	err := r.db.
		Where("status = ? AND scheduled_at <= ?", models.ScheduleStatusPending, now).
		Find(&out).Error
	return out, err
}

func (r *gormRepository) MarkChargeScheduleSent(id string, at time.Time) error {
	return r.db.Model(&models.ChargeSchedule{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        models.ScheduleStatusSent,
		"sent_at":       at,
		"error_message": "",
	}).Error
}

func (r *gormRepository) MarkChargeScheduleFailed(id, reason string) error {
	return r.db.Model(&models.ChargeSchedule{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        models.ScheduleStatusFailed,
		"error_message": reason,
	}).Error
}

func (r *gormRepository) MarkScheduledMessageSent(id string, at time.Time) error {
	return r.db.Model(&models.ScheduledMessage{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        models.ScheduleStatusSent,
		"sent_at":       at,
		"error_message": "",
	}).Error
}

func (r *gormRepository) MarkScheduledMessageFailed(id, reason string) error {
	return r.db.Model(&models.ScheduledMessage{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        models.ScheduleStatusFailed,
		"error_message": reason,
	}).Error
}

func (r *gormRepository) GetCustomer(id string) (*models.Customer, error) {
	var c models.Customer
	if err := r.db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) GetTemplate(id string) (*models.MessageTemplate, error) {
	var t models.MessageTemplate
	if err := r.db.Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) GetTenant(id string) (*models.Tenant, error) {
	var t models.Tenant
	if err := r.db.Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) GetSubscribedItem(id string) (*models.SubscribedItem, error) {
	var s models.SubscribedItem
	if err := r.db.Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) GetMessengerCredential(tenantID string) (*models.MessengerCredential, error) {
	var cred models.MessengerCredential
	if err := r.db.Where("tenant_id = ?", tenantID).First(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *gormRepository) GetTenantSetting(tenantID, key, def string) (string, error) {
	return models.GetTenantSetting(r.db, tenantID, key, def)
}

func (r *gormRepository) IsChargeAutomationEnabled(tenantID string) (bool, error) {
	return models.IsChargeAutomationEnabled(r.db, tenantID)
}

func (r *gormRepository) CreateMessageLog(row *models.MessageLog) error {
	return r.db.Create(row).Error
}
