package reconcile

import (
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/BillFox/app/models"
)

// Repository provides the DB operations the resolver and applier need. All
// state transitions are conditional updates guarded on the current status so
// concurrent duplicate deliveries cannot double-apply.
type Repository interface {
	FindChargeByID(id string) (*models.Charge, error)
	FindSubscribedItemByID(id string) (*models.SubscribedItem, error)
	FindResellerSubscriptionByID(id string) (*models.ResellerSubscription, error)
	FindPaymentRecordByID(id string) (*models.PaymentRecord, error)
	FindPlanSubscriptionByID(id string) (*models.PlanSubscription, error)

	MarkChargePaid(id string, paidAt time.Time) (bool, error)
	ActivateSubscribedItem(id string, startsAt, expiresAt time.Time) (bool, error)
	ActivateResellerSubscription(id string, startsAt, endsAt time.Time) (bool, error)
	MarkPaymentRecordPaid(id string, paidAt time.Time) (bool, error)
	MarkLinkedPaymentRecordsPaid(subscriptionID string, paidAt time.Time) (int64, error)
	ActivateResellerSubscriptionStatus(id string) (bool, error)
	ActivatePlanSubscription(id string, startDate, endDate, nextBillingDate time.Time) (bool, error)

	CreateNotification(tenantID, notificationType, content, referenceKind, referenceID string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a reconcile repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindChargeByID(id string) (*models.Charge, error) {
	var c models.Charge
	if err := r.db.Preload("Customer").Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) FindSubscribedItemByID(id string) (*models.SubscribedItem, error) {
	var s models.SubscribedItem
	if err := r.db.Preload("Customer").Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) FindResellerSubscriptionByID(id string) (*models.ResellerSubscription, error) {
	var s models.ResellerSubscription
	if err := r.db.Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) FindPaymentRecordByID(id string) (*models.PaymentRecord, error) {
	var p models.PaymentRecord
	if err := r.db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) FindPlanSubscriptionByID(id string) (*models.PlanSubscription, error) {
	var p models.PlanSubscription
	if err := r.db.Preload("Plan").Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) MarkChargePaid(id string, paidAt time.Time) (bool, error) {
	tx := r.db.Model(&models.Charge{}).
		Where("id = ? AND status <> ?", id, models.ChargeStatusPaid).
		Updates(map[string]interface{}{
			"status":  models.ChargeStatusPaid,
			"paid_at": paidAt,
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *gormRepository) ActivateSubscribedItem(id string, startsAt, expiresAt time.Time) (bool, error) {
	tx := r.db.Model(&models.SubscribedItem{}).
		Where("id = ? AND status = ?", id, models.SubscribedItemStatusPending).
		Updates(map[string]interface{}{
			"status":     models.SubscribedItemStatusActive,
			"starts_at":  startsAt,
			"expires_at": expiresAt,
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *gormRepository) ActivateResellerSubscription(id string, startsAt, endsAt time.Time) (bool, error) {
	tx := r.db.Model(&models.ResellerSubscription{}).
		Where("id = ? AND status = ?", id, models.ResellerSubscriptionStatusPending).
		Updates(map[string]interface{}{
			"status":    models.ResellerSubscriptionStatusActive,
			"starts_at": startsAt,
			"ends_at":   endsAt,
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *gormRepository) MarkPaymentRecordPaid(id string, paidAt time.Time) (bool, error) {
	tx := r.db.Model(&models.PaymentRecord{}).
		Where("id = ? AND status = ?", id, models.PaymentRecordStatusPending).
		Updates(map[string]interface{}{
			"status":  models.PaymentRecordStatusPaid,
			"paid_at": paidAt,
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *gormRepository) MarkLinkedPaymentRecordsPaid(subscriptionID string, paidAt time.Time) (int64, error) {
	tx := r.db.Model(&models.PaymentRecord{}).
		Where("subscription_id = ? AND status = ?", subscriptionID, models.PaymentRecordStatusPending).
		Updates(map[string]interface{}{
			"status":  models.PaymentRecordStatusPaid,
			"paid_at": paidAt,
		})
	return tx.RowsAffected, tx.Error
}

func (r *gormRepository) ActivateResellerSubscriptionStatus(id string) (bool, error) {
	// Status only. A payment record paying for an existing subscription must
	// not recompute its period.
	tx := r.db.Model(&models.ResellerSubscription{}).
		Where("id = ? AND status = ?", id, models.ResellerSubscriptionStatusPending).
		Update("status", models.ResellerSubscriptionStatusActive)
	return tx.RowsAffected > 0, tx.Error
}

func (r *gormRepository) ActivatePlanSubscription(id string, startDate, endDate, nextBillingDate time.Time) (bool, error) {
	tx := r.db.Model(&models.PlanSubscription{}).
		Where("id = ? AND status = ?", id, models.PlanSubscriptionStatusPending).
		Updates(map[string]interface{}{
			"status":            models.PlanSubscriptionStatusActive,
			"start_date":        startDate,
			"end_date":          endDate,
			"next_billing_date": nextBillingDate,
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *gormRepository) CreateNotification(tenantID, notificationType, content, referenceKind, referenceID string) error {
	return models.CreateNotification(r.db, tenantID, notificationType, content, referenceKind, referenceID)
}
