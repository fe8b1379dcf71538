package reconcile

import (
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/BillFox/app/models"
)

// fakeRepository is an in-memory Repository. Transitions follow the same
// status guards as the GORM implementation so idempotency behaves the same.
type fakeRepository struct {
	charges       map[string]*models.Charge
	items         map[string]*models.SubscribedItem
	resellerSubs  map[string]*models.ResellerSubscription
	records       map[string]*models.PaymentRecord
	planSubs      map[string]*models.PlanSubscription
	notifications []models.Notification

	probed []EntityKind
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		charges:      map[string]*models.Charge{},
		items:        map[string]*models.SubscribedItem{},
		resellerSubs: map[string]*models.ResellerSubscription{},
		records:      map[string]*models.PaymentRecord{},
		planSubs:     map[string]*models.PlanSubscription{},
	}
}

func (f *fakeRepository) FindChargeByID(id string) (*models.Charge, error) {
	f.probed = append(f.probed, KindCharge)
	if c, ok := f.charges[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindSubscribedItemByID(id string) (*models.SubscribedItem, error) {
	f.probed = append(f.probed, KindSubscribedItem)
	if s, ok := f.items[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindResellerSubscriptionByID(id string) (*models.ResellerSubscription, error) {
	f.probed = append(f.probed, KindResellerSubscription)
	if s, ok := f.resellerSubs[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindPaymentRecordByID(id string) (*models.PaymentRecord, error) {
	f.probed = append(f.probed, KindPaymentRecord)
	if r, ok := f.records[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindPlanSubscriptionByID(id string) (*models.PlanSubscription, error) {
	f.probed = append(f.probed, KindPlanSubscription)
	if s, ok := f.planSubs[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) MarkChargePaid(id string, paidAt time.Time) (bool, error) {
	c, ok := f.charges[id]
	if !ok || c.Status == models.ChargeStatusPaid {
		return false, nil
	}
	c.Status = models.ChargeStatusPaid
	c.PaidAt = &paidAt
	return true, nil
}

func (f *fakeRepository) ActivateSubscribedItem(id string, startsAt, expiresAt time.Time) (bool, error) {
	s, ok := f.items[id]
	if !ok || s.Status != models.SubscribedItemStatusPending {
		return false, nil
	}
	s.Status = models.SubscribedItemStatusActive
	s.StartsAt = &startsAt
	s.ExpiresAt = &expiresAt
	return true, nil
}

func (f *fakeRepository) ActivateResellerSubscription(id string, startsAt, endsAt time.Time) (bool, error) {
	s, ok := f.resellerSubs[id]
	if !ok || s.Status != models.ResellerSubscriptionStatusPending {
		return false, nil
	}
	s.Status = models.ResellerSubscriptionStatusActive
	s.StartsAt = &startsAt
	s.EndsAt = &endsAt
	return true, nil
}

func (f *fakeRepository) MarkPaymentRecordPaid(id string, paidAt time.Time) (bool, error) {
	r, ok := f.records[id]
	if !ok || r.Status != models.PaymentRecordStatusPending {
		return false, nil
	}
	r.Status = models.PaymentRecordStatusPaid
	r.PaidAt = &paidAt
	return true, nil
}

func (f *fakeRepository) MarkLinkedPaymentRecordsPaid(subscriptionID string, paidAt time.Time) (int64, error) {
	var n int64
	for _, r := range f.records {
		if r.SubscriptionID != nil && *r.SubscriptionID == subscriptionID && r.Status == models.PaymentRecordStatusPending {
			r.Status = models.PaymentRecordStatusPaid
			r.PaidAt = &paidAt
			n++
		}
	}
	return n, nil
}

func (f *fakeRepository) ActivateResellerSubscriptionStatus(id string) (bool, error) {
	s, ok := f.resellerSubs[id]
	if !ok || s.Status != models.ResellerSubscriptionStatusPending {
		return false, nil
	}
	s.Status = models.ResellerSubscriptionStatusActive
	return true, nil
}

func (f *fakeRepository) ActivatePlanSubscription(id string, startDate, endDate, nextBillingDate time.Time) (bool, error) {
	s, ok := f.planSubs[id]
	if !ok || s.Status != models.PlanSubscriptionStatusPending {
		return false, nil
	}
	s.Status = models.PlanSubscriptionStatusActive
	s.StartDate = &startDate
	s.EndDate = &endDate
	s.NextBillingDate = &nextBillingDate
	return true, nil
}

func (f *fakeRepository) CreateNotification(tenantID, notificationType, content, referenceKind, referenceID string) error {
	f.notifications = append(f.notifications, models.Notification{
		TenantID:      tenantID,
		Type:          notificationType,
		Content:       content,
		ReferenceKind: referenceKind,
		ReferenceID:   referenceID,
	})
	return nil
}
