package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/BillFox/app/models"
)

var paidAt = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestApplyCharge(t *testing.T) {
	repo := newFakeRepository()
	repo.charges[chargeID] = &models.Charge{ID: chargeID, Status: models.ChargeStatusPending}
	svc := NewService(repo)
	entity := &ResolvedEntity{Kind: KindCharge, Charge: repo.charges[chargeID]}

	outcome, err := svc.Apply(context.Background(), entity, 59.9, paidAt)

	assert.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	assert.Equal(t, models.ChargeStatusPaid, repo.charges[chargeID].Status)
	assert.Equal(t, paidAt, *repo.charges[chargeID].PaidAt)
}

func TestApplyCharge_DuplicateDeliveryIsNoOp(t *testing.T) {
	repo := newFakeRepository()
	repo.charges[chargeID] = &models.Charge{ID: chargeID, Status: models.ChargeStatusPending}
	svc := NewService(repo)
	entity := &ResolvedEntity{Kind: KindCharge, Charge: repo.charges[chargeID]}

	outcome, err := svc.Apply(context.Background(), entity, 59.9, paidAt)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	outcome, err = svc.Apply(context.Background(), entity, 59.9, paidAt)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeNoOp, outcome)
}

func TestApplySubscribedItem_ExtendsThirtyDays(t *testing.T) {
	repo := newFakeRepository()
	repo.items[itemID] = &models.SubscribedItem{ID: itemID, Status: models.SubscribedItemStatusPending}
	svc := NewService(repo)
	entity := &ResolvedEntity{Kind: KindSubscribedItem, Item: repo.items[itemID]}

	outcome, err := svc.Apply(context.Background(), entity, 29.9, paidAt)

	assert.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	item := repo.items[itemID]
	assert.Equal(t, models.SubscribedItemStatusActive, item.Status)
	assert.Equal(t, paidAt, *item.StartsAt)
	assert.Equal(t, paidAt.AddDate(0, 0, 30), *item.ExpiresAt)
}

func TestApplyResellerSubscription_OneMonthAndLinkedRecords(t *testing.T) {
	subID := "9d0b1c2e-3f4a-4b5c-8d6e-7f8091a2b3c4"
	recordID := "9d0b1c2e-3f4a-4b5c-8d6e-7f8091a2b3c5"
	repo := newFakeRepository()
	repo.resellerSubs[subID] = &models.ResellerSubscription{ID: subID, Status: models.ResellerSubscriptionStatusPending}
	repo.records[recordID] = &models.PaymentRecord{
		ID:             recordID,
		SubscriptionID: &subID,
		Status:         models.PaymentRecordStatusPending,
	}
	svc := NewService(repo)
	entity := &ResolvedEntity{Kind: KindResellerSubscription, ResellerSub: repo.resellerSubs[subID]}

	outcome, err := svc.Apply(context.Background(), entity, 99.0, paidAt)

	assert.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	sub := repo.resellerSubs[subID]
	assert.Equal(t, models.ResellerSubscriptionStatusActive, sub.Status)
	assert.Equal(t, paidAt, *sub.StartsAt)
	assert.Equal(t, paidAt.AddDate(0, 1, 0), *sub.EndsAt)
	// The linked record settles in the same pass.
	assert.Equal(t, models.PaymentRecordStatusPaid, repo.records[recordID].Status)
}

func TestApplyPaymentRecord_ActivatesLinkedSubscriptionStatusOnly(t *testing.T) {
	subID := "9d0b1c2e-3f4a-4b5c-8d6e-7f8091a2b3c4"
	recordID := "9d0b1c2e-3f4a-4b5c-8d6e-7f8091a2b3c5"
	repo := newFakeRepository()
	repo.resellerSubs[subID] = &models.ResellerSubscription{ID: subID, Status: models.ResellerSubscriptionStatusPending}
	repo.records[recordID] = &models.PaymentRecord{
		ID:             recordID,
		SubscriptionID: &subID,
		Status:         models.PaymentRecordStatusPending,
	}
	svc := NewService(repo)
	entity := &ResolvedEntity{Kind: KindPaymentRecord, PaymentRecord: repo.records[recordID]}

	outcome, err := svc.Apply(context.Background(), entity, 99.0, paidAt)

	assert.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	assert.Equal(t, models.PaymentRecordStatusPaid, repo.records[recordID].Status)
	sub := repo.resellerSubs[subID]
	assert.Equal(t, models.ResellerSubscriptionStatusActive, sub.Status)
	// Period dates stay untouched.
	assert.Nil(t, sub.StartsAt)
	assert.Nil(t, sub.EndsAt)
}

func TestApplyPlanSubscription_UsesPlanDuration(t *testing.T) {
	repo := newFakeRepository()
	repo.planSubs[planSubID] = &models.PlanSubscription{
		ID:     planSubID,
		Status: models.PlanSubscriptionStatusPending,
		Plan:   models.Plan{ID: "plan-1", DurationDays: 45},
	}
	svc := NewService(repo)
	entity := &ResolvedEntity{Kind: KindPlanSubscription, PlanSub: repo.planSubs[planSubID]}

	outcome, err := svc.Apply(context.Background(), entity, 149.0, paidAt)

	assert.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	sub := repo.planSubs[planSubID]
	assert.Equal(t, models.PlanSubscriptionStatusActive, sub.Status)
	assert.Equal(t, paidAt, *sub.StartDate)
	assert.Equal(t, paidAt.AddDate(0, 0, 45), *sub.EndDate)
	assert.Equal(t, *sub.EndDate, *sub.NextBillingDate)
}

func TestApplyPlanSubscription_DefaultDuration(t *testing.T) {
	repo := newFakeRepository()
	repo.planSubs[planSubID] = &models.PlanSubscription{
		ID:     planSubID,
		Status: models.PlanSubscriptionStatusPending,
		Plan:   models.Plan{ID: "plan-1"},
	}
	svc := NewService(repo)
	entity := &ResolvedEntity{Kind: KindPlanSubscription, PlanSub: repo.planSubs[planSubID]}

	outcome, err := svc.Apply(context.Background(), entity, 149.0, paidAt)

	assert.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	assert.Equal(t, paidAt.AddDate(0, 0, 30), *repo.planSubs[planSubID].EndDate)
}

func TestApply_NilEntity(t *testing.T) {
	svc := NewService(newFakeRepository())
	_, err := svc.Apply(context.Background(), nil, 1, paidAt)
	assert.Error(t, err)
}
