package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/BillFox/app/models"
)

// Subscribed items are always extended by a fixed window on payment,
// independent of any catalog-declared interval.
const subscribedItemExtensionDays = 30

// Apply performs the pending->paid/active transition for a resolved entity.
// Every mutation is a conditional update; when the entity already reached the
// target state the call reports OutcomeNoOp and changes nothing, which makes
// duplicate gateway deliveries safe without a distributed lock.
//
// A returned error means the write itself failed and the delivery should be
// retried by the gateway.
func (s *Service) Apply(ctx context.Context, entity *ResolvedEntity, amount float64, paidAt time.Time) (Outcome, error) {
	_ = ctx
	if entity == nil {
		return OutcomeNoOp, errors.New("entity is required")
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	switch entity.Kind {
	case KindCharge:
		return s.applyCharge(entity.Charge, paidAt)
	case KindSubscribedItem:
		return s.applySubscribedItem(entity.Item, paidAt)
	case KindResellerSubscription:
		return s.applyResellerSubscription(entity.ResellerSub, paidAt)
	case KindPaymentRecord:
		return s.applyPaymentRecord(entity.PaymentRecord, paidAt)
	case KindPlanSubscription:
		return s.applyPlanSubscription(entity.PlanSub, paidAt)
	default:
		return OutcomeNoOp, errors.New("unknown entity kind")
	}
}

func (s *Service) applyCharge(c *models.Charge, paidAt time.Time) (Outcome, error) {
	applied, err := s.repo.MarkChargePaid(c.ID, paidAt)
	if err != nil {
		return OutcomeNoOp, err
	}
	if !applied {
		log.Infof("[Reconcile] Charge %s already paid, skipping", c.ID)
		return OutcomeNoOp, nil
	}
	return OutcomeApplied, nil
}

func (s *Service) applySubscribedItem(item *models.SubscribedItem, paidAt time.Time) (Outcome, error) {
	expiresAt := paidAt.AddDate(0, 0, subscribedItemExtensionDays)
	applied, err := s.repo.ActivateSubscribedItem(item.ID, paidAt, expiresAt)
	if err != nil {
		return OutcomeNoOp, err
	}
	if !applied {
		log.Infof("[Reconcile] Subscribed item %s already active, skipping", item.ID)
		return OutcomeNoOp, nil
	}
	return OutcomeApplied, nil
}

func (s *Service) applyResellerSubscription(sub *models.ResellerSubscription, paidAt time.Time) (Outcome, error) {
	endsAt := paidAt.AddDate(0, 1, 0)
	applied, err := s.repo.ActivateResellerSubscription(sub.ID, paidAt, endsAt)
	if err != nil {
		return OutcomeNoOp, err
	}

	// Settle any pending payment record linked to this subscription. The
	// update is itself conditional, so re-running it on duplicates is free.
	if n, err := s.repo.MarkLinkedPaymentRecordsPaid(sub.ID, paidAt); err != nil {
		return OutcomeNoOp, err
	} else if n > 0 {
		log.Infof("[Reconcile] Marked %d linked payment record(s) paid for subscription %s", n, sub.ID)
	}

	if !applied {
		log.Infof("[Reconcile] Reseller subscription %s already active, skipping", sub.ID)
		return OutcomeNoOp, nil
	}
	return OutcomeApplied, nil
}

func (s *Service) applyPaymentRecord(rec *models.PaymentRecord, paidAt time.Time) (Outcome, error) {
	applied, err := s.repo.MarkPaymentRecordPaid(rec.ID, paidAt)
	if err != nil {
		return OutcomeNoOp, err
	}

	// A record paying for a subscription activates it without touching its
	// period dates.
	if rec.SubscriptionID != nil && *rec.SubscriptionID != "" {
		if _, err := s.repo.ActivateResellerSubscriptionStatus(*rec.SubscriptionID); err != nil {
			return OutcomeNoOp, err
		}
	}

	if !applied {
		log.Infof("[Reconcile] Payment record %s already paid, skipping", rec.ID)
		return OutcomeNoOp, nil
	}
	return OutcomeApplied, nil
}

func (s *Service) applyPlanSubscription(sub *models.PlanSubscription, paidAt time.Time) (Outcome, error) {
	days := sub.Plan.DurationDaysOrDefault()
	endDate := paidAt.AddDate(0, 0, days)
	applied, err := s.repo.ActivatePlanSubscription(sub.ID, paidAt, endDate, endDate)
	if err != nil {
		return OutcomeNoOp, err
	}
	if !applied {
		log.Infof("[Reconcile] Plan subscription %s already active, skipping", sub.ID)
		return OutcomeNoOp, nil
	}
	return OutcomeApplied, nil
}
