package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resolve determines which record a candidate id points to by probing each
// entity kind in the fixed priority order, short-circuiting on the first hit.
// A kind hint (from the external reference) only promotes that kind to the
// front of the probe order; the probe still has to find the row.
//
// Returns (nil, nil) when the id matches nothing or is not a well-formed
// identifier. Unresolved is an expected outcome of speculative lookups, not
// an error.
func (s *Service) Resolve(ctx context.Context, candidateID, kindHint string) (*ResolvedEntity, error) {
	_ = ctx
	if _, err := uuid.Parse(candidateID); err != nil {
		return nil, nil
	}

	for _, kind := range probeOrderWithHint(normalizeKindHint(kindHint)) {
		entity, err := s.probe(kind, candidateID)
		if err != nil {
			return nil, fmt.Errorf("probing %s for %s: %w", kind, candidateID, err)
		}
		if entity != nil {
			return entity, nil
		}
	}
	return nil, nil
}

// probeOrderWithHint returns the probe order with the hinted kind first.
func probeOrderWithHint(hint EntityKind) []EntityKind {
	if hint == "" {
		return probeOrder
	}
	order := make([]EntityKind, 0, len(probeOrder))
	order = append(order, hint)
	for _, kind := range probeOrder {
		if kind != hint {
			order = append(order, kind)
		}
	}
	return order
}

func (s *Service) probe(kind EntityKind, id string) (*ResolvedEntity, error) {
	switch kind {
	case KindCharge:
		c, err := s.repo.FindChargeByID(id)
		if err != nil {
			return nil, ignoreNotFound(err)
		}
		return &ResolvedEntity{Kind: KindCharge, Charge: c}, nil
	case KindSubscribedItem:
		item, err := s.repo.FindSubscribedItemByID(id)
		if err != nil {
			return nil, ignoreNotFound(err)
		}
		return &ResolvedEntity{Kind: KindSubscribedItem, Item: item}, nil
	case KindResellerSubscription:
		sub, err := s.repo.FindResellerSubscriptionByID(id)
		if err != nil {
			return nil, ignoreNotFound(err)
		}
		return &ResolvedEntity{Kind: KindResellerSubscription, ResellerSub: sub}, nil
	case KindPaymentRecord:
		rec, err := s.repo.FindPaymentRecordByID(id)
		if err != nil {
			return nil, ignoreNotFound(err)
		}
		return &ResolvedEntity{Kind: KindPaymentRecord, PaymentRecord: rec}, nil
	case KindPlanSubscription:
		sub, err := s.repo.FindPlanSubscriptionByID(id)
		if err != nil {
			return nil, ignoreNotFound(err)
		}
		return &ResolvedEntity{Kind: KindPlanSubscription, PlanSub: sub}, nil
	}
	return nil, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
