package reconcile

import (
	"strings"

	"github.com/ManuelReschke/BillFox/app/models"
)

// EntityKind tags which payable record a reference resolved to.
type EntityKind string

const (
	KindCharge               EntityKind = "charge"
	KindSubscribedItem       EntityKind = "item"
	KindResellerSubscription EntityKind = "reseller_subscription"
	KindPaymentRecord        EntityKind = "payment_record"
	KindPlanSubscription     EntityKind = "plan_subscription"
)

// probeOrder is the fixed priority in which entity kinds are tried during
// resolution. Under the one-kind-per-id invariant the order only affects
// latency, never the result.
var probeOrder = []EntityKind{
	KindCharge,
	KindSubscribedItem,
	KindResellerSubscription,
	KindPaymentRecord,
	KindPlanSubscription,
}

// normalizeKindHint maps the free-form hint segment of an external reference
// onto a probe kind. Unknown hints resolve to "" and change nothing.
func normalizeKindHint(hint string) EntityKind {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "charge", "cobranca":
		return KindCharge
	case "item", "subscribed_item", "assinatura_item":
		return KindSubscribedItem
	case "reseller", "reseller_subscription":
		return KindResellerSubscription
	case "payment", "payment_record":
		return KindPaymentRecord
	case "plan", "plan_subscription", "plano":
		return KindPlanSubscription
	default:
		return ""
	}
}

// ResolvedEntity is a handle to exactly one matching record. Only the field
// matching Kind is set.
type ResolvedEntity struct {
	Kind EntityKind

	Charge        *models.Charge
	Item          *models.SubscribedItem
	ResellerSub   *models.ResellerSubscription
	PaymentRecord *models.PaymentRecord
	PlanSub       *models.PlanSubscription
}

// ID returns the id of the underlying record.
func (e *ResolvedEntity) ID() string {
	switch e.Kind {
	case KindCharge:
		return e.Charge.ID
	case KindSubscribedItem:
		return e.Item.ID
	case KindResellerSubscription:
		return e.ResellerSub.ID
	case KindPaymentRecord:
		return e.PaymentRecord.ID
	case KindPlanSubscription:
		return e.PlanSub.ID
	}
	return ""
}

// Outcome reports what Apply did to the entity.
type Outcome string

const (
	// OutcomeApplied means the pending->paid/active transition happened now.
	OutcomeApplied Outcome = "applied"
	// OutcomeNoOp means the entity already reached its target state. Treated
	// as success so at-least-once deliveries stay quiet.
	OutcomeNoOp Outcome = "noop"
)
