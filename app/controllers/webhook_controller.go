package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/BillFox/internal/pkg/database"
	"github.com/ManuelReschke/BillFox/internal/pkg/gateway"
	"github.com/ManuelReschke/BillFox/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/BillFox/internal/pkg/reconcile"
)

// PaymentLocator finds the owning tenant and payment detail for a payment id.
type PaymentLocator interface {
	LocateByPaymentID(ctx context.Context, paymentID string) (*gateway.Ownership, error)
}

// ReconcileService resolves references and applies payment transitions.
type ReconcileService interface {
	Resolve(ctx context.Context, candidateID, kindHint string) (*reconcile.ResolvedEntity, error)
	Apply(ctx context.Context, entity *reconcile.ResolvedEntity, amount float64, paidAt time.Time) (reconcile.Outcome, error)
}

// PaymentNotifier emits best-effort side effects after a transition.
type PaymentNotifier interface {
	NotifyPayment(tenantID, summary, referenceKind, referenceID string)
	SendConfirmation(ctx context.Context, tenantID, customerID, customerPhone, customerName string, amount float64, productLabel string)
}

// WebhookCounters records per-tenant webhook outcomes. May be nil.
type WebhookCounters interface {
	Processed(tenantID string)
	Ignored(tenantID string)
}

type redisWebhookCounters struct{}

func (redisWebhookCounters) Processed(tenantID string) {
	if err := counter.AddWebhookProcessed(tenantID); err != nil {
		log.Warnf("[Webhook] Failed to count processed webhook for tenant %s: %v", tenantID, err)
	}
}

func (redisWebhookCounters) Ignored(tenantID string) {
	if err := counter.AddWebhookIgnored(tenantID); err != nil {
		log.Warnf("[Webhook] Failed to count ignored webhook for tenant %s: %v", tenantID, err)
	}
}

// WebhookController handles payment gateway notifications. The gateway
// delivers at least once and retries on non-2xx, so every business non-match
// is acknowledged with 200; only infrastructure failures surface as 5xx.
type WebhookController struct {
	locator  PaymentLocator
	svc      ReconcileService
	notifier PaymentNotifier
	counters WebhookCounters
}

// NewWebhookController wires the controller against the global DB handle.
func NewWebhookController() *WebhookController {
	db := database.GetDB()
	return NewWebhookControllerWith(
		gateway.NewLocator(db),
		reconcile.NewServiceFromDB(db),
		reconcile.NewNotifier(db),
		redisWebhookCounters{},
	)
}

// NewWebhookControllerWith creates a controller from explicit collaborators.
func NewWebhookControllerWith(locator PaymentLocator, svc ReconcileService, notifier PaymentNotifier, counters WebhookCounters) *WebhookController {
	return &WebhookController{locator: locator, svc: svc, notifier: notifier, counters: counters}
}

// HandlePaymentWebhook processes one gateway notification end to end:
// filter event type, locate the owning tenant, resolve the referenced
// entity, apply the transition once, fire side effects.
func (w *WebhookController) HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	event, err := gateway.ParseWebhookEvent(rawBody)
	if err != nil {
		log.Warnf("[Webhook] Unparseable notification body: %v", err)
		return ackNotProcessed(c)
	}
	if !event.IsPaymentEvent() {
		return ackNotProcessed(c)
	}

	ownership, err := w.locator.LocateByPaymentID(ctx, event.PaymentID)
	if err != nil {
		log.Errorf("[Webhook] Owner lookup for payment %s failed: %v", event.PaymentID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "owner_lookup_failed"})
	}
	if ownership == nil {
		log.Warnf("[Webhook] No credential claims payment %s, ignoring", event.PaymentID)
		return ackNotProcessed(c)
	}

	payment := ownership.Payment
	if !payment.IsApproved() {
		log.Infof("[Webhook] Payment %s status %q, no transition", payment.ID, payment.Status)
		w.countIgnored(ownership.TenantID)
		return ackNotProcessed(c)
	}

	ref, err := gateway.ParseExternalReference(payment.ExternalReference)
	if err != nil {
		log.Warnf("[Webhook] Payment %s carries unusable external reference %q: %v", payment.ID, payment.ExternalReference, err)
		w.countIgnored(ownership.TenantID)
		return ackNotProcessed(c)
	}

	// A credential that fetches a payment is strong but not conclusive
	// evidence of ownership. The reference embeds the tenant that encoded
	// it; refuse to transition when the two disagree.
	if ref.TenantID != ownership.TenantID {
		log.Warnf("[Webhook] Payment %s: reference tenant %s does not match credential tenant %s, refusing",
			payment.ID, ref.TenantID, ownership.TenantID)
		w.countIgnored(ownership.TenantID)
		return ackNotProcessed(c)
	}

	entity, err := w.svc.Resolve(ctx, ref.EntityID, ref.KindHint)
	if err != nil {
		log.Errorf("[Webhook] Resolving entity %s failed: %v", ref.EntityID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "resolution_failed"})
	}
	if entity == nil {
		log.Warnf("[Webhook] Payment %s references unknown entity %s, ignoring", payment.ID, ref.EntityID)
		w.countIgnored(ownership.TenantID)
		return ackNotProcessed(c)
	}

	paidAt := payment.DateApproved
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	outcome, err := w.svc.Apply(ctx, entity, payment.TransactionAmount, paidAt)
	if err != nil {
		// Persistence failure: surface 5xx so the gateway redelivers.
		log.Errorf("[Webhook] Applying transition for %s %s failed: %v", entity.Kind, entity.ID(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "transition_failed"})
	}

	if outcome == reconcile.OutcomeApplied {
		w.fireSideEffects(ctx, ownership.TenantID, entity, payment.TransactionAmount)
		if w.counters != nil {
			w.counters.Processed(ownership.TenantID)
		}
	} else {
		w.countIgnored(ownership.TenantID)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"received":  true,
		"processed": outcome == reconcile.OutcomeApplied,
	})
}

// fireSideEffects runs the best-effort notification path. Failures inside
// stay inside; the transition is already committed.
func (w *WebhookController) fireSideEffects(ctx context.Context, tenantID string, entity *reconcile.ResolvedEntity, amount float64) {
	summary := fmt.Sprintf("Pagamento de R$ %.2f confirmado (%s)", amount, entity.Kind)
	w.notifier.NotifyPayment(tenantID, summary, string(entity.Kind), entity.ID())

	switch entity.Kind {
	case reconcile.KindCharge:
		label := entity.Charge.Description
		if label == "" {
			label = "sua cobrança"
		}
		w.notifier.SendConfirmation(ctx, tenantID, entity.Charge.CustomerID,
			entity.Charge.Customer.Phone, entity.Charge.Customer.Name, amount, label)
	case reconcile.KindSubscribedItem:
		w.notifier.SendConfirmation(ctx, tenantID, entity.Item.CustomerID,
			entity.Item.Customer.Phone, entity.Item.Customer.Name, amount, entity.Item.ProductName)
	}
}

func (w *WebhookController) countIgnored(tenantID string) {
	if w.counters != nil {
		w.counters.Ignored(tenantID)
	}
}

func ackNotProcessed(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "processed": false})
}
