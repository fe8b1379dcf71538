package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BillFox/app/models"
	"github.com/ManuelReschke/BillFox/internal/pkg/messenger"
)

// TextSender is the slice of the messenger client the notifier needs.
type TextSender interface {
	SendText(ctx context.Context, instanceID, apiKey, number, text string) error
}

// Notifier emits the side effects of a confirmed payment: an internal
// notification row and an outbound confirmation message to the customer.
// Every method is best effort. Failures are logged and swallowed so a broken
// notification channel can never roll back a payment transition or provoke
// gateway redelivery.
type Notifier struct {
	db     *gorm.DB
	sender TextSender
}

// NewNotifier wires the notifier against GORM and the env-configured
// messenger client.
func NewNotifier(db *gorm.DB) *Notifier {
	return NewNotifierWith(db, messenger.NewClientFromEnv())
}

// NewNotifierWith creates a notifier with an explicit sender.
func NewNotifierWith(db *gorm.DB, sender TextSender) *Notifier {
	return &Notifier{db: db, sender: sender}
}

// NotifyPayment inserts an operator-facing notification for the owning
// tenant.
func (n *Notifier) NotifyPayment(tenantID, summary, referenceKind, referenceID string) {
	if err := models.CreateNotification(n.db, tenantID, "payment", summary, referenceKind, referenceID); err != nil {
		log.Errorf("[Reconcile] Failed to insert payment notification for tenant %s: %v", tenantID, err)
	}
}

// SendConfirmation messages the paying customer. No-op when the tenant has
// no messenger credentials or the customer has no phone.
func (n *Notifier) SendConfirmation(ctx context.Context, tenantID, customerID, customerPhone, customerName string, amount float64, productLabel string) {
	if customerPhone == "" {
		return
	}

	var cred models.MessengerCredential
	if err := n.db.Where("tenant_id = ?", tenantID).First(&cred).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorf("[Reconcile] Messenger credential lookup failed for tenant %s: %v", tenantID, err)
		}
		return
	}

	text := fmt.Sprintf("Olá %s! Recebemos o seu pagamento de R$ %.2f referente a %s. Obrigado!",
		customerName, amount, productLabel)

	sendErr := n.sender.SendText(ctx, cred.InstanceID, cred.APIKey, customerPhone, text)
	status := models.ScheduleStatusSent
	providerError := ""
	if sendErr != nil {
		status = models.ScheduleStatusFailed
		providerError = sendErr.Error()
		log.Errorf("[Reconcile] Payment confirmation to %s failed: %v", customerPhone, sendErr)
	}

	logRow := models.MessageLog{
		TenantID:      tenantID,
		CustomerID:    customerID,
		Phone:         customerPhone,
		Content:       text,
		Source:        models.MessageSourcePaymentConfirmed,
		Status:        status,
		ProviderError: providerError,
		SentAt:        time.Now(),
	}
	if err := n.db.Create(&logRow).Error; err != nil {
		log.Errorf("[Reconcile] Failed to write message log for tenant %s: %v", tenantID, err)
	}
}
