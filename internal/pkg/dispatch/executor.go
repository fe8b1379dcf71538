package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BillFox/app/models"
	"github.com/ManuelReschke/BillFox/internal/pkg/env"
)

// Terminal failure reasons written onto schedule items. Operator facing.
const (
	reasonGatewayNotConfigured = "messaging gateway not configured for tenant"
	reasonCustomerNotFound     = "customer not found"
	reasonCustomerNoPhone      = "customer has no phone number"
	reasonNoContent            = "no message content or template"
)

// Default reminder bodies used when a charge schedule carries no template.
var defaultChargeBodies = map[string]string{
	models.ChargeScheduleTypeBeforeDue: "Olá {{nome}}! Lembrete: sua fatura de {{valor}} vence em {{vencimento}}. Pague por aqui: {{link_pagamento}}",
	models.ChargeScheduleTypeOnDue:     "Olá {{nome}}! Sua fatura de {{valor}} vence hoje ({{vencimento}}). Evite encargos, pague por aqui: {{link_pagamento}}",
	models.ChargeScheduleTypeAfterDue:  "Olá {{nome}}, sua fatura de {{valor}} venceu em {{vencimento}}. Regularize por aqui: {{link_pagamento}}",
}

// TextSender is the slice of the messenger client the executor needs.
type TextSender interface {
	SendText(ctx context.Context, instanceID, apiKey, number, text string) error
}

// StatsRecorder receives per-tenant outcome counts. May be nil.
type StatsRecorder interface {
	MessageSent(tenantID string)
	MessageFailed(tenantID string)
}

// Executor renders and sends one schedule item and writes its terminal
// status. Every outcome lands on that item's row; nothing is inferred in
// bulk.
type Executor struct {
	repo   Repository
	sender TextSender
	stats  StatsRecorder
}

// NewExecutor creates an executor from explicit collaborators. stats may be
// nil.
func NewExecutor(repo Repository, sender TextSender, stats StatsRecorder) *Executor {
	return &Executor{repo: repo, sender: sender, stats: stats}
}

// DispatchChargeSchedule processes one due charge reminder. A nil return
// means a terminal status (sent or failed) was written; an error means the
// item could not be concluded and stays pending for operator attention.
func (e *Executor) DispatchChargeSchedule(ctx context.Context, cs *models.ChargeSchedule) error {
	prep, failReason, err := e.prepare(cs.TenantID, cs.CustomerID)
	if err != nil {
		return err
	}
	if failReason != "" {
		return e.failChargeSchedule(cs, failReason)
	}

	body := e.lookupTemplate(cs.TemplateID)
	if body == "" {
		body = defaultChargeBodies[cs.Type]
	}
	if body == "" {
		return e.failChargeSchedule(cs, reasonNoContent)
	}

	var item *models.SubscribedItem
	if cs.SubscribedItemID != nil && *cs.SubscribedItemID != "" {
		item, err = e.repo.GetSubscribedItem(*cs.SubscribedItemID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	text := Render(body, BuildChargeScheduleVars(ChargeVariableInput{
		Customer:    prep.customer,
		Item:        item,
		Schedule:    cs,
		EmpresaName: prep.empresaName,
		LinkBase:    prep.linkBase,
	}))

	sendErr := e.sender.SendText(ctx, prep.cred.InstanceID, prep.cred.APIKey, prep.customer.Phone, text)
	e.writeMessageLog(cs.TenantID, prep.customer, text, models.MessageSourceChargeSchedule, cs.ID, sendErr)
	if sendErr != nil {
		log.Warnf("[Dispatch] Charge schedule %s send failed: %v", cs.ID, sendErr)
		if e.stats != nil {
			e.stats.MessageFailed(cs.TenantID)
		}
		return e.repo.MarkChargeScheduleFailed(cs.ID, sendErr.Error())
	}
	if e.stats != nil {
		e.stats.MessageSent(cs.TenantID)
	}
	return e.repo.MarkChargeScheduleSent(cs.ID, time.Now())
}

// DispatchScheduledMessage processes one due ad-hoc message.
func (e *Executor) DispatchScheduledMessage(ctx context.Context, sm *models.ScheduledMessage) error {
	prep, failReason, err := e.prepare(sm.TenantID, sm.CustomerID)
	if err != nil {
		return err
	}
	if failReason != "" {
		return e.failScheduledMessage(sm, failReason)
	}

	// Literal content overrides the template.
	body := sm.Content
	if body == "" {
		body = e.lookupTemplate(sm.TemplateID)
	}
	if body == "" {
		return e.failScheduledMessage(sm, reasonNoContent)
	}

	text := Render(body, BuildScheduledMessageVars(MessageVariableInput{
		Customer:    prep.customer,
		Message:     sm,
		EmpresaName: prep.empresaName,
		LinkBase:    prep.linkBase,
	}))

	sendErr := e.sender.SendText(ctx, prep.cred.InstanceID, prep.cred.APIKey, prep.customer.Phone, text)
	e.writeMessageLog(sm.TenantID, prep.customer, text, models.MessageSourceScheduledMessage, sm.ID, sendErr)
	if sendErr != nil {
		log.Warnf("[Dispatch] Scheduled message %s send failed: %v", sm.ID, sendErr)
		if e.stats != nil {
			e.stats.MessageFailed(sm.TenantID)
		}
		return e.repo.MarkScheduledMessageFailed(sm.ID, sendErr.Error())
	}
	if e.stats != nil {
		e.stats.MessageSent(sm.TenantID)
	}
	return e.repo.MarkScheduledMessageSent(sm.ID, time.Now())
}

type preparedDispatch struct {
	cred        *models.MessengerCredential
	customer    *models.Customer
	empresaName string
	linkBase    string
}

// prepare checks the per-item preconditions. A non-empty failReason is a
// terminal business failure; an error is an infrastructure problem.
func (e *Executor) prepare(tenantID, customerID string) (*preparedDispatch, string, error) {
	cred, err := e.repo.GetMessengerCredential(tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reasonGatewayNotConfigured, nil
		}
		return nil, "", err
	}

	customer, err := e.repo.GetCustomer(customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reasonCustomerNotFound, nil
		}
		return nil, "", err
	}
	if customer.Phone == "" {
		return nil, reasonCustomerNoPhone, nil
	}

	empresaName, err := e.repo.GetTenantSetting(tenantID, models.TenantSettingDisplayName, "")
	if err != nil {
		return nil, "", err
	}
	if empresaName == "" {
		if tenant, err := e.repo.GetTenant(tenantID); err == nil {
			empresaName = tenant.Name
		}
	}

	linkBase, err := e.repo.GetTenantSetting(tenantID, models.TenantSettingPaymentLinkBase, env.GetEnv("PUBLIC_DOMAIN", ""))
	if err != nil {
		return nil, "", err
	}

	return &preparedDispatch{
		cred:        cred,
		customer:    customer,
		empresaName: empresaName,
		linkBase:    linkBase,
	}, "", nil
}

// lookupTemplate returns the template body or "" when the reference is unset
// or stale.
func (e *Executor) lookupTemplate(templateID *string) string {
	if templateID == nil || *templateID == "" {
		return ""
	}
	tpl, err := e.repo.GetTemplate(*templateID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Dispatch] Template lookup %s failed: %v", *templateID, err)
		}
		return ""
	}
	return tpl.Content
}

func (e *Executor) failChargeSchedule(cs *models.ChargeSchedule, reason string) error {
	log.Warnf("[Dispatch] Charge schedule %s failed: %s", cs.ID, reason)
	if e.stats != nil {
		e.stats.MessageFailed(cs.TenantID)
	}
	return e.repo.MarkChargeScheduleFailed(cs.ID, reason)
}

func (e *Executor) failScheduledMessage(sm *models.ScheduledMessage, reason string) error {
	log.Warnf("[Dispatch] Scheduled message %s failed: %s", sm.ID, reason)
	if e.stats != nil {
		e.stats.MessageFailed(sm.TenantID)
	}
	return e.repo.MarkScheduledMessageFailed(sm.ID, reason)
}

func (e *Executor) writeMessageLog(tenantID string, customer *models.Customer, content, source, referenceID string, sendErr error) {
	status := models.ScheduleStatusSent
	providerError := ""
	if sendErr != nil {
		status = models.ScheduleStatusFailed
		providerError = sendErr.Error()
	}
	row := &models.MessageLog{
		TenantID:      tenantID,
		CustomerID:    customer.ID,
		Phone:         customer.Phone,
		Content:       content,
		Source:        source,
		ReferenceID:   referenceID,
		Status:        status,
		ProviderError: providerError,
		SentAt:        time.Now(),
	}
	if err := e.repo.CreateMessageLog(row); err != nil {
		log.Errorf("[Dispatch] Failed to write message log for %s: %v", referenceID, err)
	}
}
