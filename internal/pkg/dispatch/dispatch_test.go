package dispatch

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/BillFox/app/models"
)

// fakeDispatchRepo is an in-memory Repository for executor and driver tests.
type fakeDispatchRepo struct {
	schedules map[string]*models.ChargeSchedule
	messages  map[string]*models.ScheduledMessage
	customers map[string]*models.Customer
	templates map[string]*models.MessageTemplate
	tenants   map[string]*models.Tenant
	items     map[string]*models.SubscribedItem
	creds     map[string]*models.MessengerCredential
	settings  map[string]map[string]string
	logs      []*models.MessageLog

	scanErr error
}

func newFakeDispatchRepo() *fakeDispatchRepo {
	return &fakeDispatchRepo{
		schedules: map[string]*models.ChargeSchedule{},
		messages:  map[string]*models.ScheduledMessage{},
		customers: map[string]*models.Customer{},
		templates: map[string]*models.MessageTemplate{},
		tenants:   map[string]*models.Tenant{},
		items:     map[string]*models.SubscribedItem{},
		creds:     map[string]*models.MessengerCredential{},
		settings:  map[string]map[string]string{},
	}
}

func (f *fakeDispatchRepo) DueChargeSchedules(now time.Time) ([]models.ChargeSchedule, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	var out []models.ChargeSchedule
	for _, cs := range f.schedules {
		if cs.Status == models.ScheduleStatusPending && !cs.ScheduledFor.After(now) {
			out = append(out, *cs)
		}
	}
	return out, nil
}

func (f *fakeDispatchRepo) DueScheduledMessages(now time.Time) ([]models.ScheduledMessage, error) {
	var out []models.ScheduledMessage
	for _, sm := range f.messages {
		if sm.Status == models.ScheduleStatusPending && !sm.ScheduledAt.After(now) {
			out = append(out, *sm)
		}
	}
	return out, nil
}

func (f *fakeDispatchRepo) MarkChargeScheduleSent(id string, at time.Time) error {
	cs := f.schedules[id]
	cs.Status = models.ScheduleStatusSent
	cs.SentAt = &at
	cs.ErrorMessage = ""
	return nil
}

func (f *fakeDispatchRepo) MarkChargeScheduleFailed(id, reason string) error {
	cs := f.schedules[id]
	cs.Status = models.ScheduleStatusFailed
	cs.ErrorMessage = reason
	return nil
}

func (f *fakeDispatchRepo) MarkScheduledMessageSent(id string, at time.Time) error {
	sm := f.messages[id]
	sm.Status = models.ScheduleStatusSent
	sm.SentAt = &at
	sm.ErrorMessage = ""
	return nil
}

func (f *fakeDispatchRepo) MarkScheduledMessageFailed(id, reason string) error {
	sm := f.messages[id]
	sm.Status = models.ScheduleStatusFailed
	sm.ErrorMessage = reason
	return nil
}

func (f *fakeDispatchRepo) GetCustomer(id string) (*models.Customer, error) {
	if c, ok := f.customers[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDispatchRepo) GetTemplate(id string) (*models.MessageTemplate, error) {
	if t, ok := f.templates[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDispatchRepo) GetTenant(id string) (*models.Tenant, error) {
	if t, ok := f.tenants[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDispatchRepo) GetSubscribedItem(id string) (*models.SubscribedItem, error) {
	if s, ok := f.items[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDispatchRepo) GetMessengerCredential(tenantID string) (*models.MessengerCredential, error) {
	if c, ok := f.creds[tenantID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDispatchRepo) GetTenantSetting(tenantID, key, def string) (string, error) {
	if m, ok := f.settings[tenantID]; ok {
		if v, ok := m[key]; ok {
			return v, nil
		}
	}
	return def, nil
}

func (f *fakeDispatchRepo) IsChargeAutomationEnabled(tenantID string) (bool, error) {
	v, err := f.GetTenantSetting(tenantID, models.TenantSettingChargeAutomation, "true")
	if err != nil {
		return true, err
	}
	return v == "true" || v == "1", nil
}

func (f *fakeDispatchRepo) CreateMessageLog(row *models.MessageLog) error {
	f.logs = append(f.logs, row)
	return nil
}

// fakeSender records outgoing texts. Numbers listed in failNumbers or
// panicNumbers simulate provider failures.
type fakeSender struct {
	sent         []sentText
	failNumbers  map[string]bool
	panicNumbers map[string]bool
}

type sentText struct {
	instanceID string
	number     string
	text       string
}

func (f *fakeSender) SendText(ctx context.Context, instanceID, apiKey, number, text string) error {
	if f.panicNumbers[number] {
		panic("provider client blew up")
	}
	if f.failNumbers[number] {
		return errors.New("provider rejected message")
	}
	f.sent = append(f.sent, sentText{instanceID: instanceID, number: number, text: text})
	return nil
}

type countingStats struct {
	sent   map[string]int
	failed map[string]int
}

func newCountingStats() *countingStats {
	return &countingStats{sent: map[string]int{}, failed: map[string]int{}}
}

func (c *countingStats) MessageSent(tenantID string)   { c.sent[tenantID]++ }
func (c *countingStats) MessageFailed(tenantID string) { c.failed[tenantID]++ }
