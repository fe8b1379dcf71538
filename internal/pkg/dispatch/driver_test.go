package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/BillFox/app/models"
)

func driverRepoWithCustomers(n int) (*fakeDispatchRepo, []string) {
	repo := newFakeDispatchRepo()
	repo.tenants[tenantID] = &models.Tenant{ID: tenantID, Name: "Academia Central"}
	repo.creds[tenantID] = &models.MessengerCredential{TenantID: tenantID, InstanceID: "inst-1", APIKey: "key-1"}

	phones := make([]string, n)
	for i := 0; i < n; i++ {
		id := string(rune('a'+i)) + "0000000-0000-0000-0000-000000000000"
		phones[i] = "+55119999990" + string(rune('0'+i))
		repo.customers[id] = &models.Customer{ID: id, TenantID: tenantID, Name: "Cliente", Phone: phones[i]}
	}
	return repo, phones
}

func scheduleFor(repo *fakeDispatchRepo, id, customerID string) *models.ChargeSchedule {
	cs := &models.ChargeSchedule{
		ID:           id,
		TenantID:     tenantID,
		CustomerID:   customerID,
		Type:         models.ChargeScheduleTypeOnDue,
		Status:       models.ScheduleStatusPending,
		ScheduledFor: time.Now().Add(-time.Hour),
	}
	repo.schedules[id] = cs
	return cs
}

func TestRunOnce_DispatchesAllDueItems(t *testing.T) {
	repo, _ := driverRepoWithCustomers(2)
	scheduleFor(repo, "s1", "a0000000-0000-0000-0000-000000000000")
	scheduleFor(repo, "s2", "b0000000-0000-0000-0000-000000000000")
	repo.messages["m1"] = &models.ScheduledMessage{
		ID:          "m1",
		TenantID:    tenantID,
		CustomerID:  "a0000000-0000-0000-0000-000000000000",
		Content:     "Olá {nome}!",
		Status:      models.ScheduleStatusPending,
		ScheduledAt: time.Now().Add(-time.Minute),
	}
	// Not yet due, must stay pending.
	repo.messages["m2"] = &models.ScheduledMessage{
		ID:          "m2",
		TenantID:    tenantID,
		CustomerID:  "a0000000-0000-0000-0000-000000000000",
		Content:     "amanhã",
		Status:      models.ScheduleStatusPending,
		ScheduledAt: time.Now().Add(time.Hour),
	}
	sender := &fakeSender{}
	driver := NewDriver(repo, NewExecutor(repo, sender, nil))

	sum := driver.RunOnce(context.Background(), time.Now())

	assert.Equal(t, Summary{Processed: 3, Errors: 0}, sum)
	assert.Equal(t, models.ScheduleStatusSent, repo.schedules["s1"].Status)
	assert.Equal(t, models.ScheduleStatusSent, repo.schedules["s2"].Status)
	assert.Equal(t, models.ScheduleStatusSent, repo.messages["m1"].Status)
	assert.Equal(t, models.ScheduleStatusPending, repo.messages["m2"].Status)
}

func TestRunOnce_PanicInOneItemDoesNotAbortBatch(t *testing.T) {
	repo, phones := driverRepoWithCustomers(3)
	scheduleFor(repo, "s1", "a0000000-0000-0000-0000-000000000000")
	scheduleFor(repo, "s2", "b0000000-0000-0000-0000-000000000000")
	scheduleFor(repo, "s3", "c0000000-0000-0000-0000-000000000000")
	sender := &fakeSender{panicNumbers: map[string]bool{phones[1]: true}}
	driver := NewDriver(repo, NewExecutor(repo, sender, nil))

	sum := driver.RunOnce(context.Background(), time.Now())

	assert.Equal(t, 2, sum.Processed)
	assert.Equal(t, 1, sum.Errors)
	assert.Equal(t, models.ScheduleStatusSent, repo.schedules["s1"].Status)
	assert.Equal(t, models.ScheduleStatusSent, repo.schedules["s3"].Status)
	// The panicking item stays pending for the next run or operator.
	assert.Equal(t, models.ScheduleStatusPending, repo.schedules["s2"].Status)
}

func TestRunOnce_FailedSendIsProcessedNotError(t *testing.T) {
	repo, phones := driverRepoWithCustomers(1)
	scheduleFor(repo, "s1", "a0000000-0000-0000-0000-000000000000")
	sender := &fakeSender{failNumbers: map[string]bool{phones[0]: true}}
	driver := NewDriver(repo, NewExecutor(repo, sender, nil))

	sum := driver.RunOnce(context.Background(), time.Now())

	// The item concluded with a terminal failed status; that is a processed
	// item, not a batch error.
	assert.Equal(t, Summary{Processed: 1, Errors: 0}, sum)
	assert.Equal(t, models.ScheduleStatusFailed, repo.schedules["s1"].Status)
}

func TestRunOnce_AutomationGateSkipsTenant(t *testing.T) {
	repo, _ := driverRepoWithCustomers(1)
	repo.settings[tenantID] = map[string]string{models.TenantSettingChargeAutomation: "false"}
	scheduleFor(repo, "s1", "a0000000-0000-0000-0000-000000000000")
	sender := &fakeSender{}
	driver := NewDriver(repo, NewExecutor(repo, sender, nil))

	sum := driver.RunOnce(context.Background(), time.Now())

	assert.Equal(t, Summary{Processed: 0, Errors: 0}, sum)
	assert.Equal(t, models.ScheduleStatusPending, repo.schedules["s1"].Status)
	assert.Empty(t, sender.sent)
}

func TestRunOnce_ScanFailureCountsOnceAndContinues(t *testing.T) {
	repo, _ := driverRepoWithCustomers(1)
	repo.scanErr = assert.AnError
	repo.messages["m1"] = &models.ScheduledMessage{
		ID:          "m1",
		TenantID:    tenantID,
		CustomerID:  "a0000000-0000-0000-0000-000000000000",
		Content:     "Olá {nome}!",
		Status:      models.ScheduleStatusPending,
		ScheduledAt: time.Now().Add(-time.Minute),
	}
	driver := NewDriver(repo, NewExecutor(repo, &fakeSender{}, nil))

	sum := driver.RunOnce(context.Background(), time.Now())

	// The charge scan failure is one error; the message class still runs.
	assert.Equal(t, Summary{Processed: 1, Errors: 1}, sum)
	assert.Equal(t, models.ScheduleStatusSent, repo.messages["m1"].Status)
}
