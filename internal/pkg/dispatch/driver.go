package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BillFox/internal/pkg/messenger"
)

// Summary is the aggregate result of one batch run.
type Summary struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}

// Driver runs one dispatch pass over everything that is due. Items are fully
// independent: one item's panic or error is counted and the batch moves on.
type Driver struct {
	repo     Repository
	executor *Executor
}

// NewDriverFromDB wires the driver against GORM, the env-configured
// messenger client and the redis stats recorder.
func NewDriverFromDB(db *gorm.DB) *Driver {
	repo := NewRepository(db)
	return NewDriver(repo, NewExecutor(repo, messenger.NewClientFromEnv(), NewStatsRecorder()))
}

// NewDriver creates a driver from explicit collaborators.
func NewDriver(repo Repository, executor *Executor) *Driver {
	return &Driver{repo: repo, executor: executor}
}

// RunOnce scans both schedule classes with a single cutoff and dispatches
// every due item. The batch never aborts: the returned summary reports how
// many items concluded and how many hit an unexpected error. Failed sends
// are concluded items (their row carries the reason), not batch errors.
func (d *Driver) RunOnce(ctx context.Context, now time.Time) Summary {
	var sum Summary

	schedules, err := d.repo.DueChargeSchedules(now)
	if err != nil {
		log.Errorf("[Dispatch] Due charge schedule scan failed: %v", err)
		sum.Errors++
	} else {
		for i := range schedules {
			cs := &schedules[i]

			// Tenant gate applies to charge reminders only.
			enabled, err := d.repo.IsChargeAutomationEnabled(cs.TenantID)
			if err != nil {
				log.Errorf("[Dispatch] Automation gate check failed for tenant %s: %v", cs.TenantID, err)
				sum.Errors++
				continue
			}
			if !enabled {
				continue
			}

			if err := d.runItem(ctx, fmt.Sprintf("charge schedule %s", cs.ID), func() error {
				return d.executor.DispatchChargeSchedule(ctx, cs)
			}); err != nil {
				sum.Errors++
				continue
			}
			sum.Processed++
		}
	}

	messages, err := d.repo.DueScheduledMessages(now)
	if err != nil {
		log.Errorf("[Dispatch] Due scheduled message scan failed: %v", err)
		sum.Errors++
	} else {
		for i := range messages {
			sm := &messages[i]
			if err := d.runItem(ctx, fmt.Sprintf("scheduled message %s", sm.ID), func() error {
				return d.executor.DispatchScheduledMessage(ctx, sm)
			}); err != nil {
				sum.Errors++
				continue
			}
			sum.Processed++
		}
	}

	log.Infof("[Dispatch] Batch done: processed=%d errors=%d", sum.Processed, sum.Errors)
	return sum
}

// runItem is the per-item error boundary. Panics inside one item's
// read-render-send-write sequence are converted to errors so they cannot
// unwind the batch loop.
func (d *Driver) runItem(ctx context.Context, label string, fn func() error) (err error) {
	_ = ctx
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while dispatching %s: %v", label, r)
			log.Errorf("[Dispatch] %v", err)
		}
	}()
	if err = fn(); err != nil {
		log.Errorf("[Dispatch] %s: %v", label, err)
	}
	return err
}
