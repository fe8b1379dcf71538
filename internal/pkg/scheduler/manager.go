package scheduler

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/BillFox/internal/pkg/database"
	"github.com/ManuelReschke/BillFox/internal/pkg/dispatch"
	"github.com/ManuelReschke/BillFox/internal/pkg/env"
	"github.com/ManuelReschke/BillFox/internal/pkg/metrics/counter"
)

// Manager runs the recurring background tasks: the dispatch batch (when the
// internal ticker is enabled) and the counter flush. Deployments that drive
// dispatching from an external cron leave the ticker off and only get the
// flusher.
type Manager struct {
	dispatchTicker     *time.Ticker
	dispatchDriver     *dispatch.Driver
	counterFlushTicker *time.Ticker
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	mu                 sync.Mutex
	running            bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global scheduler manager (singleton).
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// Start starts the background tickers.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so the manager can be
	// restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[Scheduler] Starting background tasks")

	if env.GetEnv("DISPATCH_INTERNAL_TICKER", "false") == "true" {
		interval := 60 * time.Second
		if v, err := strconv.Atoi(env.GetEnv("DISPATCH_INTERVAL_SECONDS", "60")); err == nil && v > 0 {
			interval = time.Duration(v) * time.Second
		}
		m.dispatchTicker = time.NewTicker(interval)
		m.dispatchDriver = dispatch.NewDriverFromDB(database.GetDB())
		m.wg.Add(1)
		go m.dispatchWorker(interval, m.dispatchDriver)
	}

	// Flush outcome counters (Redis -> DB) every 5 seconds
	m.counterFlushTicker = time.NewTicker(5 * time.Second)
	m.wg.Add(1)
	go m.counterFlushWorker()

	log.Info("[Scheduler] Started successfully")
}

// Stop stops the background tickers and waits for workers to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[Scheduler] Stopping background tasks...")

	if m.dispatchTicker != nil {
		m.dispatchTicker.Stop()
	}
	if m.counterFlushTicker != nil {
		m.counterFlushTicker.Stop()
	}

	close(m.stopCh)
	m.running = false
	m.wg.Wait()

	log.Info("[Scheduler] Stopped successfully")
}

// dispatchWorker runs the dispatch batch on the configured interval. The
// driver is built once for the lifetime of the worker.
func (m *Manager) dispatchWorker(interval time.Duration, driver *dispatch.Driver) {
	defer m.wg.Done()
	log.Infof("[Scheduler] Started dispatch worker (interval: %s)", interval)

	for {
		select {
		case <-m.stopCh:
			log.Info("[Scheduler] Dispatch worker stopping")
			return
		case <-m.dispatchTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			sum := driver.RunOnce(ctx, time.Now())
			cancel()
			if sum.Errors > 0 {
				log.Warnf("[Scheduler] Dispatch run finished with errors: processed=%d errors=%d", sum.Processed, sum.Errors)
			}
		}
	}
}

// counterFlushWorker periodically flushes pending counters from Redis to DB.
func (m *Manager) counterFlushWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			log.Info("[Scheduler] Counter flush worker stopping")
			return
		case <-m.counterFlushTicker.C:
			if err := counter.FlushAll(); err != nil {
				log.Errorf("[Scheduler] Error flushing counters: %v", err)
			}
		}
	}
}
