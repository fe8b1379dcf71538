package dispatch

import (
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/BillFox/internal/pkg/metrics/counter"
)

type redisStatsRecorder struct{}

// NewStatsRecorder returns the redis-backed outcome counter. Increments are
// best effort; a down cache never blocks dispatching.
func NewStatsRecorder() StatsRecorder {
	return redisStatsRecorder{}
}

func (redisStatsRecorder) MessageSent(tenantID string) {
	if err := counter.AddMessageSent(tenantID); err != nil {
		log.Warnf("[Dispatch] Failed to count sent message for tenant %s: %v", tenantID, err)
	}
}

func (redisStatsRecorder) MessageFailed(tenantID string) {
	if err := counter.AddMessageFailed(tenantID); err != nil {
		log.Warnf("[Dispatch] Failed to count failed message for tenant %s: %v", tenantID, err)
	}
}
