package counter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ManuelReschke/BillFox/internal/pkg/cache"
	"github.com/ManuelReschke/BillFox/internal/pkg/database"
)

const (
	messagesSentKey     = "dispatch:counters:sent"
	messagesFailedKey   = "dispatch:counters:failed"
	webhookProcessedKey = "webhook:counters:processed"
	webhookIgnoredKey   = "webhook:counters:ignored"
)

// AddMessageSent increments the pending sent counter for a tenant in Redis.
func AddMessageSent(tenantID string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, messagesSentKey, tenantID, 1).Err()
}

// AddMessageFailed increments the pending failed counter for a tenant.
func AddMessageFailed(tenantID string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, messagesFailedKey, tenantID, 1).Err()
}

// AddWebhookProcessed increments the processed webhook counter for a tenant.
func AddWebhookProcessed(tenantID string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookProcessedKey, tenantID, 1).Err()
}

// AddWebhookIgnored increments the ignored webhook counter for a tenant.
func AddWebhookIgnored(tenantID string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookIgnoredKey, tenantID, 1).Err()
}

// FlushAll flushes all pending counters to the tenant_stats table.
func FlushAll() error {
	if err := flushHashToColumn(messagesSentKey, "messages_sent"); err != nil {
		return err
	}
	if err := flushHashToColumn(messagesFailedKey, "messages_failed"); err != nil {
		return err
	}
	if err := flushHashToColumn(webhookProcessedKey, "webhook_processed"); err != nil {
		return err
	}
	return flushHashToColumn(webhookIgnoredKey, "webhook_ignored")
}

// flushHashToColumn drains a Redis hash atomically and applies the batched
// increments to tenant_stats. Uses RENAME to a temporary key so in-flight
// increments are never lost.
func flushHashToColumn(redisKey, column string) error {
	ctx := context.Background()
	rdb := cache.GetClient()

	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", redisKey, tmpKey).Err(); err != nil {
		// Nothing to flush when the key does not exist
		if strings.Contains(strings.ToLower(err.Error()), "no such key") || err.Error() == "redis: nil" {
			return nil
		}
		return err
	}

	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	type pair struct {
		tenantID string
		inc      int64
	}
	pairs := make([]pair, 0, len(data))
	for k, v := range data {
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if ierr != nil || inc == 0 {
			continue
		}
		pairs = append(pairs, pair{tenantID: k, inc: inc})
	}
	if len(pairs) == 0 {
		return nil
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].tenantID < pairs[j].tenantID })

	// One upsert per flush: INSERT .. ON DUPLICATE KEY UPDATE col = col + VALUES(col)
	var builder strings.Builder
	args := make([]interface{}, 0, len(pairs)*2)
	builder.WriteString("INSERT INTO tenant_stats (tenant_id, ")
	builder.WriteString(column)
	builder.WriteString(") VALUES ")
	for i, p := range pairs {
		if i > 0 {
			builder.WriteString(",")
		}
		builder.WriteString("(?,?)")
		args = append(args, p.tenantID, p.inc)
	}
	builder.WriteString(" ON DUPLICATE KEY UPDATE ")
	builder.WriteString(column)
	builder.WriteString(" = ")
	builder.WriteString(column)
	builder.WriteString(" + VALUES(")
	builder.WriteString(column)
	builder.WriteString(")")

	return database.GetDB().Exec(builder.String(), args...).Error
}
