package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"schallwerk/logger"
)

const outboxKey = "schallwerk:email:outbox"

// Outbox decouples email dispatch from the request that triggered it.
// Enqueue pushes onto a Redis list and returns immediately; one worker pops
// and delivers. Failures on either side are logged and dropped so a
// notification problem never fails the primary operation.
type Outbox struct {
	rdb    *redis.Client
	mailer EmailService
}

// NewOutbox creates an outbox over the given Redis client and mail backend.
func NewOutbox(rdb *redis.Client, mailer EmailService) *Outbox {
	return &Outbox{rdb: rdb, mailer: mailer}
}

// Enqueue hands a message to the outbox. Fire-and-forget: an enqueue failure
// is logged, not returned.
func (o *Outbox) Enqueue(ctx context.Context, msg *Message) {
	if !msg.Valid() {
		logger.Warn("[Outbox] dropping invalid message", logger.String("to", msg.To))
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Error("[Outbox] failed to encode message", logger.ErrorField(err))
		return
	}
	if err := o.rdb.LPush(ctx, outboxKey, payload).Err(); err != nil {
		logger.Error("[Outbox] failed to enqueue message",
			logger.String("to", msg.To),
			logger.ErrorField(err))
	}
}

// Run consumes the outbox until ctx is cancelled. Intended to run in one
// goroutine started alongside the HTTP server.
func (o *Outbox) Run(ctx context.Context) {
	logger.Info("[Outbox] worker started")
	for {
		result, err := o.rdb.BRPop(ctx, 5*time.Second, outboxKey).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				logger.Info("[Outbox] worker stopped")
				return
			}
			if errors.Is(err, redis.Nil) {
				continue // queue empty, poll again
			}
			logger.Error("[Outbox] pop failed", logger.ErrorField(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		// BRPop returns [key, value].
		if len(result) != 2 {
			continue
		}
		var msg Message
		if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
			logger.Error("[Outbox] discarding undecodable message", logger.ErrorField(err))
			continue
		}
		if err := o.mailer.Send(&msg); err != nil {
			// Logged and dropped: no retry, no requeue.
			logger.Error("[Outbox] delivery failed",
				logger.String("to", msg.To),
				logger.String("subject", msg.Subject),
				logger.ErrorField(err))
			continue
		}
		logger.Info("[Outbox] delivered",
			logger.String("to", msg.To),
			logger.String("subject", msg.Subject))
	}
}
