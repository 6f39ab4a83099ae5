package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/intervue/intervue-backend/internal/config"
)

// violationPayload is the wire shape queued in Redis between the session
// controllers and the persistence worker.
type violationPayload struct {
	SessionID   string `json:"session_id"`
	SessionKind string `json:"session_kind"`
	Reason      string `json:"reason"`
	Detail      string `json:"detail"`
	Timestamp   int64  `json:"timestamp"`
}

// ViolationQueue publishes proctoring events onto the Redis persistence
// queue. It implements the controllers' violation sink; publishing is
// fire-and-forget so a Redis outage never stalls a session.
type ViolationQueue struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewViolationQueue creates a ViolationQueue.
func NewViolationQueue(rdb *redis.Client, log zerolog.Logger) *ViolationQueue {
	return &ViolationQueue{
		rdb: rdb,
		log: log.With().Str("component", "violation_queue").Logger(),
	}
}

// Record queues one proctoring event for persistence.
func (q *ViolationQueue) Record(sessionID uuid.UUID, sessionKind, reason, detail string) {
	payload, err := json.Marshal(violationPayload{
		SessionID:   sessionID.String(),
		SessionKind: sessionKind,
		Reason:      reason,
		Detail:      detail,
		Timestamp:   time.Now().Unix(),
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := q.rdb.RPush(ctx, config.WorkerKey.PersistViolationsQueue, payload).Err(); err != nil {
		q.log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Failed to queue proctor event")
	}
}
