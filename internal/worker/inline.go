package worker

import (
	"context"
	"encoding/json"
)

// InlineQueue runs materialization jobs synchronously in the caller. It stands
// in for the Redis dispatcher when no REDIS_URL is configured.
type InlineQueue struct {
	w *MaterializeWorker
}

func NewInlineQueue(svc Materializer) *InlineQueue {
	return &InlineQueue{w: NewMaterializeWorker(svc)}
}

func (q *InlineQueue) EnqueueMaterialize(ctx context.Context, payload MaterializeJobPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return q.w.Process(ctx, raw)
}
