package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"famorders/internal/dto"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaterializeJobPayload asks for one plan's payment and deliveries for a month.
type MaterializeJobPayload struct {
	PlanID string `json:"plan_id"`
	Month  int    `json:"month"`
	Year   int    `json:"year"`
}

// Materializer is the slice of the recurring service the worker drives.
type Materializer interface {
	MaterializeMonth(ctx context.Context, planID uuid.UUID, month, year int) (*dto.MaterializeResult, error)
}

type MaterializeWorker struct {
	svc Materializer
}

func NewMaterializeWorker(svc Materializer) *MaterializeWorker {
	return &MaterializeWorker{svc: svc}
}

func (w *MaterializeWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload MaterializeJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("materialize_worker: invalid payload: %w", err))
	}
	planID, err := uuid.Parse(payload.PlanID)
	if err != nil {
		return Permanent(fmt.Errorf("materialize_worker: invalid plan_id %q", payload.PlanID))
	}

	res, err := w.svc.MaterializeMonth(ctx, planID, payload.Month, payload.Year)
	if err != nil {
		return err
	}
	log.Info().
		Str("plan_id", payload.PlanID).
		Int("month", payload.Month).
		Int("year", payload.Year).
		Bool("payment_created", res.PaymentCreated).
		Int("deliveries_created", res.DeliveriesCreated).
		Msg("materialize_worker: month materialized")
	return nil
}
