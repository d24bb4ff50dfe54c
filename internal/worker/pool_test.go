package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"famorders/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubHandler struct {
	calls int
	err   error
}

func (h *stubHandler) Process(_ context.Context, _ json.RawMessage) error {
	h.calls++
	return h.err
}

type stubMaterializer struct {
	calls []MaterializeJobPayload
	err   error
}

func (m *stubMaterializer) MaterializeMonth(_ context.Context, planID uuid.UUID, month, year int) (*dto.MaterializeResult, error) {
	m.calls = append(m.calls, MaterializeJobPayload{PlanID: planID.String(), Month: month, Year: year})
	if m.err != nil {
		return nil, m.err
	}
	return &dto.MaterializeResult{PlanID: planID.String(), Month: month, Year: year, DeliveriesCreated: 3}, nil
}

type stubMailer struct {
	to, subject, body string
	err               error
}

func (m *stubMailer) Send(to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// ── runJob ────────────────────────────────────────────────────────────────────

func TestRunJob_Done(t *testing.T) {
	h := &stubHandler{}
	job := &Job{Type: JobTypeEmail, Payload: json.RawMessage(`{}`)}

	outcome, err := runJob(context.Background(), WorkerHandlers{Email: h}, job, 3)
	require.NoError(t, err)
	assert.Equal(t, outcomeDone, outcome)
	assert.Equal(t, 1, job.Attempts)
	assert.Equal(t, 1, h.calls)
}

func TestRunJob_RetriesUntilLimit(t *testing.T) {
	h := &stubHandler{err: errors.New("smtp timeout")}
	job := &Job{Type: JobTypeMaterialize, Payload: json.RawMessage(`{}`)}
	handlers := WorkerHandlers{Materialize: h}

	outcome, err := runJob(context.Background(), handlers, job, 3)
	assert.Error(t, err)
	assert.Equal(t, outcomeRetry, outcome)

	outcome, _ = runJob(context.Background(), handlers, job, 3)
	assert.Equal(t, outcomeRetry, outcome)

	outcome, _ = runJob(context.Background(), handlers, job, 3)
	assert.Equal(t, outcomeDeadLetter, outcome)
	assert.Equal(t, 3, job.Attempts)
}

func TestRunJob_PermanentSkipsRetries(t *testing.T) {
	h := &stubHandler{err: Permanent(errors.New("bad payload"))}
	job := &Job{Type: JobTypeEmail}

	outcome, err := runJob(context.Background(), WorkerHandlers{Email: h}, job, 5)
	assert.Equal(t, outcomeDeadLetter, outcome)
	assert.EqualError(t, err, "bad payload")
	assert.Equal(t, 1, job.Attempts)
}

func TestRunJob_UnknownType(t *testing.T) {
	job := &Job{Type: "invoice"}

	outcome, err := runJob(context.Background(), WorkerHandlers{}, job, 3)
	assert.Equal(t, outcomeDeadLetter, outcome)
	assert.True(t, isPermanent(err))
	assert.Zero(t, job.Attempts)
}

func TestRunJob_EmailHandlerDisabled(t *testing.T) {
	job := &Job{Type: JobTypeEmail}

	outcome, _ := runJob(context.Background(), WorkerHandlers{Materialize: &stubHandler{}}, job, 3)
	assert.Equal(t, outcomeDeadLetter, outcome)
}

func TestPopFailed(t *testing.T) {
	assert.False(t, popFailed(redis.Nil), "idle timeout")
	assert.False(t, popFailed(context.Canceled))
	assert.False(t, popFailed(fmt.Errorf("brpop: %w", context.DeadlineExceeded)))
	assert.True(t, popFailed(errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")))
}

func TestSleepCtx_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	sleepCtx(ctx, time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}

// ── Workers ───────────────────────────────────────────────────────────────────

func TestMaterializeWorker_Process(t *testing.T) {
	m := &stubMaterializer{}
	w := NewMaterializeWorker(m)
	id := uuid.New()

	err := w.Process(context.Background(), raw(t, MaterializeJobPayload{PlanID: id.String(), Month: 1, Year: 2024}))
	require.NoError(t, err)
	require.Len(t, m.calls, 1)
	assert.Equal(t, MaterializeJobPayload{PlanID: id.String(), Month: 1, Year: 2024}, m.calls[0])
}

func TestMaterializeWorker_BadPayloadIsPermanent(t *testing.T) {
	w := NewMaterializeWorker(&stubMaterializer{})

	err := w.Process(context.Background(), json.RawMessage(`{"plan_id":`))
	assert.True(t, isPermanent(err))

	err = w.Process(context.Background(), raw(t, MaterializeJobPayload{PlanID: "nope", Month: 1, Year: 2024}))
	assert.True(t, isPermanent(err))
}

func TestMaterializeWorker_ServiceErrorIsRetryable(t *testing.T) {
	w := NewMaterializeWorker(&stubMaterializer{err: errors.New("db gone")})

	err := w.Process(context.Background(), raw(t, MaterializeJobPayload{PlanID: uuid.NewString(), Month: 1, Year: 2024}))
	require.Error(t, err)
	assert.False(t, isPermanent(err))
}

func TestEmailWorker_Process(t *testing.T) {
	m := &stubMailer{}
	w := NewEmailWorker(m)

	err := w.Process(context.Background(), raw(t, EmailJobPayload{ToEmail: "ana@example.com", Subject: "Pagamento", Body: "Total: 40.00"}))
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", m.to)
	assert.Equal(t, "Pagamento", m.subject)
	assert.Equal(t, "Total: 40.00", m.body)
}

func TestEmailWorker_EmptyRecipientIsSkipped(t *testing.T) {
	m := &stubMailer{}
	w := NewEmailWorker(m)

	require.NoError(t, w.Process(context.Background(), raw(t, EmailJobPayload{Subject: "x"})))
	assert.Empty(t, m.subject)
}

func TestEmailWorker_SendFailureIsRetryable(t *testing.T) {
	w := NewEmailWorker(&stubMailer{err: errors.New("connection refused")})

	err := w.Process(context.Background(), raw(t, EmailJobPayload{ToEmail: "ana@example.com"}))
	require.Error(t, err)
	assert.False(t, isPermanent(err))
	assert.Contains(t, err.Error(), "ana@example.com")
}

func TestInlineQueue_RunsSynchronously(t *testing.T) {
	m := &stubMaterializer{}
	q := NewInlineQueue(m)
	id := uuid.New()

	require.NoError(t, q.EnqueueMaterialize(context.Background(), MaterializeJobPayload{PlanID: id.String(), Month: 2, Year: 2024}))
	require.Len(t, m.calls, 1)
	assert.Equal(t, 2, m.calls[0].Month)

	m.err = errors.New("boom")
	assert.Error(t, q.EnqueueMaterialize(context.Background(), MaterializeJobPayload{PlanID: id.String(), Month: 3, Year: 2024}))
}
