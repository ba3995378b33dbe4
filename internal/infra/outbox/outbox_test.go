package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "pucisca/internal/app/outbox"
)

var occurred = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

func TestEnvelopeFormat(t *testing.T) {
	env := Envelope{TopicPrefix: "prod."}
	rec := appoutbox.EventRecord{
		ID:         "evt-1",
		Name:       "booking.inquiry_composed",
		Payload:    []byte(`{"property":"WH","nights":4}`),
		OccurredAt: occurred,
		Aggregate:  "WH",
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	}

	payload, headers, err := env.Format(rec)
	require.NoError(t, err)
	assert.Equal(t, "application/cloudevents+json", headers["content-type"])
	assert.Equal(t, "00-abc-def-01", headers["traceparent"])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "1.0", decoded["specversion"])
	assert.Equal(t, "evt-1", decoded["id"])
	assert.Equal(t, "booking.inquiry_composed.v1", decoded["type"])
	assert.Equal(t, "app://pucisca", decoded["source"])
	assert.Equal(t, "WH", decoded["subject"])
	assert.Equal(t, "00-abc-def-01", decoded["traceparent"])
	assert.Equal(t, map[string]any{"property": "WH", "nights": float64(4)}, decoded["data"])

	assert.Equal(t, "prod.booking.events.v1", env.TopicFor(rec.Name))
	assert.Equal(t, "availability.events.v1", Envelope{}.TopicFor("availability.refreshed"))
}

func TestEnvelopeRejectsInvalidPayload(t *testing.T) {
	_, _, err := Envelope{}.Format(appoutbox.EventRecord{ID: "x", Name: "a.b", Payload: []byte("{")})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

type fakeClaimStore struct {
	pending []*EventDocument
	sent    []string
	failed  map[string]time.Time
	claimBy string
}

func (s *fakeClaimStore) Claim(_ context.Context, workerID string, _ time.Duration) (*EventDocument, error) {
	if len(s.pending) == 0 {
		return nil, nil
	}
	s.claimBy = workerID
	doc := s.pending[0]
	s.pending = s.pending[1:]
	return doc, nil
}

func (s *fakeClaimStore) MarkSent(_ context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *fakeClaimStore) MarkFailed(_ context.Context, id string, next time.Time, _ string) error {
	if s.failed == nil {
		s.failed = map[string]time.Time{}
	}
	s.failed[id] = next
	return nil
}

type published struct {
	topic string
	key   string
}

type fakeProducer struct {
	out  []published
	fail map[string]error
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, _ map[string]string) error {
	var ce struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(payload, &ce)
	if err := p.fail[ce.ID]; err != nil {
		return err
	}
	p.out = append(p.out, published{topic: topic, key: key})
	return nil
}

func doc(id, name string, attempts int) *EventDocument {
	return &EventDocument{ID: id, Name: name, Payload: []byte(`{}`), OccurredAt: occurred, Aggregate: "GH", Attempts: attempts}
}

func TestWorkerDrainPublishesAndReschedules(t *testing.T) {
	store := &fakeClaimStore{pending: []*EventDocument{
		doc("1", "booking.price_estimate_viewed", 0),
		doc("2", "availability.source_unreachable", 1),
		{ID: "3", Name: "booking.inquiry_composed", Payload: []byte("not json")},
	}}
	producer := &fakeProducer{fail: map[string]error{"2": errors.New("broker down")}}
	w := &Worker{
		Store:    store,
		Producer: producer,
		ID:       "worker-a",
		Backoff:  []time.Duration{time.Second, 5 * time.Second},
		Now:      func() time.Time { return occurred },
	}

	n, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "worker-a", store.claimBy)
	assert.Equal(t, []string{"1"}, store.sent)
	assert.Equal(t, []published{{topic: "booking.events.v1", key: "GH"}}, producer.out)
	assert.Equal(t, occurred.Add(5*time.Second), store.failed["2"])
	assert.Equal(t, occurred.Add(time.Second), store.failed["3"])
}

func TestWorkerDrainRespectsBatchSize(t *testing.T) {
	store := &fakeClaimStore{pending: []*EventDocument{doc("1", "a.x", 0), doc("2", "a.y", 0), doc("3", "a.z", 0)}}
	w := &Worker{Store: store, Producer: &fakeProducer{}, BatchSize: 2}

	n, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, store.pending, 1)
}

func TestWorkerBackoffClampsToLastStep(t *testing.T) {
	w := &Worker{Backoff: []time.Duration{time.Second, 30 * time.Second}, Now: func() time.Time { return occurred }}
	assert.Equal(t, occurred.Add(30*time.Second), w.nextRetry(7))
	assert.Equal(t, occurred.Add(5*time.Second), (&Worker{Now: w.Now}).nextRetry(0))
}

func TestWorkerRunRequiresDependencies(t *testing.T) {
	err := (&Worker{}).Run(context.Background())
	assert.ErrorIs(t, err, ErrWorkerNotConfigured)
}
