package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/kalambet/numera/internal/numerology"
	"github.com/kalambet/numera/internal/storage"
)

// --- Fakes ---

type recordingSink struct {
	mu     sync.Mutex
	events []numerology.CalculationEvent
	fail   int // fail this many deliveries before succeeding
}

func (s *recordingSink) Deliver(_ context.Context, ev numerology.CalculationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail > 0 {
		s.fail--
		return errors.New("sink unavailable")
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) delivered() []numerology.CalculationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]numerology.CalculationEvent(nil), s.events...)
}

type countingOutcomes struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *countingOutcomes) IncrementOutboxJob(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[status]++
}

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var results kgo.ProduceResults
	for _, r := range rs {
		if p.err == nil {
			p.records = append(p.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func (p *fakeProducer) Close() { p.closed = true }

func sampleEvent(kind numerology.EventKind, hit bool) numerology.CalculationEvent {
	return numerology.CalculationEvent{
		Kind:       kind,
		System:     numerology.Pythagorean,
		CacheHit:   hit,
		OccurredAt: time.Date(2026, time.October, 19, 9, 30, 0, 0, time.UTC),
	}
}

// --- Outbox suite: Recorder + Worker against a real store ---

type OutboxSuite struct {
	suite.Suite
	ctx      context.Context
	store    *storage.Store
	sink     *recordingSink
	outcomes *countingOutcomes
	recorder *Recorder
	worker   *Worker
}

func TestOutboxSuite(t *testing.T) {
	suite.Run(t, new(OutboxSuite))
}

func (s *OutboxSuite) SetupTest() {
	s.ctx = context.Background()
	store, err := storage.Open(":memory:")
	s.Require().NoError(err)
	s.store = store
	s.sink = &recordingSink{}
	s.outcomes = &countingOutcomes{}
	s.recorder = NewRecorder(store)
	s.worker = NewWorker(store, s.sink, s.outcomes, 0)
}

func (s *OutboxSuite) TearDownTest() {
	s.store.Close()
}

func (s *OutboxSuite) resetRunAfter() {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.store.DB().Exec(`UPDATE jobs SET run_after = ? WHERE status = 'pending'`, now)
	s.Require().NoError(err)
}

func (s *OutboxSuite) TestRecorderQueuesEvent() {
	ev := sampleEvent(numerology.EventReading, true)
	s.recorder.CalculationPerformed(s.ctx, ev)

	var typ, payload string
	err := s.store.DB().QueryRow(`SELECT type, payload_json FROM jobs`).Scan(&typ, &payload)
	s.Require().NoError(err)
	s.Equal(JobType, typ)

	var decoded numerology.CalculationEvent
	s.Require().NoError(json.Unmarshal([]byte(payload), &decoded))
	s.Equal(ev.Kind, decoded.Kind)
	s.True(decoded.CacheHit)
	s.NotContains(payload, "full_name")
}

func (s *OutboxSuite) TestWorkerDeliversQueuedEvents() {
	s.recorder.CalculationPerformed(s.ctx, sampleEvent(numerology.EventReading, false))
	s.recorder.CalculationPerformed(s.ctx, sampleEvent(numerology.EventCompatibility, false))

	for i := 0; i < 2; i++ {
		didWork, err := s.worker.RunOnce(s.ctx)
		s.Require().NoError(err)
		s.True(didWork)
	}
	didWork, err := s.worker.RunOnce(s.ctx)
	s.Require().NoError(err)
	s.False(didWork, "queue should be drained")

	s.Len(s.sink.delivered(), 2)
	s.Equal(2, s.outcomes.counts["done"])

	counts, err := s.store.JobCounts()
	s.Require().NoError(err)
	s.Equal(2, counts["completed"])
}

func (s *OutboxSuite) TestWorkerRetriesFailedDelivery() {
	s.sink.fail = 1
	s.recorder.CalculationPerformed(s.ctx, sampleEvent(numerology.EventReading, false))

	didWork, err := s.worker.RunOnce(s.ctx)
	s.Require().NoError(err)
	s.True(didWork)
	s.Empty(s.sink.delivered())

	var status string
	var attempts int
	s.Require().NoError(s.store.DB().QueryRow(`SELECT status, attempts FROM jobs`).Scan(&status, &attempts))
	s.Equal("pending", status)
	s.Equal(1, attempts)

	s.resetRunAfter()
	didWork, err = s.worker.RunOnce(s.ctx)
	s.Require().NoError(err)
	s.True(didWork)
	s.Len(s.sink.delivered(), 1)
	s.Equal(1, s.outcomes.counts["retry"])
	s.Equal(1, s.outcomes.counts["done"])
}

func (s *OutboxSuite) TestWorkerGivesUpAfterMaxAttempts() {
	s.sink.fail = 100
	s.recorder.CalculationPerformed(s.ctx, sampleEvent(numerology.EventReading, false))

	for i := 0; i < 3; i++ {
		didWork, err := s.worker.RunOnce(s.ctx)
		s.Require().NoError(err)
		s.True(didWork)
		s.resetRunAfter()
	}

	var status string
	s.Require().NoError(s.store.DB().QueryRow(`SELECT status FROM jobs`).Scan(&status))
	s.Equal("failed", status)
}

func (s *OutboxSuite) TestStoreSinkTallies() {
	w := NewWorker(s.store, NewStoreSink(s.store), nil, 0)
	s.recorder.CalculationPerformed(s.ctx, sampleEvent(numerology.EventReading, false))
	s.recorder.CalculationPerformed(s.ctx, sampleEvent(numerology.EventReading, true))

	for {
		didWork, err := w.RunOnce(s.ctx)
		s.Require().NoError(err)
		if !didWork {
			break
		}
	}

	tallies, err := s.store.Tallies(time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Require().Len(tallies, 1)
	s.Equal(storage.Tally{Day: "2026-10-19", Kind: "reading", System: "pythagorean", Computations: 2, CacheHits: 1}, tallies[0])
}

func (s *OutboxSuite) TestRetryAfterPartialDeliveryTalliesOnce() {
	flaky := &recordingSink{fail: 1}
	w := NewWorker(s.store, MultiSink{NewStoreSink(s.store), flaky}, nil, 0)
	s.recorder.CalculationPerformed(s.ctx, sampleEvent(numerology.EventReading, true))

	for i := 0; i < 2; i++ {
		didWork, err := w.RunOnce(s.ctx)
		s.Require().NoError(err)
		s.True(didWork)
		s.resetRunAfter()
	}
	s.Len(flaky.delivered(), 1)

	tallies, err := s.store.Tallies(time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Require().Len(tallies, 1)
	s.Equal(1, tallies[0].Computations)
	s.Equal(1, tallies[0].CacheHits)
}

func (s *OutboxSuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		s.worker.Run(ctx)
		close(done)
	}()

	s.recorder.CalculationPerformed(s.ctx, sampleEvent(numerology.EventReading, false))
	s.Eventually(func() bool { return len(s.sink.delivered()) == 1 }, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.Fail("worker did not stop after cancel")
	}
}

// --- Sinks ---

func TestKafkaSink_Deliver(t *testing.T) {
	p := &fakeProducer{}
	sink := &KafkaSink{client: p, topic: "numera.calculations"}

	require.NoError(t, sink.Deliver(context.Background(), sampleEvent(numerology.EventCompatibility, true)))
	require.Len(t, p.records, 1)

	rec := p.records[0]
	assert.Equal(t, "numera.calculations", rec.Topic)
	assert.Equal(t, []byte("pythagorean"), rec.Key)
	assert.Equal(t, []kgo.RecordHeader{{Key: "kind", Value: []byte("compatibility")}}, rec.Headers)

	var ev numerology.CalculationEvent
	require.NoError(t, json.Unmarshal(rec.Value, &ev))
	assert.True(t, ev.CacheHit)

	sink.Close()
	assert.True(t, p.closed)
}

func TestKafkaSink_ProduceError(t *testing.T) {
	p := &fakeProducer{err: errors.New("broker down")}
	sink := &KafkaSink{client: p, topic: "t"}

	err := sink.Deliver(context.Background(), sampleEvent(numerology.EventReading, false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNewKafkaSink_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaSink(nil, "t")
	assert.Error(t, err)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	require.NoError(t, NewLogSink(logger).Deliver(context.Background(), sampleEvent(numerology.EventReading, true)))
	assert.Contains(t, buf.String(), "kind=reading")
	assert.Contains(t, buf.String(), "cache_hit=true")
}

func TestJobIDFrom(t *testing.T) {
	_, ok := JobIDFrom(context.Background())
	assert.False(t, ok)

	id, ok := JobIDFrom(WithJobID(context.Background(), "job-7"))
	assert.True(t, ok)
	assert.Equal(t, "job-7", id)
}

func TestMultiSink(t *testing.T) {
	ok := &recordingSink{}
	failing := &recordingSink{fail: 1}

	err := MultiSink{ok, failing}.Deliver(context.Background(), sampleEvent(numerology.EventReading, false))
	require.Error(t, err)
	assert.Len(t, ok.delivered(), 1, "healthy sinks still receive the event")

	assert.NoError(t, MultiSink{}.Deliver(context.Background(), sampleEvent(numerology.EventReading, false)))
}
