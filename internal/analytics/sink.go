package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/kalambet/numera/internal/numerology"
)

// Sink receives delivered calculation events. A returned error makes the
// Worker retry the job.
type Sink interface {
	Deliver(ctx context.Context, ev numerology.CalculationEvent) error
}

// TallyStore keeps per-day counters. Implemented by storage.Store.
type TallyStore interface {
	IncrementTally(day time.Time, kind, system string, cacheHit bool) error
	IncrementTallyOnce(deliveryID string, day time.Time, kind, system string, cacheHit bool) error
}

type jobIDKey struct{}

// WithJobID tags ctx with the outbox job being delivered. Sinks that keep
// state use it to ignore redelivery of a job they already applied.
func WithJobID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, jobIDKey{}, id)
}

// JobIDFrom returns the job ID set by WithJobID.
func JobIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(jobIDKey{}).(string)
	return id, ok && id != ""
}

// StoreSink folds events into daily tallies.
type StoreSink struct {
	store TallyStore
}

// NewStoreSink creates a StoreSink.
func NewStoreSink(store TallyStore) *StoreSink {
	return &StoreSink{store: store}
}

// Deliver implements Sink. Within a job, repeated delivery counts once.
func (s *StoreSink) Deliver(ctx context.Context, ev numerology.CalculationEvent) error {
	var err error
	if id, ok := JobIDFrom(ctx); ok {
		err = s.store.IncrementTallyOnce(id, ev.OccurredAt, string(ev.Kind), string(ev.System), ev.CacheHit)
	} else {
		err = s.store.IncrementTally(ev.OccurredAt, string(ev.Kind), string(ev.System), ev.CacheHit)
	}
	if err != nil {
		return fmt.Errorf("incrementing tally: %w", err)
	}
	return nil
}

// LogSink writes each event to a structured logger at debug level.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink. A nil logger uses slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Deliver implements Sink.
func (s *LogSink) Deliver(ctx context.Context, ev numerology.CalculationEvent) error {
	s.logger.DebugContext(ctx, "calculation",
		"kind", ev.Kind,
		"system", ev.System,
		"cache_hit", ev.CacheHit,
		"occurred_at", ev.OccurredAt,
	)
	return nil
}

// producer is the subset of *kgo.Client the Kafka sink uses.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaSink publishes events as JSON records keyed by system.
type KafkaSink struct {
	client producer
	topic  string
}

// NewKafkaSink connects a franz-go producer to brokers.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka sink needs at least one broker")
	}
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID("numera"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}
	return &KafkaSink{client: cl, topic: topic}, nil
}

// Deliver implements Sink.
func (s *KafkaSink) Deliver(ctx context.Context, ev numerology.CalculationEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	rec := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(ev.System),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "kind", Value: []byte(ev.Kind)},
		},
	}
	if err := s.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("producing to %s: %w", s.topic, err)
	}
	return nil
}

// Close flushes and closes the producer.
func (s *KafkaSink) Close() {
	s.client.Close()
}

// MultiSink delivers to every sink and joins their errors. A retried job
// reaches every sink again, so stateful members must tolerate redelivery.
type MultiSink []Sink

// Deliver implements Sink.
func (m MultiSink) Deliver(ctx context.Context, ev numerology.CalculationEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.Deliver(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
