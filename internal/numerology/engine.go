package numerology

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Cache stores readings by key. Errors are treated as misses by the Engine.
type Cache interface {
	Get(ctx context.Context, key string) (Reading, bool, error)
	Set(ctx context.Context, key string, r Reading) error
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// EventKind identifies what was calculated.
type EventKind string

const (
	EventReading       EventKind = "reading"
	EventCompatibility EventKind = "compatibility"
)

// CalculationEvent is sent to observers after each successful calculation.
// It carries no personal data.
type CalculationEvent struct {
	Kind       EventKind `json:"kind"`
	System     System    `json:"system"`
	CacheHit   bool      `json:"cache_hit"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Observer is notified when a calculation happens.
type Observer interface {
	CalculationPerformed(ctx context.Context, ev CalculationEvent)
}

// Observers fans an event out to each observer in order.
type Observers []Observer

func (o Observers) CalculationPerformed(ctx context.Context, ev CalculationEvent) {
	for _, obs := range o {
		if obs != nil {
			obs.CalculationPerformed(ctx, ev)
		}
	}
}

// EngineConfig wires an Engine. Zero values select defaults.
type EngineConfig struct {
	Cache        Cache       // nil disables caching
	Interpreter  Interpreter // defaults to StaticInterpreter
	Observer     Observer    // optional
	KarmicMode   KarmicMode  // defaults to KarmicLiteral
	MinBirthYear int         // defaults to DefaultMinBirthYear
	Clock        Clock
	Logger       *slog.Logger
}

// Engine computes readings and compatibility, memoizing readings in its
// cache. Safe for concurrent use.
type Engine struct {
	cache    Cache
	interp   Interpreter
	observer Observer
	karmic   KarmicMode
	minYear  int
	clock    Clock
	logger   *slog.Logger
	tracer   trace.Tracer

	group singleflight.Group
}

// NewEngine creates an Engine from cfg.
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		cache:    cfg.Cache,
		interp:   cfg.Interpreter,
		observer: cfg.Observer,
		karmic:   cfg.KarmicMode,
		minYear:  cfg.MinBirthYear,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		tracer:   otel.Tracer("github.com/kalambet/numera/internal/numerology"),
	}
	if e.interp == nil {
		e.interp = StaticInterpreter{}
	}
	if e.karmic == "" {
		e.karmic = KarmicLiteral
	}
	if e.minYear == 0 {
		e.minYear = DefaultMinBirthYear
	}
	if e.clock == nil {
		e.clock = realClock{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// KarmicMode returns the engine's karmic debt detection mode.
func (e *Engine) KarmicMode() KarmicMode { return e.karmic }

// Validate checks a profile against the engine's rules without computing.
func (e *Engine) Validate(p BirthProfile) error {
	_, err := validateProfile(p, e.minYear, e.clock.Now())
	return err
}

// CacheKey builds the memoization key for a profile.
func CacheKey(fullName string, birthDate time.Time, system System, mode KarmicMode) string {
	return fmt.Sprintf("%s|%s|%s|%s", NormalizeName(fullName), calendarDate(birthDate).Format(DateLayout), system, mode)
}

// ComputeReading validates the input, then returns a cached reading or
// computes, caches and returns a fresh one.
func (e *Engine) ComputeReading(ctx context.Context, fullName string, birthDate time.Time, system System) (Reading, error) {
	ctx, span := e.tracer.Start(ctx, "numerology.ComputeReading",
		trace.WithAttributes(attribute.String("numerology.system", string(system))))
	defer span.End()

	r, hit, err := e.reading(ctx, BirthProfile{FullName: fullName, BirthDate: birthDate}, system)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Reading{}, err
	}
	span.SetAttributes(attribute.Bool("numerology.cache_hit", hit))
	e.notify(ctx, EventReading, system, hit)
	return r, nil
}

// ComputeCompatibility computes both readings concurrently and scores them.
func (e *Engine) ComputeCompatibility(ctx context.Context, a, b BirthProfile, system System) (CompatibilityResult, error) {
	ctx, span := e.tracer.Start(ctx, "numerology.ComputeCompatibility",
		trace.WithAttributes(attribute.String("numerology.system", string(system))))
	defer span.End()

	today := e.clock.Now()
	for _, p := range []BirthProfile{a, b} {
		if _, err := validateProfile(p, e.minYear, today); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return CompatibilityResult{}, err
		}
	}

	var ra, rb Reading
	var hitA, hitB bool
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ra, hitA, err = e.reading(gCtx, a, system)
		return err
	})
	g.Go(func() error {
		var err error
		rb, hitB, err = e.reading(gCtx, b, system)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CompatibilityResult{}, err
	}

	result := Compare(ra, rb)
	span.SetAttributes(attribute.Int("numerology.compatibility.overall", result.Overall))
	e.notify(ctx, EventCompatibility, system, hitA && hitB)
	return result, nil
}

type lookup struct {
	reading Reading
	hit     bool
}

// reading runs validation, system resolution and the cached computation.
func (e *Engine) reading(ctx context.Context, p BirthProfile, system System) (Reading, bool, error) {
	letters, err := validateProfile(p, e.minYear, e.clock.Now())
	if err != nil {
		return Reading{}, false, err
	}
	table, err := system.table()
	if err != nil {
		return Reading{}, false, err
	}

	compute := func() Reading {
		return assemble(p, system, e.karmic, calculate(letters, table, p.BirthDate), e.interp, e.clock.Now().UTC())
	}

	if e.cache == nil {
		return compute(), false, nil
	}

	key := CacheKey(p.FullName, p.BirthDate, system, e.karmic)
	v, _, _ := e.group.Do(key, func() (any, error) {
		cached, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			e.logger.Warn("reading cache lookup failed, recomputing", "system", system, "error", err)
		} else if ok {
			return lookup{reading: cached, hit: true}, nil
		}

		r := compute()
		if err := e.cache.Set(ctx, key, r); err != nil {
			e.logger.Warn("reading cache store failed", "system", system, "error", err)
		}
		return lookup{reading: r}, nil
	})
	res := v.(lookup)
	return res.reading.Clone(), res.hit, nil
}

func (e *Engine) notify(ctx context.Context, kind EventKind, system System, hit bool) {
	if e.observer == nil {
		return
	}
	e.observer.CalculationPerformed(ctx, CalculationEvent{
		Kind:       kind,
		System:     system,
		CacheHit:   hit,
		OccurredAt: e.clock.Now().UTC(),
	})
}
