package numerology

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// --- Mocks ---

type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string]Reading
	getErr  error
	setErr  error
	gets    int
	sets    int

	// entered, when set, is closed on the first Get and Get then blocks
	// until release is closed.
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]Reading)}
}

func (c *mapCache) Get(_ context.Context, key string) (Reading, bool, error) {
	if c.entered != nil {
		c.once.Do(func() { close(c.entered) })
		<-c.release
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return Reading{}, false, c.getErr
	}
	r, ok := c.entries[key]
	return r.Clone(), ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, r Reading) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = r.Clone()
	return nil
}

// countingInterpreter counts full readings by their life path lookups.
type countingInterpreter struct {
	readings atomic.Int64
}

func (c *countingInterpreter) Interpret(cat Category, n int) string {
	if cat == CategoryLifePath {
		c.readings.Add(1)
	}
	return StaticInterpreter{}.Interpret(cat, n)
}

type recordingObserver struct {
	mu     sync.Mutex
	events []CalculationEvent
}

func (o *recordingObserver) CalculationPerformed(_ context.Context, ev CalculationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

func (o *recordingObserver) snapshot() []CalculationEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]CalculationEvent, len(o.events))
	copy(out, o.events)
	return out
}

var testNow = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)

func newTestEngine(cache Cache, interp Interpreter, obs Observer) *Engine {
	return NewEngine(EngineConfig{
		Cache:       cache,
		Interpreter: interp,
		Observer:    obs,
		Clock:       &mockClock{now: testNow},
	})
}

// --- Tests ---

func TestComputeReading_JohnSmith(t *testing.T) {
	e := newTestEngine(nil, nil, nil)
	r, err := e.ComputeReading(context.Background(), "John Smith", date(t, "1990-05-15"), Pythagorean)
	if err != nil {
		t.Fatalf("ComputeReading: %v", err)
	}

	if r.LifePath != 3 || r.Destiny != 8 || r.SoulUrge != 6 || r.Personality != 11 || r.Birthday != 6 {
		t.Errorf("core = %d/%d/%d/%d/%d, want 3/8/6/11/6", r.LifePath, r.Destiny, r.SoulUrge, r.Personality, r.Birthday)
	}
	if r.BirthDate != "1990-05-15" || r.System != Pythagorean || r.KarmicMode != KarmicLiteral {
		t.Errorf("metadata = %s/%s/%s", r.BirthDate, r.System, r.KarmicMode)
	}
	if r.Accuracy != 100 {
		t.Errorf("accuracy = %d, want 100", r.Accuracy)
	}
	if !r.ComputedAt.Equal(testNow) {
		t.Errorf("computed_at = %v, want %v", r.ComputedAt, testNow)
	}
	if len(r.KarmicDebt) != 0 || len(r.MasterNumbers) != 0 {
		t.Errorf("karmic = %v masters = %v, want both empty", r.KarmicDebt, r.MasterNumbers)
	}
	if r.Interpretations.LifePath != Interpret(CategoryLifePath, 3) {
		t.Errorf("life path interpretation = %q", r.Interpretations.LifePath)
	}
	if r.Interpretations.Personality != Interpret(CategoryPersonality, 11) {
		t.Errorf("personality interpretation = %q", r.Interpretations.Personality)
	}

	wantSummary := Summary{Dominant: 11, Compatible: []int{3, 8, 5}, Lucky: []int{3, 8, 11, 5}}
	if !reflect.DeepEqual(r.Summary, wantSummary) {
		t.Errorf("summary = %+v, want %+v", r.Summary, wantSummary)
	}
}

func TestComputeReading_MasterNumbers(t *testing.T) {
	e := newTestEngine(nil, nil, nil)
	r, err := e.ComputeReading(context.Background(), "David", date(t, "1990-05-05"), Pythagorean)
	if err != nil {
		t.Fatalf("ComputeReading: %v", err)
	}
	if r.LifePath != 11 {
		t.Errorf("life path = %d, want 11", r.LifePath)
	}
	if !r.HasMaster(11) || !r.HasMaster(22) || r.HasMaster(33) {
		t.Errorf("masters = %v, want [11 22]", r.MasterNumbers)
	}
	if len(r.Interpretations.MasterNumbers) != 2 {
		t.Errorf("master interpretations = %v, want 2 entries", r.Interpretations.MasterNumbers)
	}
}

func TestComputeReading_CorrectedKarmic(t *testing.T) {
	e := NewEngine(EngineConfig{KarmicMode: KarmicCorrected, Clock: &mockClock{now: testNow}})
	r, err := e.ComputeReading(context.Background(), "Emma", date(t, "2000-01-01"), Pythagorean)
	if err != nil {
		t.Fatalf("ComputeReading: %v", err)
	}
	if !reflect.DeepEqual(r.KarmicDebt, []int{14}) {
		t.Errorf("karmic debt = %v, want [14]", r.KarmicDebt)
	}
	if len(r.Interpretations.KarmicDebt) != 1 {
		t.Errorf("karmic interpretations = %v, want 1 entry", r.Interpretations.KarmicDebt)
	}
}

func TestComputeReading_Deterministic(t *testing.T) {
	e := newTestEngine(nil, nil, nil)
	ctx := context.Background()
	a, err := e.ComputeReading(ctx, "Ada Lovelace", date(t, "1815-12-10"), Chaldean)
	if err != nil {
		t.Fatalf("ComputeReading: %v", err)
	}
	b, err := e.ComputeReading(ctx, "  ada   LOVELACE ", date(t, "1815-12-10"), Chaldean)
	if err != nil {
		t.Fatalf("ComputeReading: %v", err)
	}
	a.FullName, b.FullName = "", ""
	if !reflect.DeepEqual(a, b) {
		t.Errorf("readings differ:\n%+v\n%+v", a, b)
	}
}

func TestComputeReading_CacheHitSkipsInterpretation(t *testing.T) {
	cache := newMapCache()
	interp := &countingInterpreter{}
	obs := &recordingObserver{}
	e := newTestEngine(cache, interp, obs)
	ctx := context.Background()

	first, err := e.ComputeReading(ctx, "John Smith", date(t, "1990-05-15"), Pythagorean)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := e.ComputeReading(ctx, "JOHN  SMITH", date(t, "1990-05-15"), Pythagorean)
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if n := interp.readings.Load(); n != 1 {
		t.Errorf("interpreted %d readings, want 1", n)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached reading differs from computed one")
	}

	events := obs.snapshot()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].CacheHit || !events[1].CacheHit {
		t.Errorf("cache hits = %v/%v, want false/true", events[0].CacheHit, events[1].CacheHit)
	}
	if events[0].Kind != EventReading || events[0].System != Pythagorean {
		t.Errorf("event = %+v", events[0])
	}
}

func TestComputeReading_CacheKeySeparatesSystems(t *testing.T) {
	cache := newMapCache()
	interp := &countingInterpreter{}
	e := newTestEngine(cache, interp, nil)
	ctx := context.Background()

	for _, sys := range []System{Pythagorean, Chaldean, Pythagorean, Chaldean} {
		if _, err := e.ComputeReading(ctx, "John Smith", date(t, "1990-05-15"), sys); err != nil {
			t.Fatalf("ComputeReading(%s): %v", sys, err)
		}
	}
	if n := interp.readings.Load(); n != 2 {
		t.Errorf("interpreted %d readings, want 2", n)
	}
}

func TestComputeReading_ReturnedReadingIsolatedFromCache(t *testing.T) {
	cache := newMapCache()
	e := newTestEngine(cache, nil, nil)
	ctx := context.Background()

	r, err := e.ComputeReading(ctx, "David", date(t, "1990-05-05"), Pythagorean)
	if err != nil {
		t.Fatalf("ComputeReading: %v", err)
	}
	r.MasterNumbers[0] = 99

	again, err := e.ComputeReading(ctx, "David", date(t, "1990-05-05"), Pythagorean)
	if err != nil {
		t.Fatalf("ComputeReading: %v", err)
	}
	if again.MasterNumbers[0] != 11 {
		t.Errorf("cached reading was mutated: %v", again.MasterNumbers)
	}
}

func TestComputeReading_CacheFailureDegrades(t *testing.T) {
	cache := newMapCache()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")
	interp := &countingInterpreter{}
	e := newTestEngine(cache, interp, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		r, err := e.ComputeReading(ctx, "John Smith", date(t, "1990-05-15"), Pythagorean)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if r.LifePath != 3 {
			t.Errorf("call %d life path = %d, want 3", i, r.LifePath)
		}
	}
	if n := interp.readings.Load(); n != 2 {
		t.Errorf("interpreted %d readings, want 2", n)
	}
}

func TestComputeReading_ConcurrentCallsShareComputation(t *testing.T) {
	cache := newMapCache()
	cache.entered = make(chan struct{})
	cache.release = make(chan struct{})
	interp := &countingInterpreter{}
	e := newTestEngine(cache, interp, nil)
	ctx := context.Background()
	birth := date(t, "1990-05-15")

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	call := func() {
		defer wg.Done()
		if _, err := e.ComputeReading(ctx, "John Smith", birth, Pythagorean); err != nil {
			errs <- err
		}
	}

	wg.Add(1)
	go call()
	<-cache.entered
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go call()
	}
	time.Sleep(50 * time.Millisecond)
	close(cache.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("ComputeReading: %v", err)
	}
	if n := interp.readings.Load(); n != 1 {
		t.Errorf("interpreted %d readings, want 1", n)
	}
}

func TestComputeReading_ValidationErrors(t *testing.T) {
	e := newTestEngine(newMapCache(), nil, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		full   string
		birth  time.Time
		system System
		field  string
	}{
		{"empty name", "", date(t, "1990-05-15"), Pythagorean, "full_name"},
		{"whitespace name", "   ", date(t, "1990-05-15"), Pythagorean, "full_name"},
		{"no letters", "123 !!", date(t, "1990-05-15"), Pythagorean, "full_name"},
		{"zero date", "John", time.Time{}, Pythagorean, "birth_date"},
		{"too old", "John", date(t, "1799-12-31"), Pythagorean, "birth_date"},
		{"future", "John", testNow.AddDate(0, 0, 1), Pythagorean, "birth_date"},
		{"empty name beats unknown system", "", date(t, "1990-05-15"), System("klingon"), "full_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ComputeReading(ctx, tt.full, tt.birth, tt.system)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestComputeReading_BirthToday(t *testing.T) {
	e := newTestEngine(nil, nil, nil)
	if _, err := e.ComputeReading(context.Background(), "John", testNow, Pythagorean); err != nil {
		t.Errorf("birth date today rejected: %v", err)
	}
}

func TestComputeReading_FutureCheckUsesUTCDay(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		wantErr bool
	}{
		// 2026-10-19 12:00 UTC is already 2026-10-20 in UTC+14.
		{"clock ahead of UTC", time.Date(2026, time.October, 20, 2, 0, 0, 0, time.FixedZone("UTC+14", 14*3600)), true},
		// 2026-10-20 05:00 UTC is still 2026-10-19 in UTC-10.
		{"clock behind UTC", time.Date(2026, time.October, 19, 19, 0, 0, 0, time.FixedZone("UTC-10", -10*3600)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(EngineConfig{Clock: &mockClock{now: tt.now}})
			_, err := e.ComputeReading(context.Background(), "John", date(t, "2026-10-20"), Pythagorean)
			var ve *ValidationError
			if got := errors.As(err, &ve); got != tt.wantErr {
				t.Fatalf("error = %v, want validation error %v", err, tt.wantErr)
			}
			if tt.wantErr && ve.Field != "birth_date" {
				t.Errorf("field = %q, want birth_date", ve.Field)
			}
		})
	}
}

func TestComputeReading_UnknownSystem(t *testing.T) {
	cache := newMapCache()
	obs := &recordingObserver{}
	e := newTestEngine(cache, nil, obs)

	_, err := e.ComputeReading(context.Background(), "John Smith", date(t, "1990-05-15"), System("klingon"))
	if !IsConfiguration(err) {
		t.Fatalf("error = %v, want ConfigurationError", err)
	}
	if cache.gets != 0 {
		t.Errorf("cache consulted %d times for an unknown system", cache.gets)
	}
	if len(obs.snapshot()) != 0 {
		t.Errorf("observer notified on failure")
	}
}

func TestComputeCompatibility(t *testing.T) {
	obs := &recordingObserver{}
	e := newTestEngine(newMapCache(), nil, obs)
	ctx := context.Background()
	a := BirthProfile{FullName: "John Smith", BirthDate: date(t, "1990-05-15")}
	b := BirthProfile{FullName: "David", BirthDate: date(t, "1990-05-05")}

	ab, err := e.ComputeCompatibility(ctx, a, b, Pythagorean)
	if err != nil {
		t.Fatalf("ComputeCompatibility: %v", err)
	}
	ba, err := e.ComputeCompatibility(ctx, b, a, Pythagorean)
	if err != nil {
		t.Fatalf("ComputeCompatibility reversed: %v", err)
	}
	if ab != ba {
		t.Errorf("not symmetric: %+v vs %+v", ab, ba)
	}
	if ab.Overall < 10 || ab.Overall > 100 {
		t.Errorf("overall = %d, out of range", ab.Overall)
	}

	events := obs.snapshot()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Kind != EventCompatibility || events[0].CacheHit {
		t.Errorf("first event = %+v, want uncached compatibility", events[0])
	}
	if !events[1].CacheHit {
		t.Errorf("second event should be a cache hit")
	}
}

func TestComputeCompatibility_Identical(t *testing.T) {
	e := newTestEngine(nil, nil, nil)
	p := BirthProfile{FullName: "John Smith", BirthDate: date(t, "1990-05-15")}
	got, err := e.ComputeCompatibility(context.Background(), p, p, Kabbalah)
	if err != nil {
		t.Fatalf("ComputeCompatibility: %v", err)
	}
	want := CompatibilityResult{
		Overall: 100, LifePath: 100, Destiny: 100, SoulUrge: 100, Personality: 100,
		Interpretation: CompatibilityBand(100),
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestComputeCompatibility_InvalidSecondProfile(t *testing.T) {
	interp := &countingInterpreter{}
	e := newTestEngine(nil, interp, nil)
	a := BirthProfile{FullName: "John Smith", BirthDate: date(t, "1990-05-15")}
	b := BirthProfile{FullName: "", BirthDate: date(t, "1990-05-15")}

	_, err := e.ComputeCompatibility(context.Background(), a, b, Pythagorean)
	if !IsValidation(err) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if n := interp.readings.Load(); n != 0 {
		t.Errorf("computed %d readings before validation failed", n)
	}
}

func TestCacheKey(t *testing.T) {
	birth := time.Date(1990, time.May, 15, 23, 30, 0, 0, time.UTC)
	got := CacheKey("  josé  smith", birth, Chaldean, KarmicCorrected)
	want := "JOSE SMITH|1990-05-15|chaldean|corrected"
	if got != want {
		t.Errorf("CacheKey = %q, want %q", got, want)
	}
}
