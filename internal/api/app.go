package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kalambet/numera/internal/numerology"
	"github.com/kalambet/numera/internal/profile"
	"github.com/kalambet/numera/internal/storage"
)

// Calculator computes readings. Implemented by *numerology.Engine.
type Calculator interface {
	ComputeReading(ctx context.Context, fullName string, birthDate time.Time, system numerology.System) (numerology.Reading, error)
	ComputeCompatibility(ctx context.Context, a, b numerology.BirthProfile, system numerology.System) (numerology.CompatibilityResult, error)
}

// TallyReader reads daily calculation counters. Implemented by storage.Store.
type TallyReader interface {
	Tallies(since time.Time) ([]storage.Tally, error)
}

type AppDeps struct {
	Engine        Calculator
	Profiles      *profile.Manager
	Tallies       TallyReader
	DefaultSystem numerology.System
	Token         string
	Metrics       http.Handler     // optional; served without auth at /metrics
	Now           func() time.Time // defaults to time.Now
}

// system resolves a request's system name. Empty selects the default.
// Unknown names are passed through so the engine rejects them after
// validating the rest of the input.
func (d AppDeps) system(name string) numerology.System {
	if strings.TrimSpace(name) == "" {
		return d.DefaultSystem
	}
	s, err := numerology.ParseSystem(name)
	if err != nil {
		return numerology.System(name)
	}
	return s
}

// NewAppHandler returns the REST API. Everything except /health and
// /metrics requires the bearer token.
func NewAppHandler(deps AppDeps) http.Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.DefaultSystem == "" {
		deps.DefaultSystem = numerology.Pythagorean
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/readings", handleCreateReading(deps))
		r.Get("/readings", handleListReadings(deps))
		r.Get("/readings/{id}", handleGetReading(deps))
		r.Delete("/readings/{id}", handleDeleteReading(deps))
		r.Post("/compatibility", handleCompatibility(deps))
		r.Get("/interpretations/{category}/{number}", handleInterpretation)
		r.Get("/cycles", handleCycles(deps))

		r.Post("/profiles", handleCreateProfile(deps))
		r.Get("/profiles", handleListProfiles(deps))
		r.Get("/profiles/{id}", handleGetProfile(deps))
		r.Delete("/profiles/{id}", handleDeleteProfile(deps))
		r.Post("/profiles/{id}/reading", handleProfileReading(deps))
		r.Get("/profiles/{id}/compatibility/{other}", handleProfileCompatibility(deps))

		r.Get("/stats", handleStats(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
