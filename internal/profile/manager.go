package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/numera/internal/numerology"
	"github.com/kalambet/numera/internal/storage"
)

// Store defines the storage operations the Manager needs.
// Implemented by storage.Store.
type Store interface {
	SaveProfile(p storage.Profile) error
	GetProfile(id string) (storage.Profile, error)
	ListProfiles(limit, offset int) ([]storage.Profile, error)
	DeleteProfile(id string) error

	SaveReading(r storage.Reading) error
	GetReading(id string) (storage.Reading, error)
	ListReadings(profileID string, limit, offset int) ([]storage.Reading, error)
	DeleteReading(id string) error
}

// Calculator computes readings. Implemented by *numerology.Engine.
type Calculator interface {
	Validate(p numerology.BirthProfile) error
	ComputeReading(ctx context.Context, fullName string, birthDate time.Time, system numerology.System) (numerology.Reading, error)
	ComputeCompatibility(ctx context.Context, a, b numerology.BirthProfile, system numerology.System) (numerology.CompatibilityResult, error)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type cachedProfile struct {
	profile  Profile
	cachedAt time.Time
}

// Manager stores birth profiles and the readings computed for them.
// Profile lookups are cached briefly since profiles are immutable once
// created.
type Manager struct {
	store  Store
	calc   Calculator
	clock  Clock
	ttl    time.Duration
	newID  func() string
	logger *slog.Logger

	mu       sync.RWMutex
	profiles map[string]cachedProfile
}

// NewManager creates a Manager with a 60-second profile cache TTL.
func NewManager(store Store, calc Calculator) *Manager {
	return NewManagerWithClock(store, calc, realClock{}, 60*time.Second)
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store Store, calc Calculator, clock Clock, ttl time.Duration) *Manager {
	return &Manager{
		store:    store,
		calc:     calc,
		clock:    clock,
		ttl:      ttl,
		newID:    uuid.NewString,
		logger:   slog.Default(),
		profiles: make(map[string]cachedProfile),
	}
}

// Create validates and stores a new birth profile.
func (m *Manager) Create(fullName, birthDate string) (Profile, error) {
	d, err := numerology.ParseBirthDate(birthDate)
	if err != nil {
		return Profile{}, err
	}
	if err := m.calc.Validate(numerology.BirthProfile{FullName: fullName, BirthDate: d}); err != nil {
		return Profile{}, err
	}

	p := Profile{
		ID:        m.newID(),
		FullName:  strings.TrimSpace(fullName),
		BirthDate: d.Format(numerology.DateLayout),
		CreatedAt: m.clock.Now().UTC().Truncate(time.Second),
	}
	if err := m.store.SaveProfile(storage.Profile(p)); err != nil {
		return Profile{}, fmt.Errorf("saving profile: %w", err)
	}
	return p, nil
}

// Get returns the profile with id. Missing profiles yield an error
// wrapping storage.ErrNotFound.
func (m *Manager) Get(id string) (Profile, error) {
	// Fast path: read lock for cache hit.
	m.mu.RLock()
	if c, ok := m.profiles[id]; ok && m.clock.Now().Before(c.cachedAt.Add(m.ttl)) {
		m.mu.RUnlock()
		return c.profile, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock.
	now := m.clock.Now()
	if c, ok := m.profiles[id]; ok && now.Before(c.cachedAt.Add(m.ttl)) {
		return c.profile, nil
	}
	m.pruneLocked(now)

	sp, err := m.store.GetProfile(id)
	if err != nil {
		return Profile{}, fmt.Errorf("loading profile %s: %w", id, err)
	}
	p := Profile(sp)
	m.profiles[id] = cachedProfile{profile: p, cachedAt: now}
	return p, nil
}

// pruneLocked drops every expired cache entry. Callers hold m.mu.
func (m *Manager) pruneLocked(now time.Time) {
	for id, c := range m.profiles {
		if !now.Before(c.cachedAt.Add(m.ttl)) {
			delete(m.profiles, id)
		}
	}
}

// List returns stored profiles, newest first.
func (m *Manager) List(limit, offset int) ([]Profile, error) {
	rows, err := m.store.ListProfiles(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	out := make([]Profile, len(rows))
	for i, r := range rows {
		out[i] = Profile(r)
	}
	return out, nil
}

// Delete removes a profile and its readings.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.DeleteProfile(id); err != nil {
		return fmt.Errorf("deleting profile %s: %w", id, err)
	}
	delete(m.profiles, id)
	return nil
}

// Reading computes a reading for a stored profile and saves it.
func (m *Manager) Reading(ctx context.Context, id string, system numerology.System) (SavedReading, error) {
	p, err := m.Get(id)
	if err != nil {
		return SavedReading{}, err
	}
	bp, err := p.BirthProfile()
	if err != nil {
		return SavedReading{}, err
	}
	r, err := m.calc.ComputeReading(ctx, bp.FullName, bp.BirthDate, system)
	if err != nil {
		return SavedReading{}, err
	}
	return m.SaveReading(r, p.ID)
}

// Compatibility scores two stored profiles against each other.
func (m *Manager) Compatibility(ctx context.Context, idA, idB string, system numerology.System) (numerology.CompatibilityResult, error) {
	var profiles [2]numerology.BirthProfile
	for i, id := range []string{idA, idB} {
		p, err := m.Get(id)
		if err != nil {
			return numerology.CompatibilityResult{}, err
		}
		if profiles[i], err = p.BirthProfile(); err != nil {
			return numerology.CompatibilityResult{}, err
		}
	}
	return m.calc.ComputeCompatibility(ctx, profiles[0], profiles[1], system)
}

// SaveReading persists r, optionally attached to a profile.
func (m *Manager) SaveReading(r numerology.Reading, profileID string) (SavedReading, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return SavedReading{}, fmt.Errorf("encoding reading: %w", err)
	}
	saved := SavedReading{
		ID:        m.newID(),
		ProfileID: profileID,
		SavedAt:   m.clock.Now().UTC().Truncate(time.Second),
		Reading:   r,
	}
	row := storage.Reading{
		ID:          saved.ID,
		ProfileID:   profileID,
		FullName:    r.FullName,
		BirthDate:   r.BirthDate,
		System:      string(r.System),
		LifePath:    r.LifePath,
		Destiny:     r.Destiny,
		SoulUrge:    r.SoulUrge,
		Personality: r.Personality,
		Birthday:    r.Birthday,
		PayloadJSON: string(payload),
		CreatedAt:   saved.SavedAt,
	}
	if err := m.store.SaveReading(row); err != nil {
		return SavedReading{}, fmt.Errorf("saving reading: %w", err)
	}
	m.logger.Debug("reading saved", "id", saved.ID, "system", r.System)
	return saved, nil
}

// GetReading loads a saved reading.
func (m *Manager) GetReading(id string) (SavedReading, error) {
	row, err := m.store.GetReading(id)
	if err != nil {
		return SavedReading{}, fmt.Errorf("loading reading %s: %w", id, err)
	}
	return decodeReading(row)
}

// ListReadings returns saved readings newest first. A non-empty profileID
// limits the list to that profile.
func (m *Manager) ListReadings(profileID string, limit, offset int) ([]SavedReading, error) {
	rows, err := m.store.ListReadings(profileID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing readings: %w", err)
	}
	out := make([]SavedReading, 0, len(rows))
	for _, row := range rows {
		sr, err := decodeReading(row)
		if err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, nil
}

// DeleteReading removes a saved reading.
func (m *Manager) DeleteReading(id string) error {
	if err := m.store.DeleteReading(id); err != nil {
		return fmt.Errorf("deleting reading %s: %w", id, err)
	}
	return nil
}

func decodeReading(row storage.Reading) (SavedReading, error) {
	var r numerology.Reading
	if err := json.Unmarshal([]byte(row.PayloadJSON), &r); err != nil {
		return SavedReading{}, fmt.Errorf("decoding reading %s: %w", row.ID, err)
	}
	return SavedReading{ID: row.ID, ProfileID: row.ProfileID, SavedAt: row.CreatedAt, Reading: r}, nil
}
