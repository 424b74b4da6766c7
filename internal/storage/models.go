package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Profile is a stored birth profile. BirthDate is YYYY-MM-DD.
type Profile struct {
	ID        string
	FullName  string
	BirthDate string
	CreatedAt time.Time
}

// Reading is a persisted reading. The headline numbers are columns so they
// can be listed without decoding PayloadJSON, which holds the full reading.
type Reading struct {
	ID          string
	ProfileID   string // empty for ad-hoc readings
	FullName    string
	BirthDate   string
	System      string
	LifePath    int
	Destiny     int
	SoulUrge    int
	Personality int
	Birthday    int
	PayloadJSON string
	CreatedAt   time.Time
}

type Job struct {
	ID          string
	Type        string
	PayloadJSON string
	Status      string // "pending", "running", "completed", "failed"
	Attempts    int
	MaxAttempts int
	RunAfter    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastError   string
}

// Tally counts calculations of one kind and system on one UTC day.
type Tally struct {
	Day          string `json:"day"`
	Kind         string `json:"kind"`
	System       string `json:"system"`
	Computations int    `json:"computations"`
	CacheHits    int    `json:"cache_hits"`
}
