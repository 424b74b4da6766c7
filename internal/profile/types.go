package profile

import (
	"time"

	"github.com/kalambet/numera/internal/numerology"
)

// Profile is a stored birth profile.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	BirthDate string    `json:"birth_date"`
	CreatedAt time.Time `json:"created_at"`
}

// BirthProfile converts p into calculation input.
func (p Profile) BirthProfile() (numerology.BirthProfile, error) {
	d, err := numerology.ParseBirthDate(p.BirthDate)
	if err != nil {
		return numerology.BirthProfile{}, err
	}
	return numerology.BirthProfile{FullName: p.FullName, BirthDate: d}, nil
}

// SavedReading is a persisted reading. The reading's fields are flattened
// into the JSON object next to the record metadata.
type SavedReading struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
	numerology.Reading
}
