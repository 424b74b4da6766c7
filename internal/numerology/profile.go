package numerology

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for birth dates.
const DateLayout = "2006-01-02"

// DefaultMinBirthYear is the earliest accepted birth year unless configured.
const DefaultMinBirthYear = 1800

// BirthProfile is the input to every calculation.
type BirthProfile struct {
	FullName  string
	BirthDate time.Time
}

// ParseBirthDate parses an ISO YYYY-MM-DD date.
func ParseBirthDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &ValidationError{Field: "birth_date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return t, nil
}

// calendarDate drops the clock and location, keeping the calendar day.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// validateProfile checks the profile and returns the name's letters.
func validateProfile(p BirthProfile, minYear int, today time.Time) (nameLetters, error) {
	if strings.TrimSpace(p.FullName) == "" {
		return nameLetters{}, &ValidationError{Field: "full_name", Reason: "is required"}
	}
	letters := splitLetters(p.FullName)
	if letters.all == "" {
		return nameLetters{}, &ValidationError{Field: "full_name", Reason: "must contain at least one letter"}
	}

	if p.BirthDate.IsZero() {
		return nameLetters{}, &ValidationError{Field: "birth_date", Reason: "is required"}
	}
	date := calendarDate(p.BirthDate)
	if date.Year() < minYear {
		return nameLetters{}, &ValidationError{Field: "birth_date", Reason: fmt.Sprintf("year must be %d or later", minYear)}
	}
	if date.After(calendarDate(today.UTC())) {
		return nameLetters{}, &ValidationError{Field: "birth_date", Reason: "must not be in the future"}
	}
	return letters, nil
}
