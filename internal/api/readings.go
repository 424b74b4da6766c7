package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/numera/internal/numerology"
	"github.com/kalambet/numera/internal/profile"
)

type ReadingRequest struct {
	FullName  string `json:"full_name"`
	BirthDate string `json:"birth_date"`
	System    string `json:"system,omitempty"`
	Save      bool   `json:"save,omitempty"`
}

// Person identifies one side of a compatibility request.
type Person struct {
	FullName  string `json:"full_name"`
	BirthDate string `json:"birth_date"`
}

func (p Person) birthProfile() (numerology.BirthProfile, error) {
	d, err := numerology.ParseBirthDate(p.BirthDate)
	if err != nil {
		return numerology.BirthProfile{}, err
	}
	return numerology.BirthProfile{FullName: p.FullName, BirthDate: d}, nil
}

type CompatibilityRequest struct {
	A      Person `json:"a"`
	B      Person `json:"b"`
	System string `json:"system,omitempty"`
}

func handleCreateReading(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReadingRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.FullName) == "" || strings.TrimSpace(req.BirthDate) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "full_name and birth_date are required")
			return
		}

		d, err := numerology.ParseBirthDate(req.BirthDate)
		if err != nil {
			domainError(w, "reading", err)
			return
		}
		reading, err := deps.Engine.ComputeReading(r.Context(), req.FullName, d, deps.system(req.System))
		if err != nil {
			domainError(w, "reading", err)
			return
		}

		if !req.Save {
			writeJSON(w, http.StatusOK, reading)
			return
		}
		saved, err := deps.Profiles.SaveReading(reading, "")
		if err != nil {
			domainError(w, "reading", err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

func handleListReadings(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)
		offset := parseIntParam(r, "offset", 0, 0)

		readings, err := deps.Profiles.ListReadings(r.URL.Query().Get("profile_id"), limit, offset)
		if err != nil {
			domainError(w, "readings", err)
			return
		}
		if readings == nil {
			readings = []profile.SavedReading{}
		}
		writeJSON(w, http.StatusOK, readings)
	}
}

func handleGetReading(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reading, err := deps.Profiles.GetReading(chi.URLParam(r, "id"))
		if err != nil {
			domainError(w, "reading", err)
			return
		}
		writeJSON(w, http.StatusOK, reading)
	}
}

func handleDeleteReading(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Profiles.DeleteReading(chi.URLParam(r, "id")); err != nil {
			domainError(w, "reading", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func handleCompatibility(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CompatibilityRequest
		if !decodeBody(w, r, &req) {
			return
		}
		for _, p := range []Person{req.A, req.B} {
			if strings.TrimSpace(p.FullName) == "" || strings.TrimSpace(p.BirthDate) == "" {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "a and b each need full_name and birth_date")
				return
			}
		}

		a, err := req.A.birthProfile()
		if err != nil {
			domainError(w, "compatibility", err)
			return
		}
		b, err := req.B.birthProfile()
		if err != nil {
			domainError(w, "compatibility", err)
			return
		}
		result, err := deps.Engine.ComputeCompatibility(r.Context(), a, b, deps.system(req.System))
		if err != nil {
			domainError(w, "compatibility", err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

type interpretationResponse struct {
	Category string `json:"category"`
	Number   int    `json:"number"`
	Text     string `json:"text"`
}

func handleInterpretation(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || n < 0 {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "number must be a non-negative integer")
		return
	}

	raw := chi.URLParam(r, "category")
	if strings.EqualFold(raw, "compatibility") {
		writeJSON(w, http.StatusOK, interpretationResponse{Category: "compatibility", Number: n, Text: numerology.CompatibilityBand(n)})
		return
	}
	cat, err := numerology.ParseCategory(raw)
	if err != nil {
		httpError(w, http.StatusNotFound, "not_found", "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, interpretationResponse{Category: string(cat), Number: n, Text: numerology.Interpret(cat, n)})
}

type cyclesResponse struct {
	BirthDate string `json:"birth_date"`
	On        string `json:"on"`
	numerology.Cycles
}

func handleCycles(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		birth, err := numerology.ParseBirthDate(r.URL.Query().Get("birth_date"))
		if err != nil {
			domainError(w, "cycles", err)
			return
		}
		on := deps.Now().UTC()
		if s := r.URL.Query().Get("on"); s != "" {
			if on, err = numerology.ParseBirthDate(s); err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "on must be a YYYY-MM-DD date")
				return
			}
		}
		writeJSON(w, http.StatusOK, cyclesResponse{
			BirthDate: birth.Format(numerology.DateLayout),
			On:        on.Format(numerology.DateLayout),
			Cycles:    numerology.PersonalCycles(birth, on),
		})
	}
}
