package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/numera/internal/profile"
	"github.com/kalambet/numera/internal/storage"
)

type ProfileRequest struct {
	FullName  string `json:"full_name"`
	BirthDate string `json:"birth_date"`
}

type profileReadingRequest struct {
	System string `json:"system"`
}

func handleCreateProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProfileRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.FullName == "" || req.BirthDate == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "full_name and birth_date are required")
			return
		}
		p, err := deps.Profiles.Create(req.FullName, req.BirthDate)
		if err != nil {
			domainError(w, "profile", err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func handleListProfiles(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)
		offset := parseIntParam(r, "offset", 0, 0)

		profiles, err := deps.Profiles.List(limit, offset)
		if err != nil {
			domainError(w, "profiles", err)
			return
		}
		if profiles == nil {
			profiles = []profile.Profile{}
		}
		writeJSON(w, http.StatusOK, profiles)
	}
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Profiles.Get(chi.URLParam(r, "id"))
		if err != nil {
			domainError(w, "profile", err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleDeleteProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Profiles.Delete(chi.URLParam(r, "id")); err != nil {
			domainError(w, "profile", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func handleProfileReading(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The body is optional; an empty one selects the default system.
		var req profileReadingRequest
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		if err := decodeOptional(r.Body, &req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		saved, err := deps.Profiles.Reading(r.Context(), chi.URLParam(r, "id"), deps.system(req.System))
		if err != nil {
			domainError(w, "profile", err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

func handleProfileCompatibility(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := deps.Profiles.Compatibility(r.Context(),
			chi.URLParam(r, "id"), chi.URLParam(r, "other"),
			deps.system(r.URL.Query().Get("system")))
		if err != nil {
			domainError(w, "profile", err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func handleStats(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := parseIntParam(r, "days", 7, 366)
		if days == 0 {
			days = 1
		}
		today := deps.Now().UTC().Truncate(24 * time.Hour)
		since := today.AddDate(0, 0, -(days - 1))

		tallies, err := deps.Tallies.Tallies(since)
		if err != nil {
			domainError(w, "stats", err)
			return
		}
		if tallies == nil {
			tallies = []storage.Tally{}
		}
		writeJSON(w, http.StatusOK, tallies)
	}
}
