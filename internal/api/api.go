/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes rule set management and action resolution over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/friendsincode/glada/internal/dispatch"
	"github.com/friendsincode/glada/internal/ruleset"
	"github.com/friendsincode/glada/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies; rule set documents are small.
const maxBodyBytes = 1 << 20

// API exposes HTTP handlers.
type API struct {
	store    *ruleset.Store
	dispatch *dispatch.Service
	logger   zerolog.Logger
}

// New constructs the API handler set.
func New(store *ruleset.Store, dispatchSvc *dispatch.Service, logger zerolog.Logger) *API {
	return &API{
		store:    store,
		dispatch: dispatchSvc,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// Routes registers all API routes on r.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)
		r.Post("/evaluate", a.handleEvaluate)

		r.Route("/rulesets", func(r chi.Router) {
			r.Get("/", a.handleRuleSetsList)
			r.Post("/", a.handleRuleSetsCreate)
			r.Route("/{ruleSetID}", func(r chi.Router) {
				r.Get("/", a.handleRuleSetsGet)
				r.Put("/", a.handleRuleSetsReplace)
				r.Delete("/", a.handleRuleSetsDelete)
				r.Get("/action", a.handleRuleSetAction)
			})
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// parseAt reads an optional instant. Empty input means the service clock.
func (a *API) parseAt(raw string) (time.Time, error) {
	if raw == "" {
		return a.dispatch.Now(), nil
	}
	return dispatch.ParseInstant(raw, a.dispatch.Location())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeErrorDetail adds a human readable reason, used for document
// validation failures where the code alone does not locate the problem.
func writeErrorDetail(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, map[string]string{"error": code, "detail": detail})
}
