/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/friendsincode/glada/internal/dispatch"
	"github.com/friendsincode/glada/internal/ruleset"
	"github.com/go-chi/chi/v5"
)

func (a *API) handleRuleSetAction(w http.ResponseWriter, r *http.Request) {
	at, err := a.parseAt(r.URL.Query().Get("at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_at")
		return
	}

	decision, err := a.dispatch.Resolve(r.Context(), chi.URLParam(r, "ruleSetID"), at)
	if err != nil {
		a.writeStoreError(w, err, "resolve action failed")
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

type evaluateRequest struct {
	Document *ruleset.Document `json:"document"`
	At       string            `json:"at"`
}

// handleEvaluate answers for a document supplied in the request without
// storing it.
func (a *API) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Document == nil {
		writeErrorDetail(w, http.StatusBadRequest, "invalid_document", "document is required")
		return
	}

	at, err := a.parseAt(req.At)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_at")
		return
	}

	decision, err := dispatch.EvaluateDocument(req.Document, at)
	if err != nil {
		if errors.Is(err, ruleset.ErrInvalidDocument) {
			writeErrorDetail(w, http.StatusUnprocessableEntity, "invalid_document", err.Error())
			return
		}
		a.logger.Error().Err(err).Msg("evaluate document failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, decision)
}
