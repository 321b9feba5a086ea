/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/friendsincode/glada/internal/models"
	"github.com/friendsincode/glada/internal/ruleset"
	"github.com/go-chi/chi/v5"
)

type ruleSetResponse struct {
	ID string `json:"id"`
	ruleset.Document
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRuleSetResponse(rs *models.RuleSet) ruleSetResponse {
	return ruleSetResponse{
		ID:        rs.ID,
		Document:  *ruleset.ToDocument(rs),
		CreatedAt: rs.CreatedAt,
		UpdatedAt: rs.UpdatedAt,
	}
}

func (a *API) handleRuleSetsList(w http.ResponseWriter, r *http.Request) {
	sets, err := a.store.List(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("list rule sets failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	out := make([]ruleSetResponse, 0, len(sets))
	for i := range sets {
		out = append(out, toRuleSetResponse(&sets[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleRuleSetsCreate(w http.ResponseWriter, r *http.Request) {
	doc, ok := a.decodeDocument(w, r)
	if !ok {
		return
	}

	rs, err := a.store.Create(r.Context(), doc)
	if err != nil {
		a.writeStoreError(w, err, "create rule set failed")
		return
	}
	writeJSON(w, http.StatusCreated, toRuleSetResponse(rs))
}

func (a *API) handleRuleSetsGet(w http.ResponseWriter, r *http.Request) {
	rs, err := a.store.Get(r.Context(), chi.URLParam(r, "ruleSetID"))
	if err != nil {
		a.writeStoreError(w, err, "get rule set failed")
		return
	}
	writeJSON(w, http.StatusOK, toRuleSetResponse(rs))
}

func (a *API) handleRuleSetsReplace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ruleSetID")

	doc, ok := a.decodeDocument(w, r)
	if !ok {
		return
	}

	rs, err := a.store.Replace(r.Context(), id, doc)
	if err != nil {
		a.writeStoreError(w, err, "replace rule set failed")
		return
	}
	a.dispatch.Invalidate(r.Context(), id)
	writeJSON(w, http.StatusOK, toRuleSetResponse(rs))
}

func (a *API) handleRuleSetsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ruleSetID")

	if err := a.store.Delete(r.Context(), id); err != nil {
		a.writeStoreError(w, err, "delete rule set failed")
		return
	}
	a.dispatch.Invalidate(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// decodeDocument reads a JSON document, or YAML when the request says so.
// On failure the response has been written.
func (a *API) decodeDocument(w http.ResponseWriter, r *http.Request) (*ruleset.Document, bool) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml":
		doc, err := ruleset.Decode(body)
		if err != nil {
			writeErrorDetail(w, http.StatusBadRequest, "invalid_document", err.Error())
			return nil, false
		}
		return doc, true
	}

	var doc ruleset.Document
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return nil, false
	}
	return &doc, true
}

// writeStoreError maps store and validation errors to responses.
func (a *API) writeStoreError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ruleset.ErrRuleSetNotFound):
		writeError(w, http.StatusNotFound, "ruleset_not_found")
	case errors.Is(err, ruleset.ErrDuplicateName):
		writeError(w, http.StatusConflict, "ruleset_name_taken")
	case errors.Is(err, ruleset.ErrInvalidDocument):
		writeErrorDetail(w, http.StatusUnprocessableEntity, "invalid_document", err.Error())
	default:
		a.logger.Error().Err(err).Msg(msg)
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}
