// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/ward-ballot/ledger"
	"github.com/danielhkuo/ward-ballot/middleware"
	"github.com/danielhkuo/ward-ballot/models"
	"github.com/danielhkuo/ward-ballot/store"
	"github.com/danielhkuo/ward-ballot/tally"
	"github.com/danielhkuo/ward-ballot/votecrypto"
)

type ResultsHandler struct {
	engine *tally.Engine
}

func NewResultsHandler(db *sql.DB, crypto votecrypto.Config, lg *ledger.Ledger) *ResultsHandler {
	return &ResultsHandler{engine: tally.NewEngine(db, store.New(db), crypto, lg)}
}

// GetFinalResults handles GET /results/final?election_id=
// Results are sealed until the election is completed
func (h *ResultsHandler) GetFinalResults(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("election_id")
	if raw == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id is required")
		return
	}
	electionID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || electionID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id must be a positive integer")
		return
	}

	res, err := h.engine.FinalResults(r.Context(), electionID)
	if errors.Is(err, tally.ErrElectionNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if errors.Is(err, tally.ErrElectionNotCompleted) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Results are hidden until the election is completed")
		return
	}
	if err != nil {
		slog.Error("failed to compute final results", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Results not available")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.FinalResultsResponse{
		Success:      true,
		ElectionID:   res.Election.ID,
		ElectionName: res.Election.Name,
		FinalResults: res.Posts,
		Parties:      res.Parties,
	})
}

// GetLiveResults handles GET /results/live
// Recomputed from the vote rows on every call
func (h *ResultsHandler) GetLiveResults(w http.ResponseWriter, r *http.Request) {
	elections, err := h.engine.LiveResults(r.Context())
	if err != nil {
		slog.Error("failed to compute live results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Results not available")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.LiveResultsResponse{
		Success:     true,
		Elections:   elections,
		GeneratedAt: time.Now().UTC(),
	})
}
