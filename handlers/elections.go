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
)

type ElectionHandler struct {
	store  *store.Store
	ledger *ledger.Ledger
}

func NewElectionHandler(db *sql.DB, lg *ledger.Ledger) *ElectionHandler {
	return &ElectionHandler{store: store.New(db), ledger: lg}
}

// GetBallot handles GET /elections/{id}/ballot
// Returns the posts and candidates a voter chooses from
func (h *ElectionHandler) GetBallot(w http.ResponseWriter, r *http.Request) {
	electionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || electionID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id must be a positive integer")
		return
	}

	ctx := r.Context()
	election, err := h.store.Election(ctx, electionID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	posts, err := h.store.Posts(ctx)
	if err != nil {
		slog.Error("failed to query posts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	candidates, err := h.store.ElectionCandidates(ctx, election)
	if err != nil {
		slog.Error("failed to query candidates", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	byPost := make(map[int64][]models.Candidate)
	for _, c := range candidates {
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}

	sheet := models.BallotSheet{Election: election, Posts: make([]models.BallotPost, 0, len(posts))}
	for _, p := range posts {
		selections := 1
		if p.Name == models.PostNameWardMember {
			selections = models.WardMemberSeats
		}

		list := byPost[p.ID]
		if list == nil {
			list = []models.Candidate{}
		}
		sheet.Posts = append(sheet.Posts, models.BallotPost{
			PostID:     p.ID,
			PostName:   p.Name,
			Selections: selections,
			Candidates: list,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, sheet)
}

// RefreshStatuses handles POST /admin/elections/refresh-status
// Requires X-Admin-Key header
func (h *ElectionHandler) RefreshStatuses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := h.store.RefreshElectionStatuses(ctx, time.Now())
	if err != nil {
		slog.Error("failed to refresh election statuses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to refresh statuses")
		return
	}

	reset, err := h.ledger.ResetStaleVotedFlags(ctx)
	if err != nil {
		slog.Error("failed to reset voted flags", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to refresh statuses")
		return
	}

	slog.Info("election statuses refreshed",
		"started", res.Started,
		"completed", res.Completed,
		"voters_reset", reset,
	)

	middleware.JSONResponse(w, http.StatusOK, models.RefreshStatusResponse{
		Started:     res.Started,
		Completed:   res.Completed,
		VotersReset: reset,
	})
}
