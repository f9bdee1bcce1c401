// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ward-ballot/auth"
	"github.com/danielhkuo/ward-ballot/ballot"
	"github.com/danielhkuo/ward-ballot/cliparse"
	"github.com/danielhkuo/ward-ballot/ledger"
	"github.com/danielhkuo/ward-ballot/metrics"
	"github.com/danielhkuo/ward-ballot/middleware"
	"github.com/danielhkuo/ward-ballot/models"
	"github.com/danielhkuo/ward-ballot/store"
)

type VotingHandler struct {
	cfg       cliparse.Config
	store     *store.Store
	validator *ballot.Validator
	ledger    *ledger.Ledger
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config, lg *ledger.Ledger) *VotingHandler {
	st := store.New(db)
	return &VotingHandler{
		cfg:       cfg,
		store:     st,
		validator: ballot.NewValidator(st),
		ledger:    lg,
	}
}

// voterFromRequest resolves the X-Voter-Token header to a voter id. It
// writes the 401 response itself when the token is missing or invalid.
func (h *VotingHandler) voterFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := r.Header.Get("X-Voter-Token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-Token header required")
		return "", false
	}

	voterID, err := auth.ParseVoterToken(token, h.cfg.VoterTokenSecret)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid voter token")
		return "", false
	}
	return voterID, true
}

// SubmitBallot handles POST /ballots
func (h *VotingHandler) SubmitBallot(w http.ResponseWriter, r *http.Request) {
	voterID, ok := h.voterFromRequest(w, r)
	if !ok {
		return
	}

	// Parse request
	var req models.SubmitBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		if errors.Is(err, models.ErrInvalidSelection) {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ElectionID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id is required")
		return
	}
	if len(req.Votes) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "votes cannot be empty")
		return
	}

	res, err := h.validator.Validate(r.Context(), voterID, req)
	if err != nil {
		h.rejectBallot(w, voterID, req.ElectionID, err)
		return
	}

	out, err := h.ledger.CastBallot(r.Context(), res.Voter, res.Election, res.Votes)
	if err != nil {
		h.rejectBallot(w, voterID, req.ElectionID, err)
		return
	}

	resp := models.SubmitBallotResponse{
		IsVoted:         out.IsVoted,
		SuccessfulVotes: make([]models.RecordedVote, 0, len(out.Recorded)),
		FailedVotes:     make([]models.FailedVote, 0, len(res.Failures)+len(out.Failures)),
		WardMemberVotes: []int64{},
	}
	for _, rec := range out.Recorded {
		resp.SuccessfulVotes = append(resp.SuccessfulVotes, models.RecordedVote{
			VoteID:      rec.VoteID,
			PostID:      rec.PostID,
			PostName:    rec.PostName,
			CandidateID: rec.CandidateID,
		})
		if rec.PostName == models.PostNameWardMember {
			resp.WardMemberVotes = append(resp.WardMemberVotes, rec.CandidateID)
		}
	}
	for _, f := range append(res.Failures, out.Failures...) {
		resp.FailedVotes = append(resp.FailedVotes, models.FailedVote{
			PostID:      f.PostID,
			CandidateID: f.CandidateID,
			Message:     f.Message,
		})
	}

	if len(resp.SuccessfulVotes) == 0 {
		metrics.BallotsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		resp.Message = "No votes were recorded"
		middleware.JSONResponse(w, http.StatusUnprocessableEntity, resp)
		return
	}

	metrics.BallotsTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
	resp.Success = true
	resp.Message = "Ballot submitted successfully"
	if len(resp.FailedVotes) > 0 {
		resp.Message = "Ballot submitted with some failed votes"
	}

	slog.Info("ballot submitted",
		"election_id", req.ElectionID,
		"votes", len(resp.SuccessfulVotes),
		"failed", len(resp.FailedVotes),
	)

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// rejectBallot maps a submission-level error to its HTTP response
func (h *VotingHandler) rejectBallot(w http.ResponseWriter, voterID string, electionID int64, err error) {
	status, message := http.StatusInternalServerError, "Failed to record ballot"
	outcome := metrics.OutcomeRejected

	switch {
	case errors.Is(err, ballot.ErrElectionNotFound):
		status, message = http.StatusNotFound, "Election not found"
	case errors.Is(err, ballot.ErrElectionNotActive):
		status, message = http.StatusConflict, "Election is not active"
	case errors.Is(err, ballot.ErrVoterNotFound):
		status, message = http.StatusNotFound, "Voter not found"
	case errors.Is(err, ballot.ErrVoterNotApproved):
		status, message = http.StatusForbidden, "Voter is not approved"
	case errors.Is(err, ballot.ErrVoterNotEligible):
		status, message = http.StatusForbidden, "Voter is not eligible for this election"
	case errors.Is(err, ballot.ErrAlreadyVoted):
		status, message = http.StatusConflict, "Voter has already voted"
	case errors.Is(err, ballot.ErrEmptyBallot), errors.Is(err, ballot.ErrWardMemberCountInvalid):
		status, message = http.StatusUnprocessableEntity, err.Error()
	default:
		// Transaction failures and lookup errors share one generic message
		outcome = metrics.OutcomeFailed
		slog.Error("ballot failed", "voter_id", voterID, "election_id", electionID, "error", err)
	}

	metrics.BallotsTotal.WithLabelValues(outcome).Inc()
	if outcome == metrics.OutcomeRejected {
		slog.Info("ballot rejected", "election_id", electionID, "reason", err)
	}
	middleware.ErrorResponse(w, status, message)
}

// GetStatus handles GET /voters/me/status
func (h *VotingHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	voterID, ok := h.voterFromRequest(w, r)
	if !ok {
		return
	}

	voter, err := h.store.Voter(r.Context(), voterID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return
	}
	if err != nil {
		slog.Error("failed to query voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoterStatusResponse{
		VoterID:    voter.VoterID,
		IsVerified: voter.IsVerified,
		IsVoted:    voter.IsVoted,
	})
}
