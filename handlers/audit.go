// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/ward-ballot/audit"
	"github.com/danielhkuo/ward-ballot/middleware"
	"github.com/danielhkuo/ward-ballot/models"
	"github.com/danielhkuo/ward-ballot/votecrypto"
)

type AuditHandler struct {
	verifier *audit.Verifier
}

func NewAuditHandler(db *sql.DB, crypto votecrypto.Config) *AuditHandler {
	return &AuditHandler{verifier: audit.NewVerifier(db, crypto)}
}

// VerifyVote handles POST /audit/verify
// Requires X-Admin-Key header
func (h *AuditHandler) VerifyVote(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.VoteID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "vote_id is required")
		return
	}
	voteID, err := strconv.ParseInt(req.VoteID.String(), 10, 64)
	if err != nil || voteID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, audit.ErrInvalidVoteID.Error())
		return
	}

	resp, err := h.verifier.Verify(r.Context(), voteID)
	if errors.Is(err, audit.ErrInvalidVoteID) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to verify vote", "error", err, "vote_id", voteID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("vote audited",
		"vote_id", voteID,
		"signature_valid", resp.Signature.Valid,
		"hash_valid", resp.Hash.Valid,
	)

	middleware.JSONResponse(w, http.StatusOK, resp)
}
