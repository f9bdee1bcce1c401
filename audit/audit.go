// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/ward-ballot/metrics"
	"github.com/danielhkuo/ward-ballot/models"
	"github.com/danielhkuo/ward-ballot/votecrypto"
)

var ErrInvalidVoteID = errors.New("vote_id must be a positive integer")

// Check messages
const (
	MsgNotFound          = "not found"
	MsgDecryptionFailed  = "decryption failed"
	MsgSignatureValid    = "Signature is valid"
	MsgSignatureMismatch = "Signature mismatch"
	MsgHashValid         = "Hash is valid"
	MsgHashMismatch      = "Hash mismatch"
)

const (
	checkSignature = "signature"
	checkHash      = "hash"
)

// Verifier recomputes the integrity fields of stored votes. It never
// writes.
type Verifier struct {
	db     *sql.DB
	crypto votecrypto.Config
}

func NewVerifier(db *sql.DB, crypto votecrypto.Config) *Verifier {
	return &Verifier{db: db, crypto: crypto}
}

// Verify runs both checks against one vote
func (v *Verifier) Verify(ctx context.Context, voteID int64) (models.VerifyVoteResponse, error) {
	sig, err := v.VerifySignature(ctx, voteID)
	if err != nil {
		return models.VerifyVoteResponse{}, err
	}
	hash, err := v.VerifyHash(ctx, voteID)
	if err != nil {
		return models.VerifyVoteResponse{}, err
	}
	return models.VerifyVoteResponse{Signature: sig, Hash: hash}, nil
}

// VerifySignature recomputes the HMAC over the decrypted candidate and
// compares it to the stored signature.
func (v *Verifier) VerifySignature(ctx context.Context, voteID int64) (models.CheckResult, error) {
	vote, candidateID, res, err := v.open(ctx, voteID, checkSignature)
	if err != nil || res != nil {
		return deref(res), err
	}

	want := v.crypto.VoteSignature(vote.VoterID, vote.ElectionID, vote.PostID, candidateID)
	if !votecrypto.Equal(want, vote.Signature) {
		return record(checkSignature, models.CheckResult{Valid: false, Message: MsgSignatureMismatch}), nil
	}
	return record(checkSignature, models.CheckResult{Valid: true, Message: MsgSignatureValid}), nil
}

// VerifyHash recomputes the salted hash over the decrypted candidate and
// compares it to the stored vote_hash.
func (v *Verifier) VerifyHash(ctx context.Context, voteID int64) (models.CheckResult, error) {
	vote, candidateID, res, err := v.open(ctx, voteID, checkHash)
	if err != nil || res != nil {
		return deref(res), err
	}

	want := votecrypto.VoteHash(vote.VoterID, vote.ElectionID, candidateID, vote.PostID, vote.Salt)
	if !votecrypto.Equal(want, vote.VoteHash) {
		return record(checkHash, models.CheckResult{Valid: false, Message: MsgHashMismatch}), nil
	}
	return record(checkHash, models.CheckResult{Valid: true, Message: MsgHashValid}), nil
}

// open loads a vote and decrypts its candidate reference. A non-nil
// CheckResult ends the check early.
func (v *Verifier) open(ctx context.Context, voteID int64, check string) (models.Vote, int64, *models.CheckResult, error) {
	if voteID <= 0 {
		return models.Vote{}, 0, nil, ErrInvalidVoteID
	}

	vote, err := v.loadVote(ctx, voteID)
	if err == sql.ErrNoRows {
		res := record(check, models.CheckResult{Valid: false, Message: MsgNotFound})
		return models.Vote{}, 0, &res, nil
	}
	if err != nil {
		return models.Vote{}, 0, nil, err
	}

	candidateID, err := v.crypto.DecryptCandidateID(vote.EncryptedCandidateID)
	if err != nil {
		metrics.DecryptFailures.WithLabelValues("audit").Inc()
		slog.Warn("vote failed to decrypt during audit", "vote_id", voteID, "check", check)
		res := record(check, models.CheckResult{Valid: false, Message: MsgDecryptionFailed})
		return models.Vote{}, 0, &res, nil
	}

	return vote, candidateID, nil, nil
}

func (v *Verifier) loadVote(ctx context.Context, voteID int64) (models.Vote, error) {
	var vote models.Vote
	err := v.db.QueryRowContext(ctx, `
		SELECT vote_id, voter_id, election_id, candidate_id, post_id,
		       encrypted_candidate_id, salt, vote_hash, signature, created_at
		FROM votes
		WHERE vote_id = $1
	`, voteID).Scan(&vote.ID, &vote.VoterID, &vote.ElectionID, &vote.CandidateID, &vote.PostID,
		&vote.EncryptedCandidateID, &vote.Salt, &vote.VoteHash, &vote.Signature, &vote.CreatedAt)
	if err != nil && err != sql.ErrNoRows {
		return vote, fmt.Errorf("failed to query vote: %w", err)
	}
	return vote, err
}

func record(check string, res models.CheckResult) models.CheckResult {
	metrics.AuditChecks.WithLabelValues(check, metrics.AuditResult(res.Valid)).Inc()
	return res
}

func deref(res *models.CheckResult) models.CheckResult {
	if res == nil {
		return models.CheckResult{}
	}
	return *res
}
