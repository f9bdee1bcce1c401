// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/ward-ballot/ballot"
	"github.com/danielhkuo/ward-ballot/db"
	"github.com/danielhkuo/ward-ballot/metrics"
	"github.com/danielhkuo/ward-ballot/models"
	"github.com/danielhkuo/ward-ballot/notify"
	"github.com/danielhkuo/ward-ballot/votecrypto"
)

// ErrTransactionFailed means nothing from the ballot was persisted.
var ErrTransactionFailed = errors.New("ballot transaction failed")

// Per-item failure messages
const (
	MsgDuplicateVote = "Duplicate vote"
	MsgInsertFailed  = "Failed to record vote"
)

const notifyTimeout = 30 * time.Second

// UnitOfWork opens the transaction a ballot is written in and runs the
// statements that happen outside it.
type UnitOfWork interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Ledger struct {
	uow      UnitOfWork
	crypto   votecrypto.Config
	notifier notify.Notifier
	now      func() time.Time
}

func New(uow UnitOfWork, crypto votecrypto.Config, notifier notify.Notifier) *Ledger {
	return &Ledger{uow: uow, crypto: crypto, notifier: notifier, now: time.Now}
}

// Recorded is a committed vote row.
type Recorded struct {
	VoteID      int64
	PostID      int64
	PostName    string
	CandidateID int64
}

// Outcome splits a committed ballot into recorded votes and per-item
// failures. IsVoted is 1 when at least one vote was recorded.
type Outcome struct {
	Recorded []Recorded
	Failures []ballot.Failure
	IsVoted  int
}

// CastBallot writes votes for voter in election inside one transaction.
//
// A failure to insert a single vote is recorded in Outcome.Failures and the
// rest of the ballot proceeds. Any other error rolls back every row and is
// returned as ErrTransactionFailed, ballot.ErrAlreadyVoted or
// ballot.ErrWardMemberCountInvalid.
func (l *Ledger) CastBallot(ctx context.Context, voter models.Voter, election models.Election, votes []ballot.Vote) (*Outcome, error) {
	tx, err := l.uow.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		return nil, ErrTransactionFailed
	}
	defer tx.Rollback()

	// Claiming the voter row first serializes concurrent submissions by the
	// same voter before any vote insert can collide
	res, err := tx.ExecContext(ctx, `
		UPDATE users SET is_voted = 1 WHERE voter_id = $1 AND is_voted = 0
	`, voter.VoterID)
	if err != nil {
		slog.Error("failed to mark voter", "voter_id", voter.VoterID, "error", err)
		return nil, ErrTransactionFailed
	}
	n, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to mark voter", "voter_id", voter.VoterID, "error", err)
		return nil, ErrTransactionFailed
	}
	if n == 0 {
		return nil, ballot.ErrAlreadyVoted
	}

	out := &Outcome{}
	wardMembers, wardMembersRecorded := 0, 0

	for _, v := range votes {
		if v.PostName == models.PostNameWardMember {
			wardMembers++
		}

		rec, msg, err := l.insertVote(ctx, tx, voter.VoterID, election.ID, v)
		if err != nil {
			slog.Error("ballot rolled back", "voter_id", voter.VoterID, "election_id", election.ID, "error", err)
			return nil, ErrTransactionFailed
		}
		if msg != "" {
			out.Failures = append(out.Failures, ballot.Failure{PostID: v.PostID, CandidateID: v.CandidateID, Message: msg})
			continue
		}

		if v.PostName == models.PostNameWardMember {
			wardMembersRecorded++
		}
		out.Recorded = append(out.Recorded, rec)
	}

	// A partial Ward Member set must never commit
	if wardMembersRecorded != wardMembers {
		return nil, ballot.ErrWardMemberCountInvalid
	}

	// Rolling back also clears the is_voted claim
	if len(out.Recorded) == 0 {
		return out, nil
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit ballot", "voter_id", voter.VoterID, "error", err)
		return nil, ErrTransactionFailed
	}
	out.IsVoted = 1

	metrics.VotesRecorded.Add(float64(len(out.Recorded)))
	metrics.VoteItemFailures.Add(float64(len(out.Failures)))
	slog.Info("ballot cast",
		"election_id", election.ID,
		"votes", len(out.Recorded),
		"failed", len(out.Failures),
	)

	if _, err := l.ResetStaleVotedFlags(ctx); err != nil {
		slog.Warn("failed to reset stale voted flags", "error", err)
	}

	l.sendConfirmation(voter, election, out.Recorded)

	return out, nil
}

// insertVote writes one vote under a savepoint. A non-empty message is a
// per-item failure; an error aborts the ballot.
func (l *Ledger) insertVote(ctx context.Context, tx *sql.Tx, voterID string, electionID int64, v ballot.Vote) (Recorded, string, error) {
	salt, err := votecrypto.NewSalt()
	if err != nil {
		return Recorded{}, "", err
	}
	encrypted, err := l.crypto.EncryptCandidateID(v.CandidateID)
	if err != nil {
		return Recorded{}, "", fmt.Errorf("failed to encrypt candidate: %w", err)
	}
	hash := votecrypto.VoteHash(voterID, electionID, v.CandidateID, v.PostID, salt)
	signature := l.crypto.VoteSignature(voterID, electionID, v.PostID, v.CandidateID)

	// Postgres aborts the whole transaction on a failed statement
	if _, err := tx.ExecContext(ctx, `SAVEPOINT vote_item`); err != nil {
		return Recorded{}, "", fmt.Errorf("failed to create savepoint: %w", err)
	}

	var voteID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO votes (voter_id, election_id, candidate_id, post_id, encrypted_candidate_id, salt, vote_hash, signature)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING vote_id
	`, voterID, electionID, v.CandidateID, v.PostID, encrypted, salt, hash, signature).Scan(&voteID)
	if err != nil {
		if _, rbErr := tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT vote_item`); rbErr != nil {
			return Recorded{}, "", fmt.Errorf("failed to roll back savepoint: %w", rbErr)
		}
		if _, relErr := tx.ExecContext(ctx, `RELEASE SAVEPOINT vote_item`); relErr != nil {
			return Recorded{}, "", fmt.Errorf("failed to release savepoint: %w", relErr)
		}

		slog.Warn("vote not recorded", "post_id", v.PostID, "candidate_id", v.CandidateID, "error", err)
		if db.IsUniqueViolation(err) {
			return Recorded{}, MsgDuplicateVote, nil
		}
		return Recorded{}, MsgInsertFailed, nil
	}

	if _, err := tx.ExecContext(ctx, `RELEASE SAVEPOINT vote_item`); err != nil {
		return Recorded{}, "", fmt.Errorf("failed to release savepoint: %w", err)
	}

	return Recorded{VoteID: voteID, PostID: v.PostID, PostName: v.PostName, CandidateID: v.CandidateID}, "", nil
}

// ResetStaleVotedFlags clears is_voted for voters whose votes all belong to
// Completed elections. It is idempotent.
func (l *Ledger) ResetStaleVotedFlags(ctx context.Context) (int64, error) {
	res, err := l.uow.ExecContext(ctx, `
		UPDATE users SET is_voted = 0
		WHERE is_voted = 1
		  AND EXISTS (SELECT 1 FROM votes v WHERE v.voter_id = users.voter_id)
		  AND NOT EXISTS (
			SELECT 1 FROM votes v
			JOIN elections e ON e.election_id = v.election_id
			WHERE v.voter_id = users.voter_id AND e.status <> $1
		  )
	`, models.StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("failed to reset voted flags: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to reset voted flags: %w", err)
	}
	if n > 0 {
		slog.Info("voted flags reset", "voters", n)
	}
	return n, nil
}

// sendConfirmation notifies the voter without blocking the caller. Failures
// are logged only.
func (l *Ledger) sendConfirmation(voter models.Voter, election models.Election, recorded []Recorded) {
	if l.notifier == nil {
		return
	}

	c := notify.Confirmation{
		VoterID:      voter.VoterID,
		Email:        voter.Email,
		ElectionName: election.Name,
		CastAt:       l.now(),
	}
	for _, r := range recorded {
		c.Votes = append(c.Votes, notify.Recorded{VoteID: r.VoteID, PostName: r.PostName})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := l.notifier.Notify(ctx, c); err != nil {
			metrics.NotificationFailures.Inc()
			slog.Warn("failed to send vote confirmation", "voter_id", c.VoterID, "error", err)
		}
	}()
}
