// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/danielhkuo/ward-ballot/models"
	"github.com/danielhkuo/ward-ballot/store"
	"github.com/danielhkuo/ward-ballot/votecrypto"
)

var (
	ErrElectionNotFound     = errors.New("election not found")
	ErrElectionNotCompleted = errors.New("election is not completed")
)

// VotedFlagResetter clears is_voted once a voter's elections are all over.
type VotedFlagResetter interface {
	ResetStaleVotedFlags(ctx context.Context) (int64, error)
}

// Engine computes the read-side tallies.
type Engine struct {
	db       *sql.DB
	store    *store.Store
	crypto   votecrypto.Config
	resetter VotedFlagResetter
	now      func() time.Time
}

func NewEngine(db *sql.DB, st *store.Store, crypto votecrypto.Config, resetter VotedFlagResetter) *Engine {
	return &Engine{db: db, store: st, crypto: crypto, resetter: resetter, now: time.Now}
}

// WithClock returns a copy of the engine reading time from now.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	c := *e
	c.now = now
	return &c
}

// sortTallies orders candidates by descending count, then by id
func sortTallies(tallies []models.CandidateTally) {
	sort.Slice(tallies, func(i, j int) bool {
		a, b := tallies[i], tallies[j]
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		return a.CandidateID < b.CandidateID
	})
}
