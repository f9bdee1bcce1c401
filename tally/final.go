// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/danielhkuo/ward-ballot/models"
	"github.com/danielhkuo/ward-ballot/store"
)

// FinalResults tallies a Completed election. An election past its end date
// that is still open is completed here first.
func (e *Engine) FinalResults(ctx context.Context, electionID int64) (*models.FinalResults, error) {
	election, err := e.store.Election(ctx, electionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrElectionNotFound
	}
	if err != nil {
		return nil, err
	}

	wasCompleted := election.Status == models.StatusCompleted
	done, err := e.store.FinalizeIfEnded(ctx, election, e.now())
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, ErrElectionNotCompleted
	}
	if !wasCompleted {
		election.Status = models.StatusCompleted
		if e.resetter != nil {
			if _, err := e.resetter.ResetStaleVotedFlags(ctx); err != nil {
				slog.Warn("failed to reset stale voted flags", "error", err)
			}
		}
	}

	posts, err := e.postResults(ctx, electionID)
	if err != nil {
		return nil, err
	}

	return &models.FinalResults{
		Election: election,
		Posts:    posts,
		Parties:  partyTotals(posts),
	}, nil
}

// postResults groups an election's vote rows by post, then candidate
func (e *Engine) postResults(ctx context.Context, electionID int64) ([]models.PostResult, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT v.post_id, p.post_name, v.candidate_id, c.candidate_name, c.party_name, COUNT(*) AS vote_count
		FROM votes v
		JOIN posts p ON p.post_id = v.post_id
		JOIN candidates c ON c.candidate_id = v.candidate_id
		WHERE v.election_id = $1
		GROUP BY v.post_id, p.post_name, v.candidate_id, c.candidate_name, c.party_name
		ORDER BY v.post_id, vote_count DESC, v.candidate_id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	posts := []models.PostResult{}
	for rows.Next() {
		var postID int64
		var postName string
		var t models.CandidateTally
		if err := rows.Scan(&postID, &postName, &t.CandidateID, &t.CandidateName, &t.PartyName, &t.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}

		if n := len(posts); n == 0 || posts[n-1].PostID != postID {
			posts = append(posts, models.PostResult{PostID: postID, PostName: postName})
		}
		last := &posts[len(posts)-1]
		last.Candidates = append(last.Candidates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range posts {
		sortTallies(posts[i].Candidates)
	}
	return posts, nil
}

// partyTotals sums candidate counts per party, highest first
func partyTotals(posts []models.PostResult) []models.PartyTally {
	totals := make(map[string]int64)
	for _, p := range posts {
		for _, c := range p.Candidates {
			totals[c.PartyName] += c.VoteCount
		}
	}

	parties := make([]models.PartyTally, 0, len(totals))
	for name, count := range totals {
		parties = append(parties, models.PartyTally{PartyName: name, VoteCount: count})
	}
	sort.Slice(parties, func(i, j int) bool {
		if parties[i].VoteCount != parties[j].VoteCount {
			return parties[i].VoteCount > parties[j].VoteCount
		}
		return parties[i].PartyName < parties[j].PartyName
	})
	return parties
}
