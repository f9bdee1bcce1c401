// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/ward-ballot/metrics"
	"github.com/danielhkuo/ward-ballot/models"
	"github.com/danielhkuo/ward-ballot/store"
)

// raceKey identifies one race. City-wide races are keyed by location so
// every ward election at that location shares one count.
type raceKey struct {
	scope       int64 // location_id for city-wide posts, election_id otherwise
	cityWide    bool
	postID      int64
	candidateID int64
}

func keyFor(e models.Election, postID, candidateID int64) raceKey {
	if models.IsCityWidePost(postID) {
		return raceKey{scope: e.LocationID, cityWide: true, postID: postID, candidateID: candidateID}
	}
	return raceKey{scope: e.ID, postID: postID, candidateID: candidateID}
}

// LiveResults tallies every Ongoing election. A vote counts only when its
// encrypted candidate reference decrypts to the row's candidate_id.
func (e *Engine) LiveResults(ctx context.Context) ([]models.LiveElection, error) {
	elections, err := e.store.ElectionsByStatus(ctx, models.StatusOngoing)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Election, len(elections))
	for _, el := range elections {
		byID[el.ID] = el
	}

	counts, err := e.liveCounts(ctx, byID)
	if err != nil {
		return nil, err
	}

	posts, err := e.store.Posts(ctx)
	if err != nil {
		return nil, err
	}
	postNames := make(map[int64]string, len(posts))
	for _, p := range posts {
		postNames[p.ID] = p.Name
	}

	now := e.now()
	live := make([]models.LiveElection, 0, len(elections))
	for _, el := range elections {
		location, err := e.store.LocationName(ctx, el.LocationID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}

		candidates, err := e.store.ElectionCandidates(ctx, el)
		if err != nil {
			return nil, err
		}

		results := make(map[string][]models.CandidateTally)
		for _, c := range candidates {
			name := postNames[c.PostID]
			results[name] = append(results[name], models.CandidateTally{
				CandidateID:   c.ID,
				CandidateName: c.Name,
				PartyName:     c.PartyName,
				VoteCount:     counts[keyFor(el, c.PostID, c.ID)],
			})
		}
		for name := range results {
			sortTallies(results[name])
		}

		live = append(live, models.LiveElection{
			ElectionID:   el.ID,
			ElectionName: el.Name,
			Location:     location,
			Date: fmt.Sprintf("%s (closes %s)",
				el.StartDate.Format("2006-01-02"),
				humanize.RelTime(el.EndDate, now, "ago", "from now")),
			Status:  el.Status,
			Results: results,
		})
	}

	return live, nil
}

// liveCounts reads every vote in the given elections and counts the ones
// whose ciphertext agrees with the clear candidate_id.
func (e *Engine) liveCounts(ctx context.Context, elections map[int64]models.Election) (map[raceKey]int64, error) {
	counts := make(map[raceKey]int64)
	if len(elections) == 0 {
		return counts, nil
	}

	rows, err := e.db.QueryContext(ctx, `
		SELECT v.vote_id, v.election_id, v.post_id, v.candidate_id, v.encrypted_candidate_id
		FROM votes v
		JOIN elections e ON e.election_id = v.election_id
		WHERE e.status = $1
	`, models.StatusOngoing)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	rejected := 0
	for rows.Next() {
		var voteID, electionID, postID, candidateID int64
		var encrypted string
		if err := rows.Scan(&voteID, &electionID, &postID, &candidateID, &encrypted); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}

		el, ok := elections[electionID]
		if !ok {
			continue
		}

		decrypted, err := e.crypto.DecryptCandidateID(encrypted)
		if err != nil || decrypted != candidateID {
			rejected++
			slog.Warn("vote excluded from live tally", "vote_id", voteID, "election_id", electionID)
			continue
		}

		counts[keyFor(el, postID, candidateID)]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if rejected > 0 {
		metrics.DecryptFailures.WithLabelValues("live").Add(float64(rejected))
	}
	return counts, nil
}
