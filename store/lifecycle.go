// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/ward-ballot/models"
)

type RefreshResult struct {
	Started   int
	Completed int
}

// nextStatus moves an election forward only: Upcoming → Ongoing → Completed.
func nextStatus(e models.Election, now time.Time) string {
	switch {
	case now.After(e.EndDate):
		return models.StatusCompleted
	case e.Status == models.StatusUpcoming && !now.Before(e.StartDate):
		return models.StatusOngoing
	default:
		return e.Status
	}
}

// RefreshElectionStatuses applies date-driven status transitions to every
// election that is not yet Completed.
func (s *Store) RefreshElectionStatuses(ctx context.Context, now time.Time) (RefreshResult, error) {
	var pending []models.Election
	for _, status := range []string{models.StatusUpcoming, models.StatusOngoing} {
		elections, err := s.ElectionsByStatus(ctx, status)
		if err != nil {
			return RefreshResult{}, err
		}
		pending = append(pending, elections...)
	}

	var result RefreshResult
	for _, e := range pending {
		next := nextStatus(e, now)
		if next == e.Status {
			continue
		}

		if err := s.SetElectionStatus(ctx, e.ID, next); err != nil {
			return result, err
		}

		switch next {
		case models.StatusOngoing:
			result.Started++
		case models.StatusCompleted:
			result.Completed++
		}
		slog.Info("election status changed", "election_id", e.ID, "from", e.Status, "to", next)
	}

	return result, nil
}

// FinalizeIfEnded marks an election Completed when its end date has passed.
// It reports whether the election is Completed afterwards.
func (s *Store) FinalizeIfEnded(ctx context.Context, e models.Election, now time.Time) (bool, error) {
	if e.Status == models.StatusCompleted {
		return true, nil
	}
	if !now.After(e.EndDate) {
		return false, nil
	}

	if err := s.SetElectionStatus(ctx, e.ID, models.StatusCompleted); err != nil {
		return false, err
	}
	slog.Info("election finalized on read", "election_id", e.ID)
	return true, nil
}

// SetElectionStatus updates the status of an election
func (s *Store) SetElectionStatus(ctx context.Context, electionID int64, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE elections SET status = $1 WHERE election_id = $2
	`, status, electionID)
	if err != nil {
		return fmt.Errorf("failed to update election status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update election status: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
