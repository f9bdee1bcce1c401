// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/ward-ballot/models"
)

var ErrNotFound = errors.New("not found")

// Store is the read side of the reference data owned by the admin and
// registration services. The only writes are election status transitions.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

const electionColumns = `election_id, name, location_id, location_type, ward, start_date, end_date, status`

func scanElection(row rowScanner) (models.Election, error) {
	var e models.Election
	err := row.Scan(&e.ID, &e.Name, &e.LocationID, &e.LocationType, &e.Ward, &e.StartDate, &e.EndDate, &e.Status)
	return e, err
}

// PostName returns the name of a post
func (s *Store) PostName(ctx context.Context, postID int64) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `
		SELECT post_name FROM posts WHERE post_id = $1
	`, postID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query post: %w", err)
	}
	return name, nil
}

// Posts returns the post reference set ordered by id
func (s *Store) Posts(ctx context.Context) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT post_id, post_name FROM posts ORDER BY post_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Candidate returns a candidate by id
func (s *Store) Candidate(ctx context.Context, candidateID int64) (models.Candidate, error) {
	var c models.Candidate
	err := s.db.QueryRowContext(ctx, `
		SELECT candidate_id, candidate_name, party_name, location_id, ward, post_id
		FROM candidates
		WHERE candidate_id = $1
	`, candidateID).Scan(&c.ID, &c.Name, &c.PartyName, &c.LocationID, &c.Ward, &c.PostID)
	if err == sql.ErrNoRows {
		return models.Candidate{}, ErrNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to query candidate: %w", err)
	}
	return c, nil
}

// ElectionCandidates returns the candidates standing in an election. The
// relationship is derived: same location, and either a city-wide candidate
// (ward 0), an all-wards election, or the same ward.
func (s *Store) ElectionCandidates(ctx context.Context, election models.Election) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT candidate_id, candidate_name, party_name, location_id, ward, post_id
		FROM candidates
		WHERE location_id = $1 AND (ward = 0 OR $2 = 0 OR ward = $2)
		ORDER BY post_id, candidate_id
	`, election.LocationID, election.Ward)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.PartyName, &c.LocationID, &c.Ward, &c.PostID); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// Election returns an election by id
func (s *Store) Election(ctx context.Context, electionID int64) (models.Election, error) {
	e, err := scanElection(s.db.QueryRowContext(ctx, `
		SELECT `+electionColumns+` FROM elections WHERE election_id = $1
	`, electionID))
	if err == sql.ErrNoRows {
		return models.Election{}, ErrNotFound
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("failed to query election: %w", err)
	}
	return e, nil
}

// ElectionsByStatus returns all elections in the given status
func (s *Store) ElectionsByStatus(ctx context.Context, status string) ([]models.Election, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+electionColumns+` FROM elections WHERE status = $1 ORDER BY election_id
	`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query elections: %w", err)
	}
	defer rows.Close()

	var elections []models.Election
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		elections = append(elections, e)
	}
	return elections, rows.Err()
}

// LocationName returns the display name of a location
func (s *Store) LocationName(ctx context.Context, locationID int64) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `
		SELECT location_name FROM locations WHERE location_id = $1
	`, locationID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query location: %w", err)
	}
	return name, nil
}

// VoterEmail returns the contact address of a registered voter
func (s *Store) VoterEmail(ctx context.Context, voterID string) (string, error) {
	var email string
	err := s.db.QueryRowContext(ctx, `
		SELECT email FROM users WHERE voter_id = $1
	`, voterID).Scan(&email)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query voter: %w", err)
	}
	return email, nil
}

// Voter returns a registered voter joined with their roll entry, if any
func (s *Store) Voter(ctx context.Context, voterID string) (models.Voter, error) {
	var v models.Voter
	var locationID, ward sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT u.user_id, u.voter_id, u.email, u.is_verified, u.is_voted, g.location_id, g.ward
		FROM users u
		LEFT JOIN government_voters g ON g.voter_id = u.voter_id
		WHERE u.voter_id = $1
	`, voterID).Scan(&v.UserID, &v.VoterID, &v.Email, &v.IsVerified, &v.IsVoted, &locationID, &ward)
	if err == sql.ErrNoRows {
		return models.Voter{}, ErrNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("failed to query voter: %w", err)
	}

	if locationID.Valid {
		v.LocationID = &locationID.Int64
	}
	if ward.Valid {
		w := int(ward.Int64)
		v.Ward = &w
	}
	return v, nil
}
