// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/danielhkuo/ward-ballot/cliparse"
)

// CreateSchema creates all tables needed for the application and seeds the
// fixed post reference set.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	autoID := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == cliparse.DatabasePostgres {
		autoID = "SERIAL PRIMARY KEY"
	}

	ddl := strings.ReplaceAll(schema, "{{AUTO_ID}}", autoID)
	for _, stmt := range strings.Split(ddl, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	if _, err := db.Exec(seedPosts); err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	return nil
}

const schema = `
-- Locations
CREATE TABLE IF NOT EXISTS locations (
    location_id {{AUTO_ID}},
    location_name TEXT NOT NULL,
    location_type TEXT NOT NULL DEFAULT 'Municipality'
);

-- Posts (fixed reference set)
CREATE TABLE IF NOT EXISTS posts (
    post_id INTEGER PRIMARY KEY,
    post_name TEXT NOT NULL UNIQUE
);

-- Elections
CREATE TABLE IF NOT EXISTS elections (
    election_id {{AUTO_ID}},
    name TEXT NOT NULL,
    location_id INTEGER NOT NULL REFERENCES locations(location_id),
    location_type TEXT NOT NULL DEFAULT 'Municipality',
    ward INTEGER NOT NULL DEFAULT 0,
    start_date TIMESTAMP NOT NULL,
    end_date TIMESTAMP NOT NULL,
    status TEXT NOT NULL DEFAULT 'Upcoming' CHECK (status IN ('Upcoming', 'Ongoing', 'Completed')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_elections_status ON elections(status);
CREATE INDEX IF NOT EXISTS idx_elections_location ON elections(location_id, ward);

-- Candidates
CREATE TABLE IF NOT EXISTS candidates (
    candidate_id {{AUTO_ID}},
    candidate_name TEXT NOT NULL,
    party_name TEXT NOT NULL DEFAULT 'Independent',
    location_id INTEGER NOT NULL REFERENCES locations(location_id),
    ward INTEGER NOT NULL DEFAULT 0,
    post_id INTEGER NOT NULL REFERENCES posts(post_id)
);

CREATE INDEX IF NOT EXISTS idx_candidates_location ON candidates(location_id, ward);

-- Government voter roll
CREATE TABLE IF NOT EXISTS government_voters (
    voter_id TEXT PRIMARY KEY,
    full_name TEXT NOT NULL,
    location_id INTEGER NOT NULL REFERENCES locations(location_id),
    ward INTEGER NOT NULL
);

-- Registered users
CREATE TABLE IF NOT EXISTS users (
    user_id {{AUTO_ID}},
    voter_id TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL,
    is_verified INTEGER NOT NULL DEFAULT 0 CHECK (is_verified IN (-1, 0, 1)),
    is_voted INTEGER NOT NULL DEFAULT 0 CHECK (is_voted IN (0, 1)),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Votes (append-only)
CREATE TABLE IF NOT EXISTS votes (
    vote_id {{AUTO_ID}},
    voter_id TEXT NOT NULL,
    election_id INTEGER NOT NULL REFERENCES elections(election_id),
    candidate_id INTEGER NOT NULL REFERENCES candidates(candidate_id),
    post_id INTEGER NOT NULL REFERENCES posts(post_id),
    encrypted_candidate_id TEXT NOT NULL,
    salt TEXT NOT NULL,
    vote_hash TEXT NOT NULL,
    signature TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (voter_id, election_id, post_id, candidate_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_election ON votes(election_id, post_id);
CREATE INDEX IF NOT EXISTS idx_votes_voter ON votes(voter_id)
`

const seedPosts = `
INSERT INTO posts (post_id, post_name) VALUES
    (1, 'Mayor'),
    (2, 'Deputy Mayor'),
    (3, 'Ward Chairperson'),
    (4, 'Ward Member')
ON CONFLICT (post_id) DO NOTHING
`
