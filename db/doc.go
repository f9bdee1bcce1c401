// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connections

Open selects the driver from the configured database type:

	conn, err := db.Open(cfg) // lib/pq for postgres, modernc sqlite otherwise

SQLite connections are limited to one open connection.

# Schema Creation

CreateSchema initializes all required tables for a dialect:

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes,
and seeds the posts table with ON CONFLICT DO NOTHING.

# Tables

  - locations: Municipalities
  - posts: Mayor, Deputy Mayor, Ward Chairperson, Ward Member
  - elections: Election schedule and status
  - candidates: Candidates per location, ward and post
  - government_voters: Voter roll with location and ward
  - users: Registered voters (is_verified, is_voted)
  - votes: Append-only vote ledger with hash and signature

# Relationships

	locations 1──* elections
	locations 1──* candidates
	elections 1──* votes
	candidates 1──* votes
	users     1──* votes (via voter_id)

Candidates and elections are not linked by a foreign key. They are joined
at query time on location_id and ward, where ward 0 means every ward.

# Errors

IsUniqueViolation recognizes unique constraint failures from both drivers.
*/
package db
