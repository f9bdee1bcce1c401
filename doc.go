// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ward-ballot API server.

ward-ballot is the vote-casting and tally core of a municipal online voting
platform. Approved voters cast one ballot per election covering Mayor,
Deputy Mayor, Ward Chairperson and four Ward Member seats. Each vote row is
sealed with an encrypted candidate reference, a salted hash and an HMAC
signature that auditors can recompute later.

# Starting the Server

	DATABASE_URL=ward.db ENCRYPTION_KEY=... HMAC_SECRET=... \
	VOTER_TOKEN_SECRET=... ADMIN_KEY=... go run .

Or with flags and a YAML file:

	go run . -p 3318 -t postgres -d "postgres://..." -c ward-ballot.yaml

A .env file in the working directory is loaded first when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - ENCRYPTION_KEY (--encryption-key): Candidate reference encryption secret
  - HMAC_SECRET (--hmac-secret): Vote signature secret
  - VOTER_TOKEN_SECRET (--voter-token-secret): Voter session token secret
  - ADMIN_KEY (--admin-key): Key for audit and admin endpoints

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - CONFIG_FILE (-c): YAML config file
  - SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM:
    vote confirmation email; confirmations are only logged without a host

# Architecture

  - handlers: HTTP request handlers (elections, voting, results, audit)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, admin key, JSON helpers
  - ballot: Submission validation and voter eligibility
  - ledger: Transactional vote recording
  - tally: Final and live results
  - audit: Signature and hash verification
  - store: Reference data and election lifecycle
  - votecrypto: Encryption, hashing and signing of vote rows
  - notify: Vote confirmation delivery
  - metrics: Prometheus collectors
  - models: Request/response and domain types
  - auth: Voter tokens and admin key checks
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
