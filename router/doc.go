// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ward-ballot API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, crypto, notify.New(cfg.SMTP))

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Elections:

	GET  /elections/{id}/ballot          - Posts and candidates for a ballot
	POST /admin/elections/refresh-status - Apply date transitions (admin)

Voting (requires X-Voter-Token):

	POST /ballots          - Cast a ballot
	GET  /voters/me/status - Verification and is_voted flags

Audit (requires X-Admin-Key):

	POST /audit/verify - Recompute signature and hash of one vote

Results (public):

	GET /results/final?election_id= - Final tally (Completed only)
	GET /results/live               - Running tally of Ongoing elections

# Handler Initialization

One ledger is shared by every handler that writes or resets vote state:

	lg := ledger.New(db, crypto, notifier)
	electionHandler := handlers.NewElectionHandler(db, lg)
	votingHandler := handlers.NewVotingHandler(db, cfg, lg)
	resultsHandler := handlers.NewResultsHandler(db, crypto, lg)
	auditHandler := handlers.NewAuditHandler(db, crypto)
*/
package router
