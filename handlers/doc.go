// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ward-ballot API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - ElectionHandler: Ballot sheets and status refresh
  - VotingHandler: Ballot submission and voter status
  - ResultsHandler: Final and live results
  - AuditHandler: Vote integrity checks

Handlers that write votes share one *ledger.Ledger so that ballot casting,
status refresh and lazy finalization clear is_voted flags the same way:

	lg := ledger.New(db, crypto, notifier)
	votingHandler := handlers.NewVotingHandler(db, cfg, lg)

# Election Lifecycle

Elections move Upcoming → Ongoing → Completed by date:

	GET  /elections/{id}/ballot            → GetBallot
	POST /admin/elections/refresh-status   → RefreshStatuses

Admin operations require the X-Admin-Key header.

# Voting Flow

	POST /ballots          → SubmitBallot
	GET  /voters/me/status → GetStatus

Voter operations require the X-Voter-Token header issued by the
registration service. A ballot needs exactly four Ward Member selections.
Other selections that fail validation are reported in failed_votes while
the rest of the ballot is recorded.

# Results and Audit

	GET  /results/final?election_id= → GetFinalResults (Completed only)
	GET  /results/live               → GetLiveResults
	POST /audit/verify               → VerifyVote (admin)
*/
package handlers
