// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally aggregates vote rows into election results.

# Final Results

FinalResults counts the vote rows of a Completed election, grouped by post
and then candidate. Candidates within a post are ordered by descending
count, ties broken by candidate id. Per-party totals are summed across all
posts.

Results are sealed until the election completes. If the end date has
passed but the status was never updated, the first read completes the
election and clears stale is_voted flags:

	res, err := engine.FinalResults(ctx, electionID)
	if errors.Is(err, tally.ErrElectionNotCompleted) {
		// still running
	}

# Live Results

LiveResults re-scans every Ongoing election on each call. Mayor and Deputy
Mayor are voted once per location, so their counts are keyed by
(location, post, candidate) and every ward election at that location shows
the same race. Ward-scoped posts are keyed by election.

A row counts only when its encrypted candidate reference decrypts to the
row's candidate_id. Rows that fail are excluded, logged and counted in
ward_ballot_decrypt_failures_total{path="live"}.

Every candidate standing in the election is listed, including those with
no votes yet.
*/
package tally
