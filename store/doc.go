// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store provides the reference data lookups the vote pipeline
depends on.

Posts, candidates, locations, elections and registered voters are owned by
the admin and registration services. This package reads them:

	s := store.New(db)
	name, err := s.PostName(ctx, models.PostWardMember)
	c, err := s.Candidate(ctx, candidateID)
	e, err := s.Election(ctx, electionID)
	email, err := s.VoterEmail(ctx, voterID)

Missing rows are reported as ErrNotFound.

# Candidates and Elections

Candidates are never stored against an election. ElectionCandidates
derives the relationship at query time: a candidate stands in an election
when the location matches and either the candidate is city-wide (ward 0),
the election covers all wards (ward 0), or the wards are equal.

# Election Lifecycle

Status only moves forward:

	Upcoming → Ongoing → Completed

RefreshElectionStatuses applies the transitions due at a given instant
and is meant to be run by an operator or an external scheduler.
FinalizeIfEnded completes a single election whose end date has passed;
the results engine calls it on read.
*/
package store
