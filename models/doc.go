// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - SubmitBallotRequest: election_id, votes
  - BallotEntry: post_id, candidate_id (integer or array)
  - VerifyVoteRequest: vote_id

# Candidate Selections

A ballot entry's candidate_id is either one candidate or, for multi-seat
posts such as Ward Member, an array of candidates:

	{"post_id": 1, "candidate_id": 12}
	{"post_id": 4, "candidate_id": [101, 102, 103, 104]}

CandidateSelection decodes both shapes. The ballot package flattens it into
one (post, candidate) pair per selection; nothing past validation sees it.

# Response Types

  - SubmitBallotResponse: success, message, is_voted, successful_votes,
    failed_votes, ward_member_votes
  - VerifyVoteResponse: signature and hash check results
  - FinalResultsResponse: per-post candidate tallies of a completed election
  - LiveResultsResponse: tallies of every ongoing election
  - ErrorResponse: success, error, message

# Domain Types

  - Election: schedule, scope (location, ward) and status
  - Post: fixed reference set
  - Candidate: candidate for a post at a location and ward
  - Voter: registered user with verification and voted flags
  - Vote: one ledger row per selected candidate

# Constants

Election status values:

	StatusUpcoming  = "Upcoming"
	StatusOngoing   = "Ongoing"
	StatusCompleted = "Completed"

Posts:

	PostMayor           = 1 // city-wide
	PostDeputyMayor     = 2 // city-wide
	PostWardChairperson = 3
	PostWardMember      = 4 // exactly WardMemberSeats selections
*/
package models
