// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ballot validates ballot submissions before anything is written.

A submission names an election and a list of entries. Each entry's
candidate_id is either a single id or, for multi-seat posts, an array.
Flatten turns the entries into (post, candidate) pairs; duplicates
collapse to their first occurrence.

# Validation Order

Validate rejects the whole submission, in this order, when:

 1. the election does not exist (ErrElectionNotFound)
 2. the election is not Ongoing or now is outside [start, end] (ErrElectionNotActive)
 3. the voter is not registered (ErrVoterNotFound)
 4. the voter is not approved, has already voted, or lives outside the
    election's location or ward (ErrVoterNotApproved, ErrAlreadyVoted,
    ErrVoterNotEligible)
 5. no selections remain after flattening (ErrEmptyBallot)
 6. the Ward Member set is not exactly four valid, distinct candidates
    (ErrWardMemberCountInvalid)

Ward Member selections beyond the fourth are dropped in submission order.
A ballot with no Ward Member selections is rejected as well.

# Per-Item Failures

Selections for other posts are checked individually. An unknown post, an
unknown candidate, a candidate registered for a different post, or one
standing in a different location or ward is reported in Result.Failures
and the rest of the ballot proceeds.
*/
package ballot
