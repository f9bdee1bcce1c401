// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger is the write path for votes.

# Casting a Ballot

CastBallot persists a validated ballot in a single transaction:

 1. Each vote gets a fresh salt, an encrypted candidate reference, a
    salted hash and an HMAC signature, and is inserted under its own
    savepoint.
 2. An insert that fails (duplicate selection, dangling candidate) is
    rolled back to its savepoint and reported in Outcome.Failures.
 3. If anything was recorded, the voter's is_voted flag is set with a
    conditional update. When the flag was already set, the whole ballot
    is rolled back with ballot.ErrAlreadyVoted.
 4. The transaction commits.

Any other error (savepoint, randomness, encryption, the voter update,
commit) rolls back every row and returns ErrTransactionFailed. A Ward
Member set that would commit with fewer than four rows is rolled back with
ballot.ErrWardMemberCountInvalid.

# Row Format

For every vote row:

	vote_hash = SHA-256(voter_id || election_id || candidate_id || post_id || salt)
	signature = HMAC-SHA256(voter_id || election_id || post_id || candidate_id)
	encrypted_candidate_id = base64(iv || AES-256-GCM(candidate_id))

candidate_id and encrypted_candidate_id are always written by the same
statement. Rows are never updated or deleted.

# After Commit

ResetStaleVotedFlags clears is_voted for voters whose votes all belong to
Completed elections, so they can take part in the next one. A confirmation
is handed to the notifier in a separate goroutine; delivery failures are
logged and counted, never returned.
*/
package ledger
