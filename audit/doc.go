// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package audit verifies stored votes against their integrity fields.

Both checks decrypt encrypted_candidate_id first and recompute from the
decrypted candidate, so a row whose clear candidate_id was edited still
audits against what was originally sealed:

	v := audit.NewVerifier(db, crypto)
	res, err := v.Verify(ctx, voteID)

VerifySignature recomputes HMAC-SHA256(voter_id || election_id || post_id
|| candidate_id). VerifyHash recomputes the salted SHA-256 in the same
field order the ledger wrote it. Comparisons are constant-time.

Each check reports independently:

	not found           no vote with that id
	decryption failed   the ciphertext is malformed or sealed under another key
	... mismatch        the recomputed value differs from the stored one

An error is returned only for a non-positive vote id (ErrInvalidVoteID) or
a storage failure. Checks never modify the row.
*/
package audit
