// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth validates the credentials issued by the session service.

# Voter Tokens

Registration and login happen elsewhere. Once a voter is approved, the
session service issues a token bound to the voter id:

	token := auth.IssueVoterToken(voterID, secret)
	voterID, err := auth.ParseVoterToken(token, secret)

The token is base64(voter_id) "." base64(HMAC-SHA256(voter_id)), URL-safe
without padding. Since it's deterministic, nothing is stored server-side.
Ballot submission reads it from the X-Voter-Token header.

# Admin Keys

Audit and lifecycle endpoints require the X-Admin-Key header:

	err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), cfg.AdminKey)

Comparison is constant-time.
*/
package auth
