// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify sends vote confirmations to voters.

The ledger hands a Confirmation to a Notifier after a ballot commits. The
message lists each post with its number of selections and the vote ids
an auditor can check; it never names the chosen candidates.

	n := notify.New(cfg.SMTP)
	err := n.Notify(ctx, confirmation)

With no SMTP host configured, New returns a LogNotifier. Delivery errors
are the caller's to log; they never affect a committed ballot.
*/
package notify
