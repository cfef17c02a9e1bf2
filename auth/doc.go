// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth derives anonymous visitor identities and client IDs.

# Identity Hashes

Endorsements are deduplicated per visitor without accounts. The visitor is
identified by an HMAC-SHA256 over the client ID, the request IP and the
User-Agent header, keyed by the server-held VOTE_HASH_SALT:

	userHash := auth.HashIdentity(cid, ip, r.UserAgent(), cfg.VoteHashSalt)

The result is 32 hex characters. It is stable for the same browser, network
and agent, and cannot be reversed to any of its inputs. Visitors sharing a NAT
and an identical User-Agent and client ID collapse into one identity; that
under-counts abuse rather than blocking legitimate users.

This is not strong identity. Its only job is to make clearing cookies
insufficient for repeat endorsements.

# Client IDs

Browsers generate their own opaque cid. prefetch.Client mints one with
NewClientID when none is configured:

	cid := auth.NewClientID()

# IP Hashing

middleware.WithLogging tags every request line with a salted IP hash so
requests can be correlated without recording addresses:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
