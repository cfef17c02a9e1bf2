// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package prefetch is the client side of the endorsements API.

A Scheduler watches the ordered list of item IDs a page shows and decides
which counts to request and when:

  - the first DefaultViewportSize IDs, shortly after the list settles;
  - every ID at once when the list is sorted by endorsements;
  - every ID once per session, after a longer quiet period, for long lists.

Requests whose ID signature matches the previous one are never repeated.
Results land in a Cache shared by every observer on the page. The Cache also
carries the optimistic +1 shown while an endorsement is in flight and the
button state derived from the server's alreadyVoted and limitReached flags.

Client is the HTTP implementation of both fetching and casting. Endorse ties a
Caster and a Cache together for a single click.
*/
package prefetch
