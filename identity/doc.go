// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity maps requests and streaming connections to anonymous voters.

# Voter IDs

Every browser gets a random UUID the first time it talks to the server:

	v := identity.Resolve(r)
	identity.Issue(w, v)  // sets the userId cookie when v.New

The cookie lives for a year, is HttpOnly and scoped to "/". A cookie that
does not parse as a UUID is treated as absent and replaced.

# Request Context

Middleware resolves the voter once and stores it on the request context:

	ctx := identity.WithVoter(r.Context(), v)
	v, ok := identity.FromContext(ctx)

# Client Metadata

ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
remote address without its port. ParseUserAgent produces a coarse
browser/OS/device classification that is stored next to each vote for the
voter directory. Neither value is used for counting.
*/
package identity
