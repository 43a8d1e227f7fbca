// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package poll ties the vote store, the vote engine and the broadcast hub
together into the one service both HTTP and websocket clients talk to.

Every mutation runs load, engine and save while holding the service lock, so
two concurrent votes never overwrite each other. Once the new document is
persisted, a voteUpdate is pushed to every connected stream. When the
change came from a stream, that connection is skipped in the fan-out and
instead receives its own update with the record and message attached.
Requests that fail are never persisted or broadcast.
*/
package poll
