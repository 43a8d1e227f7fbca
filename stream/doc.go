// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package stream implements the websocket mode of the voting API.

# Messages

Clients send one JSON object per frame:

	{"type": "addOption",    "data": {"option": "Noodles"}}
	{"type": "vote",         "data": {"option": "Noodles"}}
	{"type": "deleteOption", "data": {"option": "Noodles"}}

The server answers with:

	{"type": "init",       "data": {"date": ..., "options": ..., "votes": ..., "hasVoted": ..., "userVote": ...}}
	{"type": "voteUpdate", "data": {... same fields ..., "record": ..., "message": ...}}
	{"type": "error",      "message": "option does not exist: \"Pizza\""}

init is sent once after the handshake. voteUpdate is pushed to every
connection after any change; hasVoted and userVote always describe the
receiving voter. Only the connection that made the change gets record and
message. error goes only to the connection whose request failed.

# Limits

Frames over MaxFrameBytes are rejected, and MaxDecodeErrors consecutive
unreadable frames close the connection. Writes are bounded by
Options.WriteTimeout.

# Identity

The handshake reuses the userId cookie. Without one a voter id is minted
and its cookie is set on the handshake response.
*/
package stream
