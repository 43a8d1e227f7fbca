// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - OptionRequest: option (add / delete)
  - VoteRequest: option

# Response Types

Types for JSON responses:

  - StateResponse: date, options, votes, hasVoted, userVote
  - OptionsResponse: message, options, votes
  - VoteResponse: message, options, votes, hasVoted, userVote
  - HistoryResponse: history
  - VotersResponse: voters, total
  - ErrorResponse: error, message

# Domain Types

  - VoteDocument: one calendar day's options, tally and voter records
  - VoteRecord: a single voter's choice with origin address and time
  - ClientMeta: browser / OS / device parsed from the user agent
  - VoterRow: flattened directory row across current and archived days

# JSON Layout

VoteDocument keeps the on-disk field names used by earlier releases:

	{
	  "date": "2025-03-14",
	  "options": ["tea", "coffee"],
	  "votes": {"tea": 1, "coffee": 0},
	  "votedUsers": ["7d0c..."],
	  "userVotes": {"7d0c...": {"option": "tea", "ip": "10.0.0.4", "timestamp": "..."}}
	}
*/
package models
