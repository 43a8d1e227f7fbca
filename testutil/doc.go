// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package testutil provides shared helpers for package tests.

	svc, clock := testutil.NewService(t)  // file store in t.TempDir()
	clock.Advance(24 * time.Hour)         // roll over to the next voting day

	req := testutil.MakeRequest("POST", "/api/vote", models.VoteRequest{Option: "A"},
		testutil.CookieHeader(voterID))
	testutil.AssertStatus(t, w, http.StatusOK)
*/
package testutil
