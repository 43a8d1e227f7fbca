// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/daily-pick/identity"
	"github.com/danielhkuo/daily-pick/middleware"
	"github.com/danielhkuo/daily-pick/models"
	"github.com/danielhkuo/daily-pick/poll"
	"github.com/danielhkuo/daily-pick/testutil"
)

// serve runs h behind the voter middleware like the router does
func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	middleware.WithVoter(h).ServeHTTP(w, req)
	return w
}

func addOptions(t *testing.T, svc *poll.Service, labels ...string) {
	t.Helper()
	for _, l := range labels {
		if _, err := svc.AddOption(context.Background(), l, nil); err != nil {
			t.Fatalf("Failed to add option %q: %v", l, err)
		}
	}
}

func TestGetState(t *testing.T) {
	svc, _ := testutil.NewService(t)
	handler := NewVoteHandler(svc)
	addOptions(t, svc, "Noodles", "Rice")

	voter := identity.NewID()
	if _, err := svc.CastVote(context.Background(), testutil.Voter(voter), "Rice", nil); err != nil {
		t.Fatal(err)
	}

	t.Run("voter sees own vote", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/api/votes", nil, testutil.CookieHeader(voter))
		w := serve(handler.GetState, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.StateResponse
		testutil.AssertJSON(t, w, &resp)

		if resp.Date != testutil.TestDay {
			t.Errorf("Expected date %s, got %s", testutil.TestDay, resp.Date)
		}
		if len(resp.Options) != 2 || resp.Votes["Rice"] != 1 {
			t.Errorf("Unexpected state %+v", resp)
		}
		if !resp.HasVoted || resp.UserVote == nil || resp.UserVote.Option != "Rice" {
			t.Errorf("Expected own vote for Rice, got %+v", resp.UserVote)
		}
	})

	t.Run("new visitor gets cookie and no vote", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/api/votes", nil, nil)
		w := serve(handler.GetState, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		if len(w.Result().Cookies()) != 1 {
			t.Error("Expected identity cookie for new visitor")
		}
		var resp models.StateResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.HasVoted || resp.UserVote != nil {
			t.Error("New visitor should not have voted")
		}
	})
}

func TestCastVote(t *testing.T) {
	svc, _ := testutil.NewService(t)
	handler := NewVoteHandler(svc)
	addOptions(t, svc, "A", "B")
	voter := identity.NewID()

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedMsg    string
		expectedVotes  map[string]int
	}{
		{"first vote", models.VoteRequest{Option: "A"}, http.StatusOK, "vote recorded", map[string]int{"A": 1, "B": 0}},
		{"same option again", models.VoteRequest{Option: "A"}, http.StatusOK, "you already voted for this option", map[string]int{"A": 1, "B": 0}},
		{"change vote", models.VoteRequest{Option: "B"}, http.StatusOK, "vote changed", map[string]int{"A": 0, "B": 1}},
		{"unknown option", models.VoteRequest{Option: "Z"}, http.StatusBadRequest, "", nil},
		{"empty option", models.VoteRequest{Option: ""}, http.StatusBadRequest, "", nil},
		{"invalid JSON", "not-an-object", http.StatusBadRequest, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/vote", tt.body, testutil.CookieHeader(voter))
			w := serve(handler.CastVote, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				var errResp models.ErrorResponse
				testutil.AssertJSON(t, w, &errResp)
				if errResp.Message == "" {
					t.Error("Expected an error message")
				}
				return
			}

			var resp models.VoteResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Message != tt.expectedMsg {
				t.Errorf("Expected message %q, got %q", tt.expectedMsg, resp.Message)
			}
			if !resp.HasVoted {
				t.Error("Expected hasVoted true")
			}
			for k, v := range tt.expectedVotes {
				if resp.Votes[k] != v {
					t.Errorf("Expected %s=%d, got %d", k, v, resp.Votes[k])
				}
			}
		})
	}
}

func TestCastVote_RecordsClientDetails(t *testing.T) {
	svc, _ := testutil.NewService(t)
	handler := NewVoteHandler(svc)
	addOptions(t, svc, "A")
	voter := identity.NewID()

	headers := testutil.CookieHeader(voter)
	headers["X-Forwarded-For"] = "203.0.113.7, 10.0.0.1"
	headers["User-Agent"] = "Mozilla/5.0 (X11; Linux x86_64; rv:123.0) Gecko/20100101 Firefox/123.0"
	w := serve(handler.CastVote, testutil.MakeRequest("POST", "/api/vote", models.VoteRequest{Option: "A"}, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	state, err := svc.State(context.Background(), voter)
	if err != nil {
		t.Fatal(err)
	}
	rec := state.UserVote
	if rec == nil {
		t.Fatal("Expected recorded vote")
	}
	if rec.IP != "203.0.113.7" {
		t.Errorf("Expected client IP 203.0.113.7, got %q", rec.IP)
	}
	if rec.Browser != "Firefox" || rec.OS != "Linux" {
		t.Errorf("Unexpected client metadata %+v", rec.ClientMeta)
	}
	if !rec.Timestamp.Equal(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected vote timestamp from the store clock, got %v", rec.Timestamp)
	}
}

func TestAddOption(t *testing.T) {
	svc, _ := testutil.NewService(t)
	handler := NewOptionHandler(svc)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{"valid option", models.OptionRequest{Option: "Dumplings"}, http.StatusOK},
		{"duplicate option", models.OptionRequest{Option: "Dumplings"}, http.StatusBadRequest},
		{"blank option", models.OptionRequest{Option: "  "}, http.StatusBadRequest},
		{"invalid JSON", "x", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(handler.AddOption, testutil.MakeRequest("POST", "/api/options", tt.body, nil))
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var resp models.OptionsResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Message != "option added" {
					t.Errorf("Expected 'option added', got %q", resp.Message)
				}
				if len(resp.Options) != 1 || resp.Options[0] != "Dumplings" {
					t.Errorf("Unexpected options %v", resp.Options)
				}
				if v, ok := resp.Votes["Dumplings"]; !ok || v != 0 {
					t.Errorf("Expected zero tally for new option, got %v", resp.Votes)
				}
			}
		})
	}
}

func TestDeleteOption(t *testing.T) {
	svc, _ := testutil.NewService(t)
	handler := NewOptionHandler(svc)
	addOptions(t, svc, "A", "B")
	for i := 0; i < 2; i++ {
		if _, err := svc.CastVote(context.Background(), testutil.Voter(fmt.Sprintf("v%d", i)), "A", nil); err != nil {
			t.Fatal(err)
		}
	}

	w := serve(handler.DeleteOption, testutil.MakeRequest("POST", "/api/options/delete", models.OptionRequest{Option: "A"}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.OptionsResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != "deleted option, 2 votes voided" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
	if len(resp.Options) != 1 || resp.Options[0] != "B" {
		t.Errorf("Expected only B to remain, got %v", resp.Options)
	}
	if _, ok := resp.Votes["A"]; ok {
		t.Error("Deleted option should have no tally")
	}

	// Deleting again is rejected
	w = serve(handler.DeleteOption, testutil.MakeRequest("POST", "/api/options/delete", models.OptionRequest{Option: "A"}, nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestRemoveOption_PathValue(t *testing.T) {
	svc, _ := testutil.NewService(t)
	handler := NewOptionHandler(svc)
	addOptions(t, svc, "Hot Pot")

	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/options/{option}", handler.RemoveOption)

	req := testutil.MakeRequest("DELETE", "/api/options/Hot%20Pot", nil, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.OptionsResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Options) != 0 {
		t.Errorf("Expected no options left, got %v", resp.Options)
	}
}

func TestHistory(t *testing.T) {
	svc, clock := testutil.NewService(t)
	handler := NewHistoryHandler(svc)

	w := serve(handler.History, testutil.MakeRequest("GET", "/api/votes/history", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if got := w.Body.String(); got != "{\"history\":[]}\n" {
		t.Errorf("Expected empty history, got %s", got)
	}

	// Two days with votes, one empty day in between
	for day := 0; day < 3; day++ {
		if day != 1 {
			addOptions(t, svc, fmt.Sprintf("day-%d", day))
		}
		clock.Advance(24 * time.Hour)
	}

	w = serve(handler.History, testutil.MakeRequest("GET", "/api/votes/history", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.HistoryResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.History) != 2 {
		t.Fatalf("Expected 2 archived days, got %d", len(resp.History))
	}
	if resp.History[0].Date != "2025-03-16" || resp.History[1].Date != "2025-03-14" {
		t.Errorf("Expected newest first, got %s, %s", resp.History[0].Date, resp.History[1].Date)
	}
}

func TestVoters(t *testing.T) {
	svc, _ := testutil.NewService(t)
	handler := NewHistoryHandler(svc)
	addOptions(t, svc, "A")
	for i := 0; i < 12; i++ {
		if _, err := svc.CastVote(context.Background(), testutil.Voter(fmt.Sprintf("v%02d", i)), "A", nil); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedRows   int
		expectedTotal  int
	}{
		{"defaults", "", http.StatusOK, 10, 12},
		{"second page", "?page=2&pageSize=10", http.StatusOK, 2, 12},
		{"date filter", "?date=" + testutil.TestDay, http.StatusOK, 10, 12},
		{"other date", "?date=2025-01-01", http.StatusOK, 0, 0},
		{"bad page", "?page=two", http.StatusBadRequest, 0, 0},
		{"bad page size", "?pageSize=lots", http.StatusBadRequest, 0, 0},
		{"bad date", "?date=14-03-2025", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(handler.Voters, testutil.MakeRequest("GET", "/api/voters"+tt.query, nil, nil))
			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp models.VotersResponse
			testutil.AssertJSON(t, w, &resp)
			if len(resp.Voters) != tt.expectedRows {
				t.Errorf("Expected %d rows, got %d", tt.expectedRows, len(resp.Voters))
			}
			if resp.Total != tt.expectedTotal {
				t.Errorf("Expected total %d, got %d", tt.expectedTotal, resp.Total)
			}
		})
	}
}

func TestConcurrentVoteRequests(t *testing.T) {
	svc, _ := testutil.NewService(t)
	handler := NewVoteHandler(svc)
	addOptions(t, svc, "A", "B")

	const voters = 30
	var wg sync.WaitGroup
	codes := make(chan int, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			option := "A"
			if i%3 == 0 {
				option = "B"
			}
			req := testutil.MakeRequest("POST", "/api/vote", models.VoteRequest{Option: option}, testutil.CookieHeader(identity.NewID()))
			codes <- serve(handler.CastVote, req).Code
		}(i)
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		if code != http.StatusOK {
			t.Errorf("Expected 200, got %d", code)
		}
	}

	state, err := svc.State(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if state.Votes["A"] != 20 || state.Votes["B"] != 10 {
		t.Errorf("Expected A=20 B=10, got %v", state.Votes)
	}
}

func TestStorageFailureIsGeneric(t *testing.T) {
	svc, backend := testutil.NewFlakyService(t)
	addOptions(t, svc, "Noodles")
	backend.Fail()

	votesH := NewVoteHandler(svc)
	optionsH := NewOptionHandler(svc)
	historyH := NewHistoryHandler(svc)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		path    string
		body    interface{}
	}{
		{"get state", votesH.GetState, "GET", "/api/votes", nil},
		{"cast vote", votesH.CastVote, "POST", "/api/vote", models.VoteRequest{Option: "Noodles"}},
		{"add option", optionsH.AddOption, "POST", "/api/options", models.OptionRequest{Option: "Rice"}},
		{"delete option", optionsH.DeleteOption, "POST", "/api/options/delete", models.OptionRequest{Option: "Noodles"}},
		{"history", historyH.History, "GET", "/api/votes/history", nil},
		{"voters", historyH.Voters, "GET", "/api/voters", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest(tt.method, tt.path, tt.body, testutil.CookieHeader(identity.NewID()))
			w := serve(tt.handler, req)

			testutil.AssertStatus(t, w, http.StatusInternalServerError)
			body := w.Body.String()
			if strings.Contains(body, "input/output") || strings.Contains(body, "current_vote.json") ||
				strings.Contains(body, "storage unavailable") {
				t.Errorf("Response leaks storage details: %s", body)
			}

			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Message != "server error" {
				t.Errorf("Expected message 'server error', got %q", resp.Message)
			}
		})
	}
}
