// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielhkuo/daily-pick/directory"
	"github.com/danielhkuo/daily-pick/hub"
	"github.com/danielhkuo/daily-pick/identity"
	"github.com/danielhkuo/daily-pick/models"
	"github.com/danielhkuo/daily-pick/store"
	"github.com/danielhkuo/daily-pick/stream"
	"github.com/danielhkuo/daily-pick/votes"
)

// Result is the outcome of a successful mutation
type Result struct {
	Doc     *models.VoteDocument
	Message string
	// Outcome is only meaningful for CastVote
	Outcome votes.Outcome
	// Record is the acting voter's record after CastVote
	Record *models.VoteRecord
	// Voided counts the votes removed by DeleteOption
	Voided int
}

// Service owns the shared vote document for the process: the store it is
// persisted in, the hub of live connections and the lock that serializes
// every read-modify-write.
type Service struct {
	store *store.Store
	hub   *hub.Hub

	mu sync.Mutex
	// fanout keeps broadcasts in mutation order while letting the next
	// mutation start once the previous one is persisted
	fanout sync.Mutex
}

func New(st *store.Store, h *hub.Hub) *Service {
	if h == nil {
		h = hub.New()
	}
	return &Service{store: st, hub: h}
}

// Hub returns the service's connection set
func (s *Service) Hub() *hub.Hub {
	return s.hub
}

// State returns today's document projected for voterID
func (s *Service) State(ctx context.Context, voterID string) (models.StateResponse, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return models.StateResponse{}, err
	}
	return doc.State(voterID), nil
}

// AddOption adds label to today's options. origin, when set, is the
// streaming connection that asked for the change.
func (s *Service) AddOption(ctx context.Context, label string, origin hub.Peer) (Result, error) {
	return s.mutate(ctx, origin, func(doc *models.VoteDocument) (Result, error) {
		next, err := votes.AddOption(doc, label)
		if err != nil {
			return Result{}, err
		}
		return Result{Doc: next, Message: "option added"}, nil
	})
}

// CastVote records voter's choice, replacing any earlier choice today
func (s *Service) CastVote(ctx context.Context, voter identity.Voter, option string, origin hub.Peer) (Result, error) {
	return s.mutate(ctx, origin, func(doc *models.VoteDocument) (Result, error) {
		next, outcome, err := votes.CastVote(doc, votes.Ballot{
			VoterID: voter.ID,
			Option:  option,
			Addr:    voter.Addr,
			Meta:    voter.Meta,
			At:      s.store.Now(),
		})
		if err != nil {
			return Result{}, err
		}
		res := Result{Doc: next, Outcome: outcome, Message: voteMessage(outcome)}
		if rec, ok := next.Record(voter.ID); ok {
			res.Record = &rec
		}
		return res, nil
	})
}

// DeleteOption removes label and voids every vote cast for it today
func (s *Service) DeleteOption(ctx context.Context, label string, origin hub.Peer) (Result, error) {
	return s.mutate(ctx, origin, func(doc *models.VoteDocument) (Result, error) {
		next, voided, err := votes.DeleteOption(doc, label)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Doc:     next,
			Voided:  voided,
			Message: fmt.Sprintf("deleted option, %d votes voided", voided),
		}, nil
	})
}

// History returns every archived day, newest first. A stale current
// document is rotated into the archive first.
func (s *Service) History(ctx context.Context) ([]*models.VoteDocument, error) {
	if _, err := s.store.Load(ctx); err != nil {
		return nil, err
	}
	return s.store.ListArchive(ctx)
}

// Voters returns one page of the voter directory
func (s *Service) Voters(ctx context.Context, q directory.Query) (directory.Page, error) {
	q, err := q.Normalize()
	if err != nil {
		return directory.Page{}, err
	}
	current, err := s.store.Load(ctx)
	if err != nil {
		return directory.Page{}, err
	}
	archive, err := s.store.ListArchive(ctx)
	if err != nil {
		return directory.Page{}, err
	}
	return directory.List(current, archive, q)
}

// Connect sends p the current state and registers it for updates. No
// mutation can land between the two, so p never misses an update.
func (s *Service) Connect(ctx context.Context, p hub.Peer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := p.Send(stream.NewInit(doc, p.VoterID())); err != nil {
		return fmt.Errorf("send init: %w", err)
	}
	s.hub.Register(p)
	return nil
}

func (s *Service) Disconnect(p hub.Peer) {
	s.hub.Unregister(p)
}

// Apply runs a streaming command on behalf of voter
func (s *Service) Apply(ctx context.Context, voter identity.Voter, cmd stream.Command, origin hub.Peer) error {
	var err error
	switch c := cmd.(type) {
	case stream.AddOptionCommand:
		_, err = s.AddOption(ctx, c.Label, origin)
	case stream.VoteCommand:
		_, err = s.CastVote(ctx, voter, c.Option, origin)
	case stream.DeleteOptionCommand:
		_, err = s.DeleteOption(ctx, c.Label, origin)
	default:
		err = fmt.Errorf("%w: %T", stream.ErrUnknownCommand, cmd)
	}
	return err
}

func (s *Service) Close() error {
	return s.store.Close()
}

// mutate runs load, apply and save under the service lock, then notifies
// connections. Nothing is persisted or broadcast when apply fails. Display
// reads may rotate the day between load and save; the save is then refused
// and the mutation runs once more against the new day's document.
func (s *Service) mutate(ctx context.Context, origin hub.Peer, apply func(*models.VoteDocument) (Result, error)) (Result, error) {
	s.mu.Lock()
	res, err := s.loadApplySave(ctx, apply)
	if errors.Is(err, store.ErrStaleDocument) {
		slog.Info("day rolled over during mutation, retrying", "error", err)
		res, err = s.loadApplySave(ctx, apply)
	}
	if err != nil {
		s.mu.Unlock()
		return Result{}, err
	}
	s.fanout.Lock()
	s.mu.Unlock()
	defer s.fanout.Unlock()

	s.notify(res, origin)
	return res, nil
}

func (s *Service) loadApplySave(ctx context.Context, apply func(*models.VoteDocument) (Result, error)) (Result, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return Result{}, err
	}
	res, err := apply(doc)
	if err != nil {
		return Result{}, err
	}
	if err := s.store.Save(ctx, res.Doc); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (s *Service) notify(res Result, origin hub.Peer) {
	n := s.hub.Broadcast(origin, func(p hub.Peer) (any, bool) {
		return stream.NewVoteUpdate(res.Doc, p.VoterID()), true
	})
	slog.Debug("vote update broadcast", "date", res.Doc.Date, "recipients", n)

	if origin == nil {
		return
	}
	ev := stream.NewVoteUpdate(res.Doc, origin.VoterID())
	ev.Message = res.Message
	ev.Record = res.Record
	if ev.Record == nil {
		ev.Record = ev.State.UserVote
	}
	if err := origin.Send(ev); err != nil {
		s.hub.Unregister(origin)
		slog.Debug("acting peer evicted", "voter_id", origin.VoterID(), "error", err)
	}
}

func voteMessage(o votes.Outcome) string {
	switch o {
	case votes.Changed:
		return "vote changed"
	case votes.Unchanged:
		return "you already voted for this option"
	default:
		return "vote recorded"
	}
}
