// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stream

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielhkuo/daily-pick/models"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMalformedFrame = errors.New("malformed frame")
)

// Wire message types
const (
	TypeAddOption    = "addOption"
	TypeVote         = "vote"
	TypeDeleteOption = "deleteOption"

	TypeInit       = "init"
	TypeVoteUpdate = "voteUpdate"
	TypeError      = "error"
)

// Command is a client request received over a stream. The set of commands
// is closed: AddOptionCommand, VoteCommand and DeleteOptionCommand.
type Command interface {
	commandType() string
}

type AddOptionCommand struct {
	Label string
}

type VoteCommand struct {
	Option string
}

type DeleteOptionCommand struct {
	Label string
}

func (AddOptionCommand) commandType() string    { return TypeAddOption }
func (VoteCommand) commandType() string         { return TypeVote }
func (DeleteOptionCommand) commandType() string { return TypeDeleteOption }

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type optionData struct {
	Option string `json:"option"`
}

// DecodeCommand parses one inbound frame
func DecodeCommand(frame []byte) (Command, error) {
	var in inbound
	if err := json.Unmarshal(frame, &in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	var data optionData
	if len(in.Data) > 0 && string(in.Data) != "null" {
		if err := json.Unmarshal(in.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: data: %w", ErrMalformedFrame, err)
		}
	}

	switch in.Type {
	case TypeAddOption:
		return AddOptionCommand{Label: data.Option}, nil
	case TypeVote:
		return VoteCommand{Option: data.Option}, nil
	case TypeDeleteOption:
		return DeleteOptionCommand{Label: data.Option}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, in.Type)
	}
}

// EncodeCommand produces the wire form of cmd
func EncodeCommand(cmd Command) ([]byte, error) {
	var data optionData
	switch c := cmd.(type) {
	case AddOptionCommand:
		data.Option = c.Label
	case VoteCommand:
		data.Option = c.Option
	case DeleteOptionCommand:
		data.Option = c.Label
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
	return json.Marshal(struct {
		Type string     `json:"type"`
		Data optionData `json:"data"`
	}{cmd.commandType(), data})
}

// Event is a server message sent over a stream: InitEvent, VoteUpdateEvent
// or ErrorEvent. Each marshals to its tagged wire form.
type Event interface {
	json.Marshaler
	eventType() string
}

// InitEvent is sent once when a connection is accepted
type InitEvent struct {
	State models.StateResponse
}

// VoteUpdateEvent carries the document after a mutation, projected for the
// recipient. Record and Message are only set for the connection that made
// the change.
type VoteUpdateEvent struct {
	State   models.StateResponse
	Record  *models.VoteRecord
	Message string
}

type ErrorEvent struct {
	Message string
}

func (InitEvent) eventType() string       { return TypeInit }
func (VoteUpdateEvent) eventType() string { return TypeVoteUpdate }
func (ErrorEvent) eventType() string      { return TypeError }

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (e InitEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelope{Type: TypeInit, Data: e.State})
}

func (e VoteUpdateEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelope{
		Type: TypeVoteUpdate,
		Data: struct {
			models.StateResponse
			Record  *models.VoteRecord `json:"record,omitempty"`
			Message string             `json:"message,omitempty"`
		}{e.State, e.Record, e.Message},
	})
}

func (e ErrorEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{TypeError, e.Message})
}

// NewInit projects doc for voterID
func NewInit(doc *models.VoteDocument, voterID string) InitEvent {
	return InitEvent{State: doc.State(voterID)}
}

// NewVoteUpdate projects doc for voterID without any detail about who made
// the change
func NewVoteUpdate(doc *models.VoteDocument, voterID string) VoteUpdateEvent {
	return VoteUpdateEvent{State: doc.State(voterID)}
}
