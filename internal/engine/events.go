package engine

import (
	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/store"
)

// Event is one unit of inbound input: a store delivery, a timer tick, or
// a local user intent. Every external stimulus is routed through
// App.Apply as exactly one Event, which is what makes the single-writer
// invariant enforceable.
type Event interface {
	isEvent()
}

// FromStore wraps an inbound store delivery.
type FromStore struct {
	Delivery store.Delivery
}

func (FromStore) isEvent() {}

// Tick carries the current time for the remaining-time display. It is
// the only spontaneous, non-store event and must not touch any
// reconciled collection.
type Tick struct {
	Now model.Timestamp
}

func (Tick) isEvent() {}

// User intents.

// SubmitTopic creates a new topic with a client-minted id.
type SubmitTopic struct {
	Text string
}

func (SubmitTopic) isEvent() {}

// CastVote records the current user's vote for a topic.
type CastVote struct {
	TopicID model.TopicID
}

func (CastVote) isEvent() {}

// RetractVote removes the current user's vote for a topic.
type RetractVote struct {
	TopicID model.TopicID
}

func (RetractVote) isEvent() {}

// DeleteTopic removes a topic together with all of its votes.
type DeleteTopic struct {
	TopicID model.TopicID
}

func (DeleteTopic) isEvent() {}

// BeginEdit opens the draft buffer for a topic.
type BeginEdit struct {
	TopicID model.TopicID
}

func (BeginEdit) isEvent() {}

// EditDraft updates an open draft.
type EditDraft struct {
	TopicID model.TopicID
	Text    string
}

func (EditDraft) isEvent() {}

// SaveEdit commits an open draft back to the store.
type SaveEdit struct {
	TopicID model.TopicID
}

func (SaveEdit) isEvent() {}

// CancelEdit discards an open draft without saving.
type CancelEdit struct {
	TopicID model.TopicID
}

func (CancelEdit) isEvent() {}

// MarkRead records locally that the user has seen a topic.
type MarkRead struct {
	TopicID model.TopicID
}

func (MarkRead) isEvent() {}

// SortTopics explicitly re-sorts the topic list by votes.
type SortTopics struct{}

func (SortTopics) isEvent() {}

// Discuss selects the topic to discuss. Admin-gated.
type Discuss struct {
	TopicID model.TopicID
}

func (Discuss) isEvent() {}

// FinishDiscussion ends the current discussion. Admin-gated.
type FinishDiscussion struct{}

func (FinishDiscussion) isEvent() {}

// VoteAgain reopens topic selection without finishing. Admin-gated.
type VoteAgain struct{}

func (VoteAgain) isEvent() {}

// SetTimer starts the countdown. Admin-gated.
type SetTimer struct {
	Minutes int
}

func (SetTimer) isEvent() {}

// ClearTimer removes the countdown. Admin-gated.
type ClearTimer struct{}

func (ClearTimer) isEvent() {}

// StartContinuationVote opens the continuation poll. Admin-gated.
type StartContinuationVote struct{}

func (StartContinuationVote) isEvent() {}

// ClearContinuationVote closes the poll and drops all ballots. Admin-gated.
type ClearContinuationVote struct{}

func (ClearContinuationVote) isEvent() {}

// CastContinuationVote casts or replaces the current user's ballot.
type CastContinuationVote struct {
	Choice model.ContinuationChoice
}

func (CastContinuationVote) isEvent() {}

// RetractContinuationVote removes the current user's ballot.
type RetractContinuationVote struct{}

func (RetractContinuationVote) isEvent() {}

// ToggleAdminMode switches the local activation of granted admin rights.
type ToggleAdminMode struct {
	Enabled bool
}

func (ToggleAdminMode) isEvent() {}

// DismissError clears the error banner.
type DismissError struct{}

func (DismissError) isEvent() {}
