package engine

import (
	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/remote"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/store"
)

// millisPerMinute converts the whole-minute timer inputs and displays.
const millisPerMinute = 60_000

// Discussion is the discussion-flow state machine: which topic is being
// discussed, the countdown deadline, the nested continuation poll, and
// the finished-discussions history.
//
// States are Idle (no current topic) and Discussing(topic), with the
// timer and poll as orthogonal sub-state. Commands apply their
// transition locally and return the store writes that make it durable;
// the store's echo later replaces the same fields wholesale. Admin
// gating happens at the command-issuing layer - this component trusts
// its inputs.
type Discussion struct {
	current    remote.Value[*model.TopicID]
	pollActive remote.Value[bool]
	ballots    remote.Value[[]model.ContinuationVote]
	history    remote.Value[[]model.DiscussedTopic]
	deadline   remote.Value[*model.Timestamp]
}

// NewDiscussion starts with every slot Loading.
func NewDiscussion() *Discussion {
	return &Discussion{
		current:    remote.Loading[*model.TopicID](),
		pollActive: remote.Loading[bool](),
		ballots:    remote.Loading[[]model.ContinuationVote](),
		history:    remote.Loading[[]model.DiscussedTopic](),
		deadline:   remote.Loading[*model.Timestamp](),
	}
}

// Current returns the topic in discussion, or nil when Idle.
func (d *Discussion) Current() *model.TopicID {
	return d.current.OrZero()
}

// Deadline returns the countdown deadline, or nil when the timer is unset.
func (d *Discussion) Deadline() *model.Timestamp {
	return d.deadline.OrZero()
}

// PollActive reports whether the continuation poll is open.
func (d *Discussion) PollActive() bool {
	return d.pollActive.OrZero()
}

// Ballots returns the cast continuation votes.
func (d *Discussion) Ballots() []model.ContinuationVote {
	return d.ballots.OrZero()
}

// History returns the finished-discussions history, unsorted.
func (d *Discussion) History() []model.DiscussedTopic {
	return d.history.OrZero()
}

// Discuss moves to Discussing(id), from Idle or from another topic.
// Starting a new discussion phase clears the deadline and the poll;
// the invariant is that ballots and deadline never survive into a new
// phase.
func (d *Discussion) Discuss(id model.TopicID, paths store.Paths) []store.Write {
	d.current = remote.Got(&id)
	writes := []store.Write{
		store.Set{Path: paths.DiscussionTopic(), Doc: store.EncodeDiscussionTopic(id)},
	}
	writes = append(writes, d.clearTimer(paths)...)
	writes = append(writes, d.clearPoll(paths)...)
	return writes
}

// Finish ends the current discussion as one logical batch: the topic is
// appended to history, and the in-discussion slot, the poll, and the
// deadline are all cleared together. Valid only from Discussing; from
// Idle it is a no-op.
//
// The local history entry carries a nil finish time (the server assigns
// the real one), which deliberately sorts as most recent until the echo
// arrives.
func (d *Discussion) Finish(paths store.Paths) []store.Write {
	id := d.current.OrZero()
	if id == nil {
		return nil
	}

	entries := append(d.history.OrZero(), model.DiscussedTopic{TopicID: *id})
	d.history = remote.Got(entries)
	d.current = remote.Got[*model.TopicID](nil)

	writes := []store.Write{
		store.Insert{Collection: paths.Discussed(), Doc: store.EncodeDiscussed(*id)},
		store.Delete{Paths: []store.Path{paths.DiscussionTopic()}},
	}
	writes = append(writes, d.clearTimer(paths)...)
	writes = append(writes, d.clearPoll(paths)...)
	return writes
}

// VoteAgain returns to Idle without marking the topic finished, keeping
// it eligible for re-selection. Clears the in-discussion slot only.
func (d *Discussion) VoteAgain(paths store.Paths) []store.Write {
	if d.current.OrZero() == nil {
		return nil
	}
	d.current = remote.Got[*model.TopicID](nil)
	return []store.Write{
		store.Delete{Paths: []store.Path{paths.DiscussionTopic()}},
	}
}

// TopicDeleted reacts to the deletion of a topic: if it is the one in
// discussion, the whole discussion state is cleared.
func (d *Discussion) TopicDeleted(id model.TopicID, paths store.Paths) []store.Write {
	current := d.current.OrZero()
	if current == nil || *current != id {
		return nil
	}
	d.current = remote.Got[*model.TopicID](nil)
	writes := []store.Write{
		store.Delete{Paths: []store.Path{paths.DiscussionTopic()}},
	}
	writes = append(writes, d.clearTimer(paths)...)
	writes = append(writes, d.clearPoll(paths)...)
	return writes
}

// StartPoll opens the continuation poll.
func (d *Discussion) StartPoll(paths store.Paths) []store.Write {
	d.pollActive = remote.Got(true)
	return []store.Write{
		store.Set{Path: paths.ContinuationVote(), Doc: store.EncodeContinuationVoteDoc(true)},
	}
}

// ClearPoll closes the poll and removes every cast ballot, so a fresh
// poll can never inherit stale ballots.
func (d *Discussion) ClearPoll(paths store.Paths) []store.Write {
	return d.clearPoll(paths)
}

func (d *Discussion) clearPoll(paths store.Paths) []store.Write {
	ballots := d.ballots.OrZero()
	d.pollActive = remote.Got(false)
	d.ballots = remote.Got[[]model.ContinuationVote](nil)

	deletePaths := make([]store.Path, 0, len(ballots))
	for _, b := range ballots {
		deletePaths = append(deletePaths, paths.ContinuationBallot(b.UserID))
	}

	writes := []store.Write{
		store.Set{Path: paths.ContinuationVote(), Doc: store.EncodeContinuationVoteDoc(false)},
	}
	if len(deletePaths) > 0 {
		writes = append(writes, store.Delete{Paths: deletePaths})
	}
	return writes
}

// CastBallot upserts the user's continuation vote: recasting replaces
// the prior choice, it never adds a second ballot.
func (d *Discussion) CastBallot(user model.UserID, choice model.ContinuationChoice, paths store.Paths) []store.Write {
	ballot := model.ContinuationVote{UserID: user, Choice: choice}

	ballots := d.ballots.OrZero()
	replaced := false
	for i, b := range ballots {
		if b.UserID == user {
			ballots[i] = ballot
			replaced = true
			break
		}
	}
	if !replaced {
		ballots = append(ballots, ballot)
	}
	d.ballots = remote.Got(ballots)

	return []store.Write{
		store.Set{Path: paths.ContinuationBallot(user), Doc: store.EncodeContinuationBallot(ballot)},
	}
}

// RetractBallot removes that user's ballot only.
func (d *Discussion) RetractBallot(user model.UserID, paths store.Paths) []store.Write {
	ballots := d.ballots.OrZero()
	kept := ballots[:0]
	for _, b := range ballots {
		if b.UserID != user {
			kept = append(kept, b)
		}
	}
	d.ballots = remote.Got(kept)

	return []store.Write{
		store.Delete{Paths: []store.Path{paths.ContinuationBallot(user)}},
	}
}

// SetTimer sets the deadline to now + minutes, clamping negative input
// to zero. A new timer signals a new discussion phase, so any active
// continuation poll is cleared with it.
func (d *Discussion) SetTimer(now model.Timestamp, minutes int, paths store.Paths) []store.Write {
	if minutes < 0 {
		minutes = 0
	}
	deadline := now + model.Timestamp(minutes*millisPerMinute)
	d.deadline = remote.Got(&deadline)

	writes := []store.Write{
		store.Set{Path: paths.Deadline(), Doc: store.EncodeDeadline(deadline)},
	}
	writes = append(writes, d.clearPoll(paths)...)
	return writes
}

// ClearTimer removes the deadline.
func (d *Discussion) ClearTimer(paths store.Paths) []store.Write {
	return d.clearTimer(paths)
}

func (d *Discussion) clearTimer(paths store.Paths) []store.Write {
	d.deadline = remote.Got[*model.Timestamp](nil)
	return []store.Write{
		store.Delete{Paths: []store.Path{paths.Deadline()}},
	}
}

// Echoes from the store replace each slot wholesale.

// ApplyTopicDoc applies the in-discussion document delivery.
func (d *Discussion) ApplyTopicDoc(doc store.DiscussionTopicDoc) {
	d.current = remote.Got(doc.TopicID)
}

// ApplyPollDoc applies the poll-activity document delivery.
func (d *Discussion) ApplyPollDoc(doc store.ContinuationVoteDoc) {
	d.pollActive = remote.Got(doc.Active)
}

// ApplyBallots applies a ballots snapshot.
func (d *Discussion) ApplyBallots(snap store.ContinuationBallots) {
	d.ballots = remote.Got(snap.Ballots)
}

// ApplyHistory applies a discussed-history snapshot.
func (d *Discussion) ApplyHistory(snap store.DiscussedSnapshot) {
	d.history = remote.Got(snap.Entries)
}

// ApplyDeadline applies the deadline document delivery.
func (d *Discussion) ApplyDeadline(doc store.DeadlineDoc) {
	d.deadline = remote.Got(doc.Deadline)
}

// RemainingMinutes returns the whole minutes until deadline, rounded up
// and clamped to zero. 90 seconds out is 2 minutes; a deadline in the
// past is 0, never negative.
func RemainingMinutes(now, deadline model.Timestamp) int {
	diff := int64(deadline) - int64(now)
	if diff <= 0 {
		return 0
	}
	return int((diff + millisPerMinute - 1) / millisPerMinute)
}

// AtOrBelow reports whether the remaining time is at or below k whole
// minutes. The presentation layer uses k=1 and k=0 as distinct urgency
// states.
func AtOrBelow(now, deadline model.Timestamp, k int) bool {
	return RemainingMinutes(now, deadline) <= k
}
