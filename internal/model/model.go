// Package model defines the domain records shared by the engine and the
// store codec: topics, votes, continuation ballots, discussion history,
// timestamps, and the user identity variants.
package model

import "fmt"

// TopicID is a client-minted UUID, assigned at creation and never reused.
type TopicID string

// UserID is the opaque identity supplied by the auth collaborator.
type UserID string

// Topic is a discussion candidate. Only Text is mutable after creation
// (by the creator or an admin); CreatedAt is assigned by the store.
type Topic struct {
	ID        TopicID
	Text      string
	CreatorID UserID
	CreatedAt *Timestamp
}

// Vote records that one user voted for one topic. Identity is the
// (UserID, TopicID) pair: a user votes for a topic at most once.
type Vote struct {
	UserID  UserID
	TopicID TopicID
}

// DocID is the vote's document identifier, "userId:topicId".
// Using the composite as the id makes vote writes naturally idempotent.
func (v Vote) DocID() string {
	return fmt.Sprintf("%s:%s", v.UserID, v.TopicID)
}

// ContinuationChoice is a ballot in the "keep discussing?" poll.
type ContinuationChoice string

const (
	MoveOn  ContinuationChoice = "moveOn"
	Stay    ContinuationChoice = "stay"
	Abstain ContinuationChoice = "abstain"
)

// ParseContinuationChoice decodes a stored ballot value.
func ParseContinuationChoice(s string) (ContinuationChoice, error) {
	switch ContinuationChoice(s) {
	case MoveOn, Stay, Abstain:
		return ContinuationChoice(s), nil
	default:
		return "", fmt.Errorf("unknown continuation choice %q", s)
	}
}

// ContinuationVote is one user's current ballot. At most one per user;
// recasting replaces the prior choice.
type ContinuationVote struct {
	UserID UserID
	Choice ContinuationChoice
}

// DiscussedTopic is one entry of the finished-discussions history.
// FinishedAt is nil when the server timestamp has not round-tripped yet;
// a nil timestamp sorts as most recent.
type DiscussedTopic struct {
	TopicID    TopicID
	FinishedAt *Timestamp
}
