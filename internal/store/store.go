package store

import (
	"context"
	"strings"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
)

// Tag identifies a subscription and routes inbound data to its reconciler.
type Tag string

const (
	TagTopics              Tag = "topics"
	TagVotes               Tag = "votes"
	TagDiscussionTopic     Tag = "discussion/topic"
	TagContinuationVote    Tag = "discussion/continuationVote"
	TagContinuationBallots Tag = "continuationVotes"
	TagDiscussed           Tag = "discussed"
	TagDeadline            Tag = "discussion/deadline"
)

// Tags lists every subscription the engine needs, in a fixed order.
var Tags = []Tag{
	TagTopics,
	TagVotes,
	TagDiscussionTopic,
	TagContinuationVote,
	TagContinuationBallots,
	TagDiscussed,
	TagDeadline,
}

// Path addresses a document or collection as a list of segments.
type Path []string

// String renders the path with "/" separators, for logging and storage keys.
func (p Path) String() string {
	return strings.Join(p, "/")
}

// Child returns p extended by one segment.
func (p Path) Child(segment string) Path {
	child := make(Path, 0, len(p)+1)
	child = append(child, p...)
	return append(child, segment)
}

// Document is the raw field map of one stored document.
type Document map[string]any

// ServerTimestamp is a sentinel document value that the store backend
// replaces with its own clock at write time.
type ServerTimestamp struct{}

// RawDoc is a document paired with its id, as delivered on the wire.
type RawDoc struct {
	ID   string   `json:"id"`
	Data Document `json:"data"`
}

// Write is a fire-and-forget store command: Insert, Set, or Delete.
type Write interface {
	isWrite()
}

// Insert adds a document to a collection; the store assigns the id.
type Insert struct {
	Collection Path
	Doc        Document
}

func (Insert) isWrite() {}

// Set upserts a document at a client-chosen path.
type Set struct {
	Path Path
	Doc  Document
}

func (Set) isWrite() {}

// Delete removes the listed documents as one batch. Best effort: the
// contract promises no multi-document atomicity, though SQLiteStore
// happens to apply the batch in one transaction.
type Delete struct {
	Paths []Path
}

func (Delete) isWrite() {}

// Delivery is one inbound notification, already decoded to domain records.
type Delivery interface {
	DeliveryTag() Tag
}

// TopicDiff is an incremental change batch for the topics collection.
type TopicDiff struct {
	Added    []model.Topic
	Modified []model.Topic
	Removed  []model.TopicID
}

func (TopicDiff) DeliveryTag() Tag { return TagTopics }

// VoteSnapshot is a full replacement listing of the votes collection.
type VoteSnapshot struct {
	Votes []model.Vote
}

func (VoteSnapshot) DeliveryTag() Tag { return TagVotes }

// DiscussionTopicDoc is the single optional in-discussion document.
// A nil TopicID means the document is absent (no topic in discussion).
type DiscussionTopicDoc struct {
	TopicID *model.TopicID
}

func (DiscussionTopicDoc) DeliveryTag() Tag { return TagDiscussionTopic }

// ContinuationVoteDoc is the single optional poll-activity document.
// An absent document decodes as Active=false.
type ContinuationVoteDoc struct {
	Active bool
}

func (ContinuationVoteDoc) DeliveryTag() Tag { return TagContinuationVote }

// ContinuationBallots is a full snapshot of the cast continuation votes.
type ContinuationBallots struct {
	Ballots []model.ContinuationVote
}

func (ContinuationBallots) DeliveryTag() Tag { return TagContinuationBallots }

// DiscussedSnapshot is a full snapshot of the finished-discussions history.
type DiscussedSnapshot struct {
	Entries []model.DiscussedTopic
}

func (DiscussedSnapshot) DeliveryTag() Tag { return TagDiscussed }

// DeadlineDoc is the single optional countdown deadline document.
// A nil Deadline means no timer is set.
type DeadlineDoc struct {
	Deadline *model.Timestamp
}

func (DeadlineDoc) DeliveryTag() Tag { return TagDeadline }

// Failure is an asynchronous transport or permission error from the store.
type Failure struct {
	Code    string
	Message string
}

func (Failure) DeliveryTag() Tag { return "" }

// Store is the collaborator contract the engine runs against.
//
// Apply submits writes; their effects come back later as ordinary
// deliveries, never as return values. Deliveries is the single ordered
// stream of inbound notifications; it closes when the store shuts down.
type Store interface {
	Apply(ctx context.Context, writes []Write) error
	Deliveries() <-chan Delivery
	Close() error
}
