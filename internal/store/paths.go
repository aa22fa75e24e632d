package store

import "github.com/Y0hy0h/uxac-lean-coffee/internal/model"

// Paths builds document and collection paths, prefixing every path with
// "workspaces/<w>" when a workspace is configured.
type Paths struct {
	Workspace string
}

func (p Paths) root() Path {
	if p.Workspace == "" {
		return nil
	}
	return Path{"workspaces", p.Workspace}
}

// Topics is the topics collection.
func (p Paths) Topics() Path {
	return p.root().Child("topics")
}

// Topic is one topic document.
func (p Paths) Topic(id model.TopicID) Path {
	return p.Topics().Child(string(id))
}

// Votes is the votes collection.
func (p Paths) Votes() Path {
	return p.root().Child("votes")
}

// Vote is one vote document, keyed "userId:topicId".
func (p Paths) Vote(v model.Vote) Path {
	return p.Votes().Child(v.DocID())
}

// DiscussionTopic is the single in-discussion document.
func (p Paths) DiscussionTopic() Path {
	return p.root().Child("discussion").Child("topic")
}

// ContinuationVote is the single poll-activity document.
func (p Paths) ContinuationVote() Path {
	return p.root().Child("discussion").Child("continuationVote")
}

// Deadline is the single countdown deadline document.
func (p Paths) Deadline() Path {
	return p.root().Child("discussion").Child("deadline")
}

// ContinuationBallots is the collection of cast continuation votes.
func (p Paths) ContinuationBallots() Path {
	return p.root().Child("continuationVotes")
}

// ContinuationBallot is one user's ballot document.
func (p Paths) ContinuationBallot(id model.UserID) Path {
	return p.ContinuationBallots().Child(string(id))
}

// Discussed is the finished-discussions history collection.
func (p Paths) Discussed() Path {
	return p.root().Child("discussed")
}

// TagFor maps a subscription tag to the path it watches.
func (p Paths) TagFor(tag Tag) Path {
	switch tag {
	case TagTopics:
		return p.Topics()
	case TagVotes:
		return p.Votes()
	case TagDiscussionTopic:
		return p.DiscussionTopic()
	case TagContinuationVote:
		return p.ContinuationVote()
	case TagContinuationBallots:
		return p.ContinuationBallots()
	case TagDiscussed:
		return p.Discussed()
	case TagDeadline:
		return p.Deadline()
	default:
		return nil
	}
}
