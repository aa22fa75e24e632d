package engine

import "github.com/Y0hy0h/uxac-lean-coffee/internal/model"

// VoteTally maps each topic to the set of users who voted for it.
//
// The votes collection is always delivered as a full snapshot, so the
// tally is always rebuilt wholesale; there is no partial-update path.
// The zero VoteTally counts zero for everything.
type VoteTally struct {
	voters map[model.TopicID]map[model.UserID]struct{}
}

// RebuildTally folds a full vote snapshot into a tally, grouping by
// topic. Duplicate (user, topic) records collapse into one vote.
func RebuildTally(votes []model.Vote) VoteTally {
	voters := make(map[model.TopicID]map[model.UserID]struct{})
	for _, v := range votes {
		set, ok := voters[v.TopicID]
		if !ok {
			set = make(map[model.UserID]struct{})
			voters[v.TopicID] = set
		}
		set[v.UserID] = struct{}{}
	}
	return VoteTally{voters: voters}
}

// CountFor returns the number of distinct voters for a topic.
func (t VoteTally) CountFor(id model.TopicID) int {
	return len(t.voters[id])
}

// HasVote reports whether user has a vote for topic.
func (t VoteTally) HasVote(user model.UserID, topic model.TopicID) bool {
	_, ok := t.voters[topic][user]
	return ok
}

// VotersFor returns the users who voted for a topic, in no particular
// order. Used to cascade vote deletion when a topic is deleted.
func (t VoteTally) VotersFor(id model.TopicID) []model.UserID {
	set := t.voters[id]
	voters := make([]model.UserID, 0, len(set))
	for u := range set {
		voters = append(voters, u)
	}
	return voters
}
