package engine

import (
	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/remote"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/store"
)

// Reconciler folds inbound topic diffs and vote snapshots into one
// locally consistent, explicitly ordered view.
//
// Sorting discipline: the list is auto-sorted at most twice, ever - when
// the first topic diff builds the list, and when the first vote snapshot
// arrives (so the first paint is vote-ordered however topics and votes
// race). Every other diff or snapshot preserves the current order; a
// reorder after bootstrap only happens through Sort.
type Reconciler struct {
	topics remote.Value[*TopicList]
	tally  remote.Value[VoteTally]

	// autoSorted records that an automatic sort with real vote data has
	// happened. An explicit flag, deliberately not inferred from state
	// shape: re-deriving it would re-trigger the sort on every vote
	// snapshot that races a slow topics subscription.
	autoSorted bool
}

// NewReconciler starts with both collections Loading.
func NewReconciler() *Reconciler {
	return &Reconciler{
		topics: remote.Loading[*TopicList](),
		tally:  remote.Loading[VoteTally](),
	}
}

// Topics returns the topic list once the first diff has arrived.
func (r *Reconciler) Topics() (*TopicList, bool) {
	return r.topics.Get()
}

// Tally returns the current tally; zero counts while votes are Loading.
func (r *Reconciler) Tally() VoteTally {
	return r.tally.OrZero()
}

// TallyLoaded reports whether a vote snapshot has arrived.
func (r *Reconciler) TallyLoaded() bool {
	return r.tally.Loaded()
}

// ApplyTopicDiff folds one diff batch into the collection.
//
// The very first batch builds the list from its added records and sorts
// immediately with whatever tally is available (zero if votes have not
// arrived). Every later batch applies without resorting, even when the
// diff changes vote-affecting data: a list the user is reading must not
// reshuffle under them.
func (r *Reconciler) ApplyTopicDiff(diff store.TopicDiff) {
	if list, ok := r.topics.Get(); ok {
		list.ApplyDiff(diff)
		return
	}

	list := NewTopicList(diff.Added)
	list.SortStableBy(r.Tally())
	if r.tally.Loaded() {
		r.autoSorted = true
	}
	r.topics = remote.Got(list)
}

// ApplyVoteSnapshot replaces the tally wholesale. The first snapshot
// triggers the one automatic sort pass over the current collection;
// later snapshots update counts only.
func (r *Reconciler) ApplyVoteSnapshot(votes []model.Vote) {
	r.tally = remote.Got(RebuildTally(votes))

	if r.autoSorted {
		return
	}
	if list, ok := r.topics.Get(); ok {
		list.SortStableBy(r.Tally())
		r.autoSorted = true
	}
	// Topics still Loading: the bootstrap in ApplyTopicDiff will sort
	// with this tally and set the flag.
}

// Sort performs an explicit stable re-sort with the current tally.
func (r *Reconciler) Sort() {
	if list, ok := r.topics.Get(); ok {
		list.SortStableBy(r.Tally())
	}
}

// IsSorted reports whether an explicit sort would change anything.
// True while topics are still Loading.
func (r *Reconciler) IsSorted() bool {
	list, ok := r.topics.Get()
	if !ok {
		return true
	}
	return list.IsSorted(r.Tally())
}
