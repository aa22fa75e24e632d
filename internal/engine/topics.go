package engine

import (
	"sort"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/store"
)

// TopicList is the ordered topic collection: an id-to-record mapping that
// preserves its manual order across every operation that does not
// explicitly ask for a sort.
type TopicList struct {
	order []model.TopicID
	byID  map[model.TopicID]model.Topic
}

// NewTopicList builds a list holding topics in the given order.
func NewTopicList(topics []model.Topic) *TopicList {
	l := &TopicList{byID: make(map[model.TopicID]model.Topic, len(topics))}
	for _, t := range topics {
		if _, ok := l.byID[t.ID]; !ok {
			l.order = append(l.order, t.ID)
		}
		l.byID[t.ID] = t
	}
	return l
}

// Len returns the number of topics.
func (l *TopicList) Len() int {
	return len(l.order)
}

// Get returns the record for id, if present.
func (l *TopicList) Get(id model.TopicID) (model.Topic, bool) {
	t, ok := l.byID[id]
	return t, ok
}

// Contains reports whether id is present.
func (l *TopicList) Contains(id model.TopicID) bool {
	_, ok := l.byID[id]
	return ok
}

// Topics returns the records in current order.
func (l *TopicList) Topics() []model.Topic {
	topics := make([]model.Topic, len(l.order))
	for i, id := range l.order {
		topics[i] = l.byID[id]
	}
	return topics
}

// Order returns the topic ids in current order.
func (l *TopicList) Order() []model.TopicID {
	order := make([]model.TopicID, len(l.order))
	copy(order, l.order)
	return order
}

// ApplyDiff folds one change batch into the list without resorting:
// removals first, then in-place replacement of modified records with
// their position preserved, then appends of added records at the end.
//
// The operations are idempotent: removing an absent id and modifying a
// record to identical content are no-ops.
func (l *TopicList) ApplyDiff(diff store.TopicDiff) {
	for _, id := range diff.Removed {
		l.remove(id)
	}
	for _, t := range diff.Modified {
		l.put(t)
	}
	for _, t := range diff.Added {
		l.put(t)
	}
}

func (l *TopicList) put(t model.Topic) {
	if _, ok := l.byID[t.ID]; !ok {
		l.order = append(l.order, t.ID)
	}
	l.byID[t.ID] = t
}

func (l *TopicList) remove(id model.TopicID) {
	if _, ok := l.byID[id]; !ok {
		return
	}
	delete(l.byID, id)
	for i, existing := range l.order {
		if existing == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// SortStableBy re-sorts the list by descending vote count. The sort is
// stable: topics with equal counts keep their existing relative order.
func (l *TopicList) SortStableBy(tally VoteTally) {
	sort.SliceStable(l.order, func(i, j int) bool {
		return tally.CountFor(l.order[i]) > tally.CountFor(l.order[j])
	})
}

// IsSorted reports whether SortStableBy would be a no-op. Drives whether
// the sort affordance is shown.
func (l *TopicList) IsSorted(tally VoteTally) bool {
	return sort.SliceIsSorted(l.order, func(i, j int) bool {
		return tally.CountFor(l.order[i]) > tally.CountFor(l.order[j])
	})
}
