package engine

import "github.com/Y0hy0h/uxac-lean-coffee/internal/model"

// Overlay is the per-topic local draft buffer. A draft shadows the
// canonical topic text while the user edits; canonical data keeps
// updating underneath and wins again the moment the draft is gone.
// Presence of a key means "this topic is in edit mode". Never persisted.
type Overlay struct {
	drafts map[model.TopicID]string
}

// NewOverlay returns an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{drafts: make(map[model.TopicID]string)}
}

// Draft returns the draft text for id and whether one is open.
func (o *Overlay) Draft(id model.TopicID) (string, bool) {
	text, ok := o.drafts[id]
	return text, ok
}

// BeginEdit opens a draft seeded with the topic's current text. Returns
// false when the topic is not in canonical data (nothing to edit).
func (o *Overlay) BeginEdit(id model.TopicID, topics *TopicList) bool {
	topic, ok := topics.Get(id)
	if !ok {
		return false
	}
	o.drafts[id] = topic.Text
	return true
}

// UpdateDraft overwrites an open draft. Editing a topic without an open
// draft is a no-op; this guards against stale input events from the
// presentation layer.
func (o *Overlay) UpdateDraft(id model.TopicID, text string) {
	if _, ok := o.drafts[id]; !ok {
		return
	}
	o.drafts[id] = text
}

// Commit closes the draft and returns the canonical record merged with
// the drafted text, ready to be written back.
//
// When the draft or the canonical topic is gone the commit is silently
// dropped (ok=false, no error): that is the race where the topic was
// deleted mid-edit, and a no-op is the resolution.
func (o *Overlay) Commit(id model.TopicID, topics *TopicList) (model.Topic, bool) {
	draft, ok := o.drafts[id]
	if !ok {
		return model.Topic{}, false
	}
	topic, ok := topics.Get(id)
	if !ok {
		return model.Topic{}, false
	}

	delete(o.drafts, id)
	topic.Text = model.NormalizeText(draft)
	return topic, true
}

// Discard drops the draft for id, if any.
func (o *Overlay) Discard(id model.TopicID) {
	delete(o.drafts, id)
}
