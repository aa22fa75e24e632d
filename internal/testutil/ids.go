package testutil

import (
	"fmt"
	"sync"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
)

// IDSequence mints predictable topic ids ("topic-1", "topic-2", ...) in
// place of random UUIDs, so golden files and assertions stay stable.
type IDSequence struct {
	mu   sync.Mutex
	next int
}

// NewIDSequence starts a sequence at topic-1.
func NewIDSequence() *IDSequence {
	return &IDSequence{next: 1}
}

// NewTopicID returns the next id in the sequence.
func (s *IDSequence) NewTopicID() model.TopicID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := model.TopicID(fmt.Sprintf("topic-%d", s.next))
	s.next++
	return id
}
