package store

import "sync"

// deliveryQueue is an unbounded FIFO of deliveries with a single drainer.
//
// Writes must never block on the consumer: Apply is called from the same
// goroutine that later consumes the delivery stream, so a bounded channel
// between them could deadlock. The queue absorbs bursts and a dedicated
// goroutine drains it into the outbound channel in order.
type deliveryQueue struct {
	mu      sync.Mutex
	pending []Delivery
	closed  bool
	signal  chan struct{} // coalesced availability signal (buffered, size 1)
}

func newDeliveryQueue() *deliveryQueue {
	return &deliveryQueue{
		pending: make([]Delivery, 0, 16),
		signal:  make(chan struct{}, 1),
	}
}

// push appends deliveries to the back of the queue.
// Thread-safe; no-op after close.
func (q *deliveryQueue) push(ds ...Delivery) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.pending = append(q.pending, ds...)

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// pop removes and returns the front delivery without blocking.
func (q *deliveryQueue) pop() (Delivery, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil, false
	}

	d := q.pending[0]
	// Nil the slot so the backing array does not retain the delivery.
	q.pending[0] = nil
	if len(q.pending) == 1 {
		q.pending = q.pending[:0]
	} else {
		q.pending = q.pending[1:]
	}
	return d, true
}

func (q *deliveryQueue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// close stops the queue and wakes the drainer.
func (q *deliveryQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

// drain forwards queued deliveries to out, in order, until the queue is
// closed and empty. Closes out on return. Run in its own goroutine.
func (q *deliveryQueue) drain(out chan<- Delivery) {
	defer close(out)
	for {
		if d, ok := q.pop(); ok {
			out <- d
			continue
		}
		if q.isClosed() {
			return
		}
		<-q.signal
	}
}
