// Package engine implements the client-side reconciliation core and
// discussion-flow state machine.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// All state mutation happens in reaction to one event at a time - a store
// delivery, a timer tick, or a local user intent - processed on a single
// goroutine. No two reconciliation steps ever run concurrently, so the
// core needs no locking.
//
// Event Processing Flow:
// 1. Events enqueued to a FIFO queue (intents) or arrive on the store's
//    delivery stream.
// 2. Loop.Run() consumes them one at a time.
// 3. App.Apply() dispatches on event kind and mutates exactly one slice
//    of state.
// 4. Intents may produce store writes; these are fire-and-forget, and
//    their effects are observed later as ordinary inbound deliveries.
//
// Ordering: deliveries for a collection are applied in the order the
// store emits them, never reordered or batched across.
//
// CRITICAL PATTERNS:
//
// Bootstrap sort: the topic list is sorted automatically exactly twice at
// most - once when the first topic diff arrives and once when the first
// vote snapshot arrives. Every later diff preserves the order a user may
// be looking at; reordering after that is always an explicit command.
// The one-shot behavior hangs on an explicit flag, not on state shape.
//
// Errors are non-fatal: anything the core cannot interpret is dropped
// with a dismissible banner, and the affected value keeps its last good
// state. There is no crash path in this package.
package engine
