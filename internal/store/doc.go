// Package store defines the collaborator contract for the remote
// document/collection store, plus two implementations of it.
//
// The contract has three parts:
//
//   - Write commands (Insert, Set, Delete) that the engine emits
//     fire-and-forget. Their effects are never observed as return values,
//     only as later inbound deliveries.
//   - Deliveries, the inbound side: incremental diffs for the topics
//     collection, full snapshots for votes/ballots/history, single
//     optional documents for the discussion slots, and asynchronous
//     failures. Each delivery carries the subscription tag that routes it
//     to the right reconciler.
//   - The codec translating raw documents to domain records and back,
//     including the {seconds, nanoseconds} server timestamp encoding.
//
// SQLiteStore keeps everything in a local file and is what `leancoffee
// run` uses without a network; WSStore speaks the same contract over a
// websocket to a shared backend. Both deliver changes in the order they
// were applied.
//
// Paths are workspace-scoped: with a workspace W configured, every path
// gets a "workspaces/W" prefix.
package store
