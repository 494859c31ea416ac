// Package chat persists Raven's chat sessions and their records, and owns the
// session ordinal invariant.
//
// Invariant: for a fixed user, session ordinals are exactly the contiguous
// range 1..N (N = that user's session count) with no duplicates and no gaps,
// after every completed operation. Creation appends at N+1, a move shifts the
// minimal contiguous block of neighbors, and deletion compacts the ordinals
// above the removed session.
//
// Concurrency model:
//   - PostgresStore executes every ordinal mutation in a single transaction
//     holding a per-user advisory xact lock, so conflicting mutations for the
//     same user serialize and partial shifts are never observable. Different
//     users' session sets are fully independent.
//   - InMemoryStore serializes all mutations behind one mutex.
package chat
