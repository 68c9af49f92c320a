// Package querycache is the process-wide, in-memory cache of server state.
//
// Entries are addressed by Key. EnsureFresh fetches an entry when it is
// absent, invalidated or older than its freshness window; concurrent callers
// for one key share a single fetch. When fetches for one key race, only the
// most recently initiated one may commit its result. Invalidate marks every
// entry under a key prefix stale and refetches those that have subscribers.
// Entries nobody observes are dropped by Sweep once the GC window passes.
package querycache
