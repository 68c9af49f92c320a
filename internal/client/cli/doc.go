// Package cli is the interactive HangarKeeper client.
//
// App wires the resource services, the selection store and the query cache
// into a REPL. Reads go through the shared cache, so repeating a listing
// within the stale time costs no request; writes print the server's answer
// and invalidate what they affect. A background watcher pings the API and
// invalidates everything when connectivity comes back.
//
// Start with login, then use-company and use-station; station-scoped
// commands (stock, batches) stay unavailable until both are set. Run App.Run
// to block until the user exits.
package cli
