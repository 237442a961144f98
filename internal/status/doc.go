// Package status tracks the live reachability of saved shares.
//
// The Tracker maps share identifiers to a ConnectionStatus and owns the
// refresh lifecycle for each one. Refreshing runs a real connection check
// through the injected Checker; the result is written back only if the
// refresh was not superseded in the meantime.
//
// # At Most One Winner
//
// Issuing two refreshes for the same share in quick succession results in
// exactly one status write: the second refresh cancels the first when it
// begins, and every refresh re-checks its own cancellation state under
// the tracker lock immediately before writing. A refresh that was issued
// earlier but completes later can therefore never clobber a newer result.
// Cancellation is cooperative: a cancelled check may run to completion,
// its result is simply discarded.
//
// # Usage
//
//	tracker := status.NewTracker(checker)
//	tracker.StartTracking(share.ID)
//	tracker.RefreshStatus(ctx, share, creds)
//	fmt.Println(tracker.Status(share.ID)) // Online, or Offline (reason)
//
// RefreshStatus and RefreshAll block until the refresh has completed and
// the result has been written; run them in a goroutine when the caller
// must not wait.
//
// # Events
//
// Subscribe returns a best-effort stream of status transitions for
// consumers like the watch TUI and the status server. Slow subscribers
// miss events instead of blocking the tracker.
package status
