// Package shares defines the data model for network file shares and the
// error taxonomy used by discovery, validation and status checking.
//
// # Data Model
//
// The package revolves around three small value types:
//
//   - Host: a network endpoint advertising the share service (name + address)
//   - Share: a named exported directory on a host
//   - ConnectionStatus: the liveness of a share as last observed
//
// Share identity for deduplication is the (host address, share name) pair,
// exposed as Key. The opaque ID exists so consumers can reference a share
// stably across scans; it plays no part in equality.
//
// # Connection Status
//
// ConnectionStatus is a closed set of states:
//
//	Unknown   never evaluated
//	Checking  refresh in flight
//	Online    last check succeeded
//	Offline   last check failed, with a human-readable reason
//
// # Errors
//
// All validation and connection failures are reported as *ShareError with
// a typed category (timeout, authentication, share not found, ...). The
// category lets callers special-case retries while the embedded host and
// share name make the error renderable without extra context:
//
//	share, err := tester.TestConnection(ctx, host, name, creds)
//	if shares.IsTimeout(err) {
//	    // offer a retry
//	}
//	fmt.Println(shares.ShortMessage(err))
//
// ClassifyConnectionError translates raw net/syscall errors into the
// taxonomy; implementations of the connection capabilities use it so the
// rest of the system never sees an untyped network error.
package shares
