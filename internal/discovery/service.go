package discovery

import (
	"context"

	"github.com/muurk/sharewatch/internal/shares"
)

// HostDiscoverer emits a live stream of hosts advertising the share
// service. The stream is unbounded and unordered; the same host may be
// emitted more than once. Implementations stop producing and close the
// channel when ctx is cancelled.
type HostDiscoverer interface {
	DiscoverHosts(ctx context.Context) (<-chan shares.Host, error)
}

// ShareEnumerator lists the shares a single host exports. Administrative
// shares (names ending in "$") are filtered out by the enumerator.
// Failures are reported as *shares.ShareError.
type ShareEnumerator interface {
	ListShares(ctx context.Context, host shares.Host) ([]shares.Share, error)
}

// ConnectionTester validates that a share is reachable with the given
// credentials by performing a real connection attempt. On success it
// returns the validated share descriptor; on failure a *shares.ShareError
// describing why.
type ConnectionTester interface {
	TestConnection(ctx context.Context, host, shareName string, creds shares.Credentials) (shares.Share, error)
}
