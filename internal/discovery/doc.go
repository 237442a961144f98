// Package discovery finds network file shares on the local network.
//
// Discovery has two independent halves: a host browser that watches mDNS
// for SMB service announcements, and an orchestrator that turns the raw
// host stream into a deduplicated list of shares.
//
// # Scan Sessions
//
// One call to StartDiscovery opens a scan session. For every host the
// browser reports, the orchestrator dispatches a concurrent share
// enumeration — at most once per host address per session, no matter how
// often mDNS re-announces the host. Successful enumerations are merged
// into the discovered list; per-host failures are logged and skipped so a
// single misbehaving server never aborts a scan.
//
// A session ends when StopDiscovery is called or when the scan timeout
// fires, whichever happens first. Both paths cancel the host stream and
// every in-flight enumeration.
//
//	orc := discovery.NewOrchestrator(
//	    discovery.NewBrowser(), enumerator, tester, discovery.Config{})
//	orc.StartDiscovery()
//	// ... later
//	orc.StopDiscovery()
//	for _, s := range orc.AllShares() {
//	    fmt.Println(s.DisplayName())
//	}
//
// # Manual Shares
//
// Shares can also be added by hand from a location like
// "smb://nas1.local/Media". AddManualShare validates the location with a
// real connection attempt before recording it, and is idempotent: adding
// a share that is already known (manually or via scan) returns the
// validated descriptor without creating a duplicate entry.
//
// # Capabilities
//
// The orchestrator depends only on the HostDiscoverer, ShareEnumerator
// and ConnectionTester interfaces, injected at construction. Production
// wiring uses the mDNS Browser from this package and the SMB
// implementations from internal/smb; tests substitute deterministic
// in-memory fakes.
package discovery
