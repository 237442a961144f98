package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/muurk/sharewatch/internal/shares"
)

// fakeDiscoverer hands each scan session its own host channel; emit
// delivers a host to the most recent session, blocking until the
// orchestrator has received it or the session ended. The stream never
// completes on its own, like a real mDNS browse.
type fakeDiscoverer struct {
	mu  sync.Mutex
	ctx context.Context
	ch  chan shares.Host
}

func newFakeDiscoverer() *fakeDiscoverer {
	return &fakeDiscoverer{}
}

func (f *fakeDiscoverer) DiscoverHosts(ctx context.Context) (<-chan shares.Host, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctx = ctx
	f.ch = make(chan shares.Host)
	return f.ch, nil
}

func (f *fakeDiscoverer) emit(h shares.Host) {
	// DiscoverHosts runs on the orchestrator's scan goroutine, so the
	// session's channel may not exist yet when emit is called; wait for a
	// live session before delivering.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		ctx, ch := f.ctx, f.ch
		f.mu.Unlock()
		if ctx == nil || ctx.Err() != nil {
			time.Sleep(time.Millisecond)
			continue
		}
		select {
		case ch <- h:
		case <-ctx.Done():
		}
		return
	}
}

// fakeEnumerator returns canned results per host address and records
// every call
type fakeEnumerator struct {
	mu        sync.Mutex
	calls     map[string]int
	byAddress map[string][]shares.Share
	errs      map[string]error

	// When set, results are only produced after the call's context has
	// been cancelled
	afterCancel bool
}

func newFakeEnumerator() *fakeEnumerator {
	return &fakeEnumerator{
		calls:     make(map[string]int),
		byAddress: make(map[string][]shares.Share),
		errs:      make(map[string]error),
	}
}

func (f *fakeEnumerator) ListShares(ctx context.Context, host shares.Host) ([]shares.Share, error) {
	f.mu.Lock()
	f.calls[host.Address]++
	result := f.byAddress[host.Address]
	err := f.errs[host.Address]
	f.mu.Unlock()

	if f.afterCancel {
		<-ctx.Done()
	}
	return result, err
}

func (f *fakeEnumerator) callCount(address string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[address]
}

// fakeTester validates shares without any network access
type fakeTester struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeTester) TestConnection(ctx context.Context, host, shareName string, creds shares.Credentials) (shares.Share, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return shares.Share{}, f.err
	}
	return shares.NewShare(host, host, shareName), nil
}

func (f *fakeTester) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newTestOrchestrator(d HostDiscoverer, e ShareEnumerator, t ConnectionTester) *Orchestrator {
	return NewOrchestrator(d, e, t, Config{
		ScanTimeout:    time.Second,
		ConnectTimeout: time.Second,
	})
}

func TestOrchestrator_SingleQueryPerHost(t *testing.T) {
	disc := newFakeDiscoverer()
	enum := newFakeEnumerator()
	enum.byAddress["10.0.0.5"] = []shares.Share{shares.NewShare("NAS1", "10.0.0.5", "Movies")}
	orc := newTestOrchestrator(disc, enum, &fakeTester{})

	orc.StartDiscovery()
	defer orc.StopDiscovery()

	// The same host re-announced three times, then a sentinel host. The
	// run loop handles hosts sequentially, so once the sentinel has been
	// enumerated all earlier dispatch decisions are final.
	nas1 := shares.Host{Name: "NAS1", Address: "10.0.0.5"}
	disc.emit(nas1)
	disc.emit(nas1)
	disc.emit(nas1)
	disc.emit(shares.Host{Name: "SENTINEL", Address: "10.0.0.99"})

	waitFor(t, "sentinel enumeration", func() bool { return enum.callCount("10.0.0.99") == 1 })

	if got := enum.callCount("10.0.0.5"); got != 1 {
		t.Errorf("host queried %d times, want 1", got)
	}
}

func TestOrchestrator_NoDuplicateShares(t *testing.T) {
	disc := newFakeDiscoverer()
	enum := newFakeEnumerator()
	// Two hosts report a share with the same (address, name) pair; only
	// one entry may survive the merge
	dup1 := shares.NewShare("NAS1", "10.0.0.5", "Movies")
	dup2 := shares.NewShare("NAS1", "10.0.0.5", "Movies")
	enum.byAddress["10.0.0.5"] = []shares.Share{dup1, shares.NewShare("NAS1", "10.0.0.5", "Music")}
	enum.byAddress["10.0.0.6"] = []shares.Share{dup2}
	orc := newTestOrchestrator(disc, enum, &fakeTester{})

	orc.StartDiscovery()
	disc.emit(shares.Host{Name: "NAS1", Address: "10.0.0.5"})
	disc.emit(shares.Host{Name: "NAS1-alias", Address: "10.0.0.6"})

	waitFor(t, "both hosts enumerated", func() bool {
		return enum.callCount("10.0.0.5") == 1 && enum.callCount("10.0.0.6") == 1
	})
	orc.StopDiscovery()

	got := orc.Shares()
	seen := make(map[shares.Key]bool)
	for _, s := range got {
		if seen[s.Key()] {
			t.Errorf("duplicate share in discovered list: %v", s.Key())
		}
		seen[s.Key()] = true
	}
	if len(got) != 2 {
		t.Errorf("discovered %d shares, want 2", len(got))
	}
}

func TestOrchestrator_TimeoutStopsScan(t *testing.T) {
	disc := newFakeDiscoverer() // feed never closed: stream never completes
	orc := NewOrchestrator(disc, newFakeEnumerator(), &fakeTester{}, Config{
		ScanTimeout: 50 * time.Millisecond,
	})

	orc.StartDiscovery()
	if !orc.IsScanning() {
		t.Fatal("IsScanning() = false right after StartDiscovery()")
	}

	waitFor(t, "scan to time out", func() bool { return !orc.IsScanning() })
}

func TestOrchestrator_StartIsIdempotent(t *testing.T) {
	disc := newFakeDiscoverer()
	enum := newFakeEnumerator()
	enum.byAddress["10.0.0.5"] = []shares.Share{shares.NewShare("NAS1", "10.0.0.5", "Movies")}
	orc := newTestOrchestrator(disc, enum, &fakeTester{})

	orc.StartDiscovery()
	defer orc.StopDiscovery()

	disc.emit(shares.Host{Name: "NAS1", Address: "10.0.0.5"})
	waitFor(t, "share merged", func() bool { return len(orc.Shares()) == 1 })

	// A second start during an active session must not reset the session
	orc.StartDiscovery()
	if len(orc.Shares()) != 1 {
		t.Errorf("StartDiscovery() during scan cleared results: %d shares", len(orc.Shares()))
	}
}

func TestOrchestrator_RescanClearsResults(t *testing.T) {
	disc := newFakeDiscoverer()
	enum := newFakeEnumerator()
	enum.byAddress["10.0.0.5"] = []shares.Share{shares.NewShare("NAS1", "10.0.0.5", "Movies")}
	enum.byAddress["10.0.0.6"] = []shares.Share{shares.NewShare("NAS2", "10.0.0.6", "Music")}
	orc := newTestOrchestrator(disc, enum, &fakeTester{})

	orc.StartDiscovery()
	disc.emit(shares.Host{Name: "NAS1", Address: "10.0.0.5"})
	waitFor(t, "first scan result", func() bool { return len(orc.Shares()) == 1 })

	orc.Rescan()
	defer orc.StopDiscovery()

	disc.emit(shares.Host{Name: "NAS2", Address: "10.0.0.6"})
	waitFor(t, "second scan result", func() bool { return enum.callCount("10.0.0.6") == 1 })
	waitFor(t, "rescan merge", func() bool {
		got := orc.Shares()
		return len(got) == 1 && got[0].ShareName == "Music"
	})

	// The first session's host may be re-announced and queried again in
	// the new session
	disc.emit(shares.Host{Name: "NAS1", Address: "10.0.0.5"})
	waitFor(t, "requery after rescan", func() bool { return enum.callCount("10.0.0.5") == 2 })
}

func TestOrchestrator_EnumerationFailureDoesNotAbortScan(t *testing.T) {
	disc := newFakeDiscoverer()
	enum := newFakeEnumerator()
	enum.errs["10.0.0.5"] = errors.New("listing failed")
	enum.byAddress["10.0.0.6"] = []shares.Share{shares.NewShare("NAS2", "10.0.0.6", "Music")}
	orc := newTestOrchestrator(disc, enum, &fakeTester{})

	orc.StartDiscovery()
	disc.emit(shares.Host{Name: "NAS1", Address: "10.0.0.5"})
	disc.emit(shares.Host{Name: "NAS2", Address: "10.0.0.6"})

	waitFor(t, "healthy host merged", func() bool { return len(orc.Shares()) == 1 })
	orc.StopDiscovery()

	got := orc.Shares()
	if len(got) != 1 || got[0].ShareName != "Music" {
		t.Errorf("Shares() = %v, want the single share from the healthy host", got)
	}
}

func TestOrchestrator_LateResultNotMergedAfterStop(t *testing.T) {
	disc := newFakeDiscoverer()
	enum := newFakeEnumerator()
	enum.afterCancel = true // results only arrive after cancellation
	enum.byAddress["10.0.0.5"] = []shares.Share{shares.NewShare("NAS1", "10.0.0.5", "Movies")}
	orc := newTestOrchestrator(disc, enum, &fakeTester{})

	orc.StartDiscovery()
	disc.emit(shares.Host{Name: "NAS1", Address: "10.0.0.5"})
	waitFor(t, "enumeration dispatched", func() bool { return enum.callCount("10.0.0.5") == 1 })

	// StopDiscovery cancels the in-flight enumeration and waits for it;
	// its late result must be discarded
	orc.StopDiscovery()

	if got := orc.Shares(); len(got) != 0 {
		t.Errorf("Shares() after stop = %v, want empty", got)
	}
}

func TestOrchestrator_AddManualShare(t *testing.T) {
	orc := newTestOrchestrator(newFakeDiscoverer(), newFakeEnumerator(), &fakeTester{})

	share, err := orc.AddManualShare(context.Background(), "smb://nas1.local/Media", shares.Credentials{})
	if err != nil {
		t.Fatalf("AddManualShare() error = %v", err)
	}
	if !share.ManuallyAdded {
		t.Error("validated share should be marked manually added")
	}
	if share.ShareName != "Media" {
		t.Errorf("share name = %v, want Media", share.ShareName)
	}
	if got := orc.ManualShares(); len(got) != 1 {
		t.Errorf("ManualShares() has %d entries, want 1", len(got))
	}
}

func TestOrchestrator_AddManualShare_UnsupportedProtocol(t *testing.T) {
	tester := &fakeTester{}
	orc := newTestOrchestrator(newFakeDiscoverer(), newFakeEnumerator(), tester)

	_, err := orc.AddManualShare(context.Background(), "ftp://nas1.local/Media", shares.Credentials{})
	if !shares.IsUnsupportedProtocol(err) {
		t.Fatalf("AddManualShare() error = %v, want unsupported protocol", err)
	}
	if tester.callCount() != 0 {
		t.Error("rejecting the scheme must not hit the network")
	}
}

func TestOrchestrator_AddManualShare_ValidationErrorPropagates(t *testing.T) {
	want := shares.NewAuthError("nas1.local", nil)
	tester := &fakeTester{err: want}
	orc := newTestOrchestrator(newFakeDiscoverer(), newFakeEnumerator(), tester)

	_, err := orc.AddManualShare(context.Background(), "smb://nas1.local/Media", shares.Credentials{})
	if !errors.Is(err, want) {
		t.Errorf("AddManualShare() error = %v, want the tester's error unchanged", err)
	}
	if got := orc.ManualShares(); len(got) != 0 {
		t.Errorf("failed validation must not record a share; got %d", len(got))
	}
}

func TestOrchestrator_AddManualShare_Idempotent(t *testing.T) {
	orc := newTestOrchestrator(newFakeDiscoverer(), newFakeEnumerator(), &fakeTester{})

	first, err := orc.AddManualShare(context.Background(), "smb://nas1.local/Media", shares.Credentials{})
	if err != nil {
		t.Fatalf("first AddManualShare() error = %v", err)
	}
	second, err := orc.AddManualShare(context.Background(), "smb://nas1.local/Media", shares.Credentials{})
	if err != nil {
		t.Fatalf("second AddManualShare() error = %v", err)
	}

	if second.Key() != first.Key() {
		t.Errorf("second call returned %v, want a share with key %v", second.Key(), first.Key())
	}
	if got := orc.ManualShares(); len(got) != 1 {
		t.Errorf("ManualShares() has %d entries, want exactly 1", len(got))
	}
}

func TestOrchestrator_AddManualShare_DuplicateOfDiscovered(t *testing.T) {
	disc := newFakeDiscoverer()
	enum := newFakeEnumerator()
	enum.byAddress["nas1.local"] = []shares.Share{shares.NewShare("NAS1", "nas1.local", "Media")}
	orc := newTestOrchestrator(disc, enum, &fakeTester{})

	orc.StartDiscovery()
	disc.emit(shares.Host{Name: "NAS1", Address: "nas1.local"})
	waitFor(t, "discovered share", func() bool { return len(orc.Shares()) == 1 })
	orc.StopDiscovery()

	share, err := orc.AddManualShare(context.Background(), "smb://nas1.local/Media", shares.Credentials{})
	if err != nil {
		t.Fatalf("AddManualShare() error = %v", err)
	}
	if share.ShareName != "Media" {
		t.Errorf("share name = %v, want Media", share.ShareName)
	}
	if got := orc.ManualShares(); len(got) != 0 {
		t.Errorf("a share already discovered must not be added manually; got %d", len(got))
	}
}

func TestOrchestrator_RemoveManualShare(t *testing.T) {
	orc := newTestOrchestrator(newFakeDiscoverer(), newFakeEnumerator(), &fakeTester{})

	share, err := orc.AddManualShare(context.Background(), "smb://nas1.local/Media", shares.Credentials{})
	if err != nil {
		t.Fatalf("AddManualShare() error = %v", err)
	}

	// Unknown id is a no-op
	orc.RemoveManualShare("no-such-id")
	if got := orc.ManualShares(); len(got) != 1 {
		t.Fatalf("ManualShares() has %d entries after no-op remove, want 1", len(got))
	}

	orc.RemoveManualShare(share.ID)
	if got := orc.ManualShares(); len(got) != 0 {
		t.Errorf("ManualShares() has %d entries after remove, want 0", len(got))
	}
}

func TestOrchestrator_AllSharesOrdering(t *testing.T) {
	disc := newFakeDiscoverer()
	enum := newFakeEnumerator()
	// NAS1 exports Movies (its Backup$ administrative share is filtered
	// by the enumerator and never reaches the orchestrator); NAS2
	// exports Music
	enum.byAddress["10.0.0.5"] = []shares.Share{shares.NewShare("NAS1", "10.0.0.5", "Movies")}
	enum.byAddress["10.0.0.6"] = []shares.Share{shares.NewShare("NAS2", "10.0.0.6", "Music")}
	orc := newTestOrchestrator(disc, enum, &fakeTester{})

	orc.StartDiscovery()
	disc.emit(shares.Host{Name: "NAS2", Address: "10.0.0.6"})
	disc.emit(shares.Host{Name: "NAS1", Address: "10.0.0.5"})
	waitFor(t, "both shares merged", func() bool { return len(orc.Shares()) == 2 })
	orc.StopDiscovery()

	all := orc.AllShares()
	want := []string{"NAS1/Movies", "NAS2/Music"}
	if len(all) != len(want) {
		t.Fatalf("AllShares() has %d entries, want %d", len(all), len(want))
	}
	for i, w := range want {
		if all[i].DisplayName() != w {
			t.Errorf("AllShares()[%d] = %v, want %v", i, all[i].DisplayName(), w)
		}
	}
}

func TestOrchestrator_AllSharesManualFirst(t *testing.T) {
	disc := newFakeDiscoverer()
	enum := newFakeEnumerator()
	enum.byAddress["10.0.0.5"] = []shares.Share{
		shares.NewShare("aaa", "10.0.0.5", "First"),
		shares.NewShare("zzz", "10.0.0.5", "Last"),
	}
	orc := newTestOrchestrator(disc, enum, &fakeTester{})

	if _, err := orc.AddManualShare(context.Background(), "smb://mmm.local/Middle", shares.Credentials{}); err != nil {
		t.Fatalf("AddManualShare() error = %v", err)
	}

	orc.StartDiscovery()
	disc.emit(shares.Host{Name: "aaa", Address: "10.0.0.5"})
	waitFor(t, "discovered shares", func() bool { return len(orc.Shares()) == 2 })
	orc.StopDiscovery()

	all := orc.AllShares()
	// Manual share sorts before every discovered share regardless of name
	want := []string{"mmm.local/Middle", "aaa/First", "zzz/Last"}
	for i, w := range want {
		if all[i].DisplayName() != w {
			t.Errorf("AllShares()[%d] = %v, want %v", i, all[i].DisplayName(), w)
		}
	}
}
