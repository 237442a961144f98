package discovery

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/sharewatch/internal/logging"
	"github.com/muurk/sharewatch/internal/shares"
	"github.com/muurk/sharewatch/internal/urls"
)

const (
	// DefaultScanTimeout is how long a scan session runs before being
	// force-stopped
	DefaultScanTimeout = 10 * time.Second

	// DefaultConnectTimeout bounds a single manual-add validation attempt
	DefaultConnectTimeout = 15 * time.Second
)

// Config carries the constructor-time parameters for an Orchestrator.
// Zero values select the defaults above.
type Config struct {
	// ScanTimeout bounds one discovery session
	ScanTimeout time.Duration

	// ConnectTimeout bounds one manual-share validation attempt
	ConnectTimeout time.Duration
}

// Orchestrator runs time-bounded, deduplicated scans of the local network
// for shares and maintains a separate list of manually validated shares.
//
// A scan session subscribes to the host stream, dispatches one concurrent
// enumeration per previously-unseen host address, and merges results into
// the discovered list under (host address, share name) deduplication.
// The session ends on StopDiscovery or when the scan timeout fires,
// whichever comes first.
type Orchestrator struct {
	discoverer HostDiscoverer
	enumerator ShareEnumerator
	tester     ConnectionTester

	scanTimeout    time.Duration
	connectTimeout time.Duration

	mu         sync.Mutex
	discovered []shares.Share
	manual     []shares.Share
	queried    map[string]bool
	session    *scanSession
}

// scanSession is one run of the scan state machine. Cancelling the
// context stops the host stream and every in-flight enumeration; done is
// closed once the session has fully wound down.
type scanSession struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewOrchestrator creates an orchestrator over the given capabilities
func NewOrchestrator(d HostDiscoverer, e ShareEnumerator, t ConnectionTester, cfg Config) *Orchestrator {
	if cfg.ScanTimeout <= 0 {
		cfg.ScanTimeout = DefaultScanTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	return &Orchestrator{
		discoverer:     d,
		enumerator:     e,
		tester:         t,
		scanTimeout:    cfg.ScanTimeout,
		connectTimeout: cfg.ConnectTimeout,
	}
}

// StartDiscovery starts a scan session. It is a no-op if a session is
// already running. Starting a session discards the previous session's
// discovered shares and queried-host set.
func (o *Orchestrator) StartDiscovery() {
	o.mu.Lock()
	if o.session != nil {
		o.mu.Unlock()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.scanTimeout)
	sess := &scanSession{cancel: cancel, done: make(chan struct{})}
	o.session = sess
	o.discovered = nil
	o.queried = make(map[string]bool)
	o.mu.Unlock()

	logging.Debug("Scan session started", zap.Duration("timeout", o.scanTimeout))
	go o.runScan(ctx, sess)
}

// StopDiscovery stops the current scan session, cancelling the host
// stream and all in-flight enumerations, and waits for the session to
// wind down. It is a no-op when no session is running.
func (o *Orchestrator) StopDiscovery() {
	o.mu.Lock()
	sess := o.session
	o.mu.Unlock()
	if sess == nil {
		return
	}

	sess.cancel()
	<-sess.done
}

// Rescan stops the current session (if any) and starts a fresh one
func (o *Orchestrator) Rescan() {
	o.StopDiscovery()
	o.StartDiscovery()
}

// IsScanning reports whether a scan session is currently running
func (o *Orchestrator) IsScanning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session != nil
}

// runScan is the scan session body. It consumes the host stream until the
// session context is cancelled (stop or timeout), fanning out one
// enumeration goroutine per new host address.
func (o *Orchestrator) runScan(ctx context.Context, sess *scanSession) {
	defer close(sess.done)
	defer func() {
		o.mu.Lock()
		if o.session == sess {
			o.session = nil
		}
		o.mu.Unlock()
		sess.cancel()
		logging.Debug("Scan session ended")
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	hostCh, err := o.discoverer.DiscoverHosts(ctx)
	if err != nil {
		logging.Warn("Host discovery failed to start", zap.Error(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case host, ok := <-hostCh:
			if !ok {
				// Stream ended on its own; the session stays open for
				// in-flight enumerations until stop or timeout
				<-ctx.Done()
				return
			}
			if !o.markQueried(sess, host.Address) {
				continue
			}
			wg.Add(1)
			go func(h shares.Host) {
				defer wg.Done()
				o.enumerateHost(ctx, sess, h)
			}(host)
		}
	}
}

// markQueried records that a host address has been dispatched for
// enumeration in this session. It returns false when the address was
// already queried or the session is no longer current.
func (o *Orchestrator) markQueried(sess *scanSession, address string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != sess || o.queried[address] {
		return false
	}
	o.queried[address] = true
	return true
}

// enumerateHost lists one host's shares and merges the result. A failure
// is logged and swallowed; it never aborts the session.
func (o *Orchestrator) enumerateHost(ctx context.Context, sess *scanSession, host shares.Host) {
	found, err := o.enumerator.ListShares(ctx, host)
	if err != nil {
		logging.Warn("Share enumeration failed",
			zap.String("host", host.Address),
			zap.Error(err),
		)
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	// A cancelled task must not touch the discovered list, and a stale
	// task must not leak results into a newer session
	if ctx.Err() != nil || o.session != sess {
		return
	}

	seen := make(map[shares.Key]bool, len(o.discovered))
	for _, s := range o.discovered {
		seen[s.Key()] = true
	}
	for _, s := range found {
		if seen[s.Key()] {
			continue
		}
		seen[s.Key()] = true
		o.discovered = append(o.discovered, s)
	}

	logging.Debug("Merged enumeration result",
		zap.String("host", host.Address),
		zap.Int("shares", len(found)),
	)
}

// AddManualShare validates a share location entered by the user and, on
// success, records it in the manual list.
//
// The location is parsed first; an unsupported scheme fails immediately
// with a typed error and no network traffic. Validation errors from the
// connection tester propagate to the caller unchanged. When the validated
// share duplicates an existing manual or discovered entry (same host
// address and share name, compared exactly), the validated share is
// returned without being appended, making the call idempotent.
func (o *Orchestrator) AddManualShare(ctx context.Context, input string, creds shares.Credentials) (shares.Share, error) {
	loc, err := urls.Parse(input)
	if err != nil {
		return shares.Share{}, err
	}

	cctx, cancel := context.WithTimeout(ctx, o.connectTimeout)
	defer cancel()

	validated, err := o.tester.TestConnection(cctx, loc.Host, loc.ShareName, creds)
	if err != nil {
		return shares.Share{}, err
	}
	validated.ManuallyAdded = true

	o.mu.Lock()
	defer o.mu.Unlock()

	key := validated.Key()
	for _, s := range o.manual {
		if s.Key() == key {
			return validated, nil
		}
	}
	for _, s := range o.discovered {
		if s.Key() == key {
			return validated, nil
		}
	}

	o.manual = append(o.manual, validated)
	logging.Info("Manual share added",
		zap.String("host", validated.HostAddress),
		zap.String("share", validated.ShareName),
	)
	return validated, nil
}

// RemoveManualShare removes a manual share by identifier. Removing an
// unknown identifier is a no-op.
func (o *Orchestrator) RemoveManualShare(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, s := range o.manual {
		if s.ID == id {
			o.manual = append(o.manual[:i], o.manual[i+1:]...)
			return
		}
	}
}

// Shares returns a copy of the discovered-share list for the current or
// most recent session
func (o *Orchestrator) Shares() []shares.Share {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]shares.Share, len(o.discovered))
	copy(out, o.discovered)
	return out
}

// ManualShares returns a copy of the manual-share list
func (o *Orchestrator) ManualShares() []shares.Share {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]shares.Share, len(o.manual))
	copy(out, o.manual)
	return out
}

// AllShares returns manual shares followed by discovered shares, each
// group independently sorted by display name (case-insensitive). The
// ordering is derived on every call, never stored.
func (o *Orchestrator) AllShares() []shares.Share {
	manual := o.ManualShares()
	discovered := o.Shares()
	shares.SortByDisplayName(manual)
	shares.SortByDisplayName(discovered)
	return append(manual, discovered...)
}
