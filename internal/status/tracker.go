package status

import (
	"context"
	"sync"

	"github.com/muurk/sharewatch/internal/logging"
	"github.com/muurk/sharewatch/internal/shares"
)

// Checker produces a connection status for one share. Implementations
// never return an error: an unreachable share is a normal outcome,
// reported as Offline with a reason.
type Checker interface {
	CheckStatus(ctx context.Context, share shares.Share, creds shares.Credentials) shares.ConnectionStatus
}

// Target pairs a share with the credentials to check it with
type Target struct {
	Share       shares.Share
	Credentials shares.Credentials
}

// Event is one status transition, emitted to subscribers
type Event struct {
	ShareID string                  `json:"share_id"`
	Status  shares.ConnectionStatus `json:"status"`
}

// Tracker maintains the connection status of a set of shares.
//
// Each share has at most one refresh in flight at a time: starting a new
// refresh supersedes (cancels) the previous one, and a superseded refresh
// never writes its result. Statuses for untracked shares read as Unknown.
type Tracker struct {
	checker Checker

	mu        sync.Mutex
	statuses  map[string]shares.ConnectionStatus
	refreshes map[string]*refreshHandle
	subs      map[chan Event]struct{}
}

// refreshHandle represents one in-flight refresh. The context doubles as
// the cancellation flag: a refresh whose context is cancelled by the time
// it completes must not write its result.
type refreshHandle struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewTracker creates a tracker over the given status checker
func NewTracker(checker Checker) *Tracker {
	return &Tracker{
		checker:   checker,
		statuses:  make(map[string]shares.ConnectionStatus),
		refreshes: make(map[string]*refreshHandle),
		subs:      make(map[chan Event]struct{}),
	}
}

// Status returns the current status for a share, or Unknown if the share
// is not tracked
func (t *Tracker) Status(shareID string) shares.ConnectionStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.statuses[shareID]; ok {
		return st
	}
	return shares.Unknown()
}

// Statuses returns a copy of the full share → status map
func (t *Tracker) Statuses() map[string]shares.ConnectionStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]shares.ConnectionStatus, len(t.statuses))
	for id, st := range t.statuses {
		out[id] = st
	}
	return out
}

// StartTracking creates an entry for the share, initialized to Unknown.
// Tracking a share that already has a status is a no-op; an existing
// value is never overwritten.
func (t *Tracker) StartTracking(shareID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.statuses[shareID]; ok {
		return
	}
	t.setLocked(shareID, shares.Unknown())
}

// StopTracking cancels any in-flight refresh for the share and removes
// its entry entirely. A later Status call returns Unknown again.
func (t *Tracker) StopTracking(shareID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h := t.refreshes[shareID]; h != nil {
		h.cancel()
		delete(t.refreshes, shareID)
	}
	delete(t.statuses, shareID)
}

// RefreshStatus re-evaluates one share's status. Any refresh already in
// flight for the share is superseded: it is cancelled and its eventual
// result discarded, so the status always reflects the most recently
// issued refresh. The share's status reads as Checking until the check
// completes. The call returns once the result has been written (or
// discarded because this refresh was itself superseded).
func (t *Tracker) RefreshStatus(ctx context.Context, share shares.Share, creds shares.Credentials) {
	h := t.beginRefresh(ctx, share.ID)
	t.finishRefresh(h, share.ID, t.checker.CheckStatus(h.ctx, share, creds))
}

// RefreshAll re-evaluates every listed share concurrently. All targets
// are moved to Checking in a single critical section first, so observers
// see a consistent all-checking snapshot before any result lands. Each
// target follows the same supersede rule as RefreshStatus, independently
// of the others. The call returns once every target's refresh completed.
func (t *Tracker) RefreshAll(ctx context.Context, targets []Target) {
	handles := make([]*refreshHandle, len(targets))

	t.mu.Lock()
	for i, tg := range targets {
		handles[i] = t.beginRefreshLocked(ctx, tg.Share.ID)
	}
	t.mu.Unlock()

	var wg sync.WaitGroup
	for i, tg := range targets {
		wg.Add(1)
		go func(h *refreshHandle, tg Target) {
			defer wg.Done()
			t.finishRefresh(h, tg.Share.ID, t.checker.CheckStatus(h.ctx, tg.Share, tg.Credentials))
		}(handles[i], tg)
	}
	wg.Wait()
}

// SetStatus writes a status directly, bypassing the refresh machinery.
// Any in-flight refresh for the share is cancelled so a stale result
// cannot overwrite the value.
func (t *Tracker) SetStatus(st shares.ConnectionStatus, shareID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h := t.refreshes[shareID]; h != nil {
		h.cancel()
		delete(t.refreshes, shareID)
	}
	t.setLocked(shareID, st)
}

// CancelAllRefreshes cancels every in-flight refresh without altering any
// stored status value. Intended for teardown.
func (t *Tracker) CancelAllRefreshes() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, h := range t.refreshes {
		h.cancel()
	}
	t.refreshes = make(map[string]*refreshHandle)
}

// Subscribe returns a channel of status transition events and a cancel
// function. Events are delivered best-effort: a subscriber that falls
// behind misses events rather than blocking the tracker.
func (t *Tracker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	t.mu.Lock()
	t.subs[ch] = struct{}{}
	t.mu.Unlock()

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if _, ok := t.subs[ch]; ok {
			delete(t.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// beginRefresh registers a new refresh for the share, superseding any
// previous one, and moves the share to Checking
func (t *Tracker) beginRefresh(ctx context.Context, shareID string) *refreshHandle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.beginRefreshLocked(ctx, shareID)
}

func (t *Tracker) beginRefreshLocked(ctx context.Context, shareID string) *refreshHandle {
	if prev := t.refreshes[shareID]; prev != nil {
		prev.cancel()
	}
	hctx, cancel := context.WithCancel(ctx)
	h := &refreshHandle{ctx: hctx, cancel: cancel}
	t.refreshes[shareID] = h
	t.setLocked(shareID, shares.Checking())
	return h
}

// finishRefresh writes the refresh result unless the refresh was
// cancelled in the meantime. The cancellation check and the write happen
// under the same lock that superseding takes, so the last issued refresh
// always wins regardless of completion order.
func (t *Tracker) finishRefresh(h *refreshHandle, shareID string, result shares.ConnectionStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer h.cancel()

	if h.ctx.Err() != nil {
		return
	}
	t.setLocked(shareID, result)
	if t.refreshes[shareID] == h {
		delete(t.refreshes, shareID)
	}
}

// setLocked writes a status and notifies subscribers. Callers hold t.mu.
func (t *Tracker) setLocked(shareID string, st shares.ConnectionStatus) {
	prev, tracked := t.statuses[shareID]
	t.statuses[shareID] = st
	if tracked && prev != st {
		logging.LogStatusChange(shareID, prev.String(), st.String())
	}

	ev := Event{ShareID: shareID, Status: st}
	for ch := range t.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
