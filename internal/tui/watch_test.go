package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/sharewatch/internal/shares"
	"github.com/muurk/sharewatch/internal/status"
)

type fakeBrowser struct {
	shares  []shares.Share
	removed []string
	addErr  error
}

func (f *fakeBrowser) StartDiscovery()           {}
func (f *fakeBrowser) StopDiscovery()            {}
func (f *fakeBrowser) Rescan()                   {}
func (f *fakeBrowser) IsScanning() bool          { return false }
func (f *fakeBrowser) AllShares() []shares.Share { return f.shares }

func (f *fakeBrowser) AddManualShare(ctx context.Context, input string, creds shares.Credentials) (shares.Share, error) {
	if f.addErr != nil {
		return shares.Share{}, f.addErr
	}
	share := shares.NewShare("manual", input, "share")
	share.ManuallyAdded = true
	f.shares = append(f.shares, share)
	return share, nil
}

func (f *fakeBrowser) RemoveManualShare(id string) {
	f.removed = append(f.removed, id)
	kept := f.shares[:0]
	for _, s := range f.shares {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	f.shares = kept
}

type fakeTracker struct {
	statuses map[string]shares.ConnectionStatus
	tracked  []string
	stopped  []string
	events   chan status.Event
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		statuses: make(map[string]shares.ConnectionStatus),
		events:   make(chan status.Event, 8),
	}
}

func (f *fakeTracker) Statuses() map[string]shares.ConnectionStatus { return f.statuses }
func (f *fakeTracker) StartTracking(id string)                      { f.tracked = append(f.tracked, id) }
func (f *fakeTracker) StopTracking(id string)                       { f.stopped = append(f.stopped, id) }

func (f *fakeTracker) RefreshStatus(ctx context.Context, share shares.Share, creds shares.Credentials) {
}

func (f *fakeTracker) RefreshAll(ctx context.Context, targets []status.Target) {}

func (f *fakeTracker) Subscribe() (<-chan status.Event, func()) {
	return f.events, func() {}
}

func newTestModel(browser *fakeBrowser, tracker *fakeTracker) WatchModel {
	m := NewWatchModel(browser, tracker, nil)
	m.Width = 80
	m.Height = 24
	return m
}

func TestShareItem(t *testing.T) {
	share := shares.Share{
		HostName:    "NAS1",
		HostAddress: "10.0.0.5",
		ShareName:   "Media",
	}
	item := shareItem{share: share}

	if item.Title() != "NAS1/Media" {
		t.Errorf("Title() = %q, want NAS1/Media", item.Title())
	}
	if !strings.Contains(item.FilterValue(), "10.0.0.5") {
		t.Errorf("FilterValue() = %q, should contain the address", item.FilterValue())
	}
	if !strings.Contains(item.Description(), "discovered") {
		t.Errorf("Description() = %q, want discovered origin", item.Description())
	}

	share.ManuallyAdded = true
	item = shareItem{share: share}
	if !strings.Contains(item.Description(), "manual") {
		t.Errorf("Description() = %q, want manual origin", item.Description())
	}
}

func TestStatusBadge(t *testing.T) {
	tests := []struct {
		name     string
		status   shares.ConnectionStatus
		contains string
	}{
		{"online", shares.Online(), "online"},
		{"offline with reason", shares.Offline("Host unreachable"), "Host unreachable"},
		{"checking", shares.Checking(), "checking"},
		{"unknown", shares.Unknown(), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusBadge(tt.status); !strings.Contains(got, tt.contains) {
				t.Errorf("StatusBadge() = %q, should contain %q", got, tt.contains)
			}
		})
	}
}

func TestScanCompletePopulatesList(t *testing.T) {
	browser := &fakeBrowser{
		shares: []shares.Share{
			shares.NewShare("NAS1", "10.0.0.5", "Media"),
			shares.NewShare("NAS2", "10.0.0.6", "Backup"),
		},
	}
	tracker := newFakeTracker()
	m := newTestModel(browser, tracker)

	updated, _ := m.Update(scanCompleteMsg{shares: browser.AllShares()})
	m = updated.(WatchModel)

	if m.Scanning {
		t.Error("Scanning should be false after scanCompleteMsg")
	}
	if got := len(m.ShareList.Items()); got != 2 {
		t.Fatalf("list has %d items, want 2", got)
	}
	if len(tracker.tracked) != 2 {
		t.Errorf("tracked %d shares, want 2", len(tracker.tracked))
	}
}

func TestStatusEventUpdatesItem(t *testing.T) {
	share := shares.NewShare("NAS1", "10.0.0.5", "Media")
	browser := &fakeBrowser{shares: []shares.Share{share}}
	tracker := newFakeTracker()
	m := newTestModel(browser, tracker)

	updated, _ := m.Update(scanCompleteMsg{shares: browser.AllShares()})
	m = updated.(WatchModel)

	updated, _ = m.Update(statusEventMsg{
		ShareID: share.ID,
		Status:  shares.Offline("Host unreachable"),
	})
	m = updated.(WatchModel)

	it, ok := m.ShareList.Items()[0].(shareItem)
	if !ok {
		t.Fatal("list item is not a shareItem")
	}
	if it.status.State != shares.StatusOffline {
		t.Errorf("item status = %v, want offline", it.status.State)
	}
}

func TestRemoveManualShare(t *testing.T) {
	manual := shares.NewShare("NAS1", "10.0.0.5", "Media")
	manual.ManuallyAdded = true
	browser := &fakeBrowser{shares: []shares.Share{manual}}
	tracker := newFakeTracker()
	m := newTestModel(browser, tracker)

	updated, _ := m.Update(scanCompleteMsg{shares: browser.AllShares()})
	m = updated.(WatchModel)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m = updated.(WatchModel)

	if len(browser.removed) != 1 || browser.removed[0] != manual.ID {
		t.Errorf("removed = %v, want [%s]", browser.removed, manual.ID)
	}
	if len(tracker.stopped) != 1 {
		t.Errorf("stopped tracking %d shares, want 1", len(tracker.stopped))
	}
	if got := len(m.ShareList.Items()); got != 0 {
		t.Errorf("list has %d items after removal, want 0", got)
	}
}

func TestRemoveIgnoresDiscoveredShare(t *testing.T) {
	discovered := shares.NewShare("NAS1", "10.0.0.5", "Media")
	browser := &fakeBrowser{shares: []shares.Share{discovered}}
	tracker := newFakeTracker()
	m := newTestModel(browser, tracker)

	updated, _ := m.Update(scanCompleteMsg{shares: browser.AllShares()})
	m = updated.(WatchModel)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m = updated.(WatchModel)

	if len(browser.removed) != 0 {
		t.Errorf("discovered shares must not be removable, removed = %v", browser.removed)
	}
}

func TestAddShareFailureShowsError(t *testing.T) {
	browser := &fakeBrowser{}
	tracker := newFakeTracker()
	m := newTestModel(browser, tracker)

	wantErr := errors.New("share not found")
	updated, _ := m.Update(addShareResultMsg{err: wantErr})
	m = updated.(WatchModel)

	if m.Err == nil || m.Err.Error() != "share not found" {
		t.Errorf("Err = %v, want %v", m.Err, wantErr)
	}

	view := m.renderShareList()
	if !strings.Contains(view, "share not found") {
		t.Error("error should be rendered in the share list view")
	}
}

func TestAddShareSuccessTracksShare(t *testing.T) {
	browser := &fakeBrowser{}
	tracker := newFakeTracker()
	m := newTestModel(browser, tracker)

	added, err := browser.AddManualShare(context.Background(), "smb://nas/media", shares.Credentials{})
	if err != nil {
		t.Fatal(err)
	}

	updated, cmd := m.Update(addShareResultMsg{share: added})
	m = updated.(WatchModel)

	if cmd == nil {
		t.Error("a successful add should trigger a refresh command")
	}
	if got := len(m.ShareList.Items()); got != 1 {
		t.Errorf("list has %d items, want 1", got)
	}
}
