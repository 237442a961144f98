package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/sharewatch/internal/shares"
	"github.com/muurk/sharewatch/internal/status"
)

// ShareBrowser drives discovery for the watch screen.
type ShareBrowser interface {
	StartDiscovery()
	StopDiscovery()
	Rescan()
	IsScanning() bool
	AllShares() []shares.Share
	AddManualShare(ctx context.Context, input string, creds shares.Credentials) (shares.Share, error)
	RemoveManualShare(id string)
}

// StatusProvider drives connection status checks for the watch screen.
type StatusProvider interface {
	Statuses() map[string]shares.ConnectionStatus
	StartTracking(shareID string)
	StopTracking(shareID string)
	RefreshStatus(ctx context.Context, share shares.Share, creds shares.Credentials)
	RefreshAll(ctx context.Context, targets []status.Target)
	Subscribe() (<-chan status.Event, func())
}

// CredentialFunc returns the credentials to check a given share with.
// Returning zero credentials means guest access.
type CredentialFunc func(share shares.Share) shares.Credentials

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	shares []shares.Share
}
type statusEventMsg status.Event
type eventsClosedMsg struct{}
type refreshDoneMsg struct{}
type addShareResultMsg struct {
	share shares.Share
	err   error
}

// watchKeyMap defines key bindings for the share list
type watchKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Rescan  key.Binding
	Add     key.Binding
	Remove  key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Refresh, k.Rescan, k.Add, k.Remove, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Refresh},
		{k.Rescan, k.Add, k.Remove, k.Quit},
	}
}

// addModeKeyMap defines key bindings while entering a share URL
type addModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k addModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k addModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

// shareItem wraps a Share for use with bubbles/list
type shareItem struct {
	share  shares.Share
	status shares.ConnectionStatus
}

// FilterValue lets the list filter by host, address, or share name
func (s shareItem) FilterValue() string {
	return s.share.HostName + " " + s.share.HostAddress + " " + s.share.ShareName
}

// Title returns the display name for list rendering
func (s shareItem) Title() string {
	return s.share.DisplayName()
}

// Description returns the address line for list rendering
func (s shareItem) Description() string {
	origin := "discovered"
	if s.share.ManuallyAdded {
		origin = "manual"
	}
	return fmt.Sprintf("%s • %s", s.share.HostAddress, origin)
}

// shareDelegate renders one share as a two-line row with a status badge
type shareDelegate struct{}

func (d shareDelegate) Height() int { return 2 }

func (d shareDelegate) Spacing() int { return 1 }

func (d shareDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d shareDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(shareItem)
	if !ok {
		return
	}

	selected := index == m.Index()

	name := it.Title()
	if selected {
		name = SelectedItemStyle.Render("→ " + name)
	} else {
		name = "  " + name
	}

	line1 := lipgloss.JoinHorizontal(lipgloss.Top, name, "  ", StatusBadge(it.status))
	line2 := SubtitleStyle.Render("    " + it.Description())

	fmt.Fprint(w, line1+"\n"+line2)
}

// WatchModel is the interactive share browser: it scans the network,
// lists every known share with its connection status, and lets the
// user refresh, rescan, and manage manual entries.
type WatchModel struct {
	browser ShareBrowser
	tracker StatusProvider
	creds   CredentialFunc

	ShareList list.Model
	Scanning  bool
	Err       error

	// Manual share entry state
	AddMode  bool
	URLInput textinput.Model

	// UI state
	Width         int
	Height        int
	Spinner       spinner.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          watchKeyMap
	AddKeys       addModeKeyMap

	events      <-chan status.Event
	unsubscribe func()
}

// NewWatchModel creates the watch screen over a share browser and a
// status tracker. creds may be nil, in which case all checks run as
// guest.
func NewWatchModel(browser ShareBrowser, tracker StatusProvider, creds CredentialFunc) WatchModel {
	if creds == nil {
		creds = func(shares.Share) shares.Credentials { return shares.Credentials{} }
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	urlInput := textinput.New()
	urlInput.Placeholder = "smb://host/share"
	urlInput.CharLimit = 128
	urlInput.Width = 40

	shareList := list.New([]list.Item{}, shareDelegate{}, 0, 0)
	shareList.Title = "Network Shares"
	shareList.SetShowStatusBar(false)
	shareList.SetFilteringEnabled(true)
	shareList.Styles.Title = TitleStyle

	keys := watchKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "refresh"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add share"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove manual"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	addKeys := addModeKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}

	events, unsubscribe := tracker.Subscribe()

	return WatchModel{
		browser:     browser,
		tracker:     tracker,
		creds:       creds,
		ShareList:   shareList,
		URLInput:    urlInput,
		Spinner:     s,
		Help:        help.New(),
		Keys:        keys,
		AddKeys:     addKeys,
		events:      events,
		unsubscribe: unsubscribe,
	}
}

// Init starts the first scan and the status event pump
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		m.scanCmd(false),
		m.waitForEvent(),
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.AddMode {
			return m.updateAddMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.ShareList.SetWidth(msg.Width - 4)
		m.ShareList.SetHeight(msg.Height - 8)

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		m.setShares(msg.shares)
		return m, m.refreshAllCmd(msg.shares)

	case statusEventMsg:
		m.applyStatus(status.Event(msg))
		return m, m.waitForEvent()

	case eventsClosedMsg:
		return m, nil

	case refreshDoneMsg:
		return m, nil

	case addShareResultMsg:
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		m.Err = nil
		m.setShares(m.browser.AllShares())
		m.tracker.StartTracking(msg.share.ID)
		return m, m.refreshOneCmd(msg.share)

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if !m.AddMode && !m.Scanning {
		m.ShareList, cmd = m.ShareList.Update(msg)
	}

	return m, cmd
}

// updateNormalMode handles keyboard input in the share list
func (m WatchModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.unsubscribe()
		m.browser.StopDiscovery()
		return m, tea.Quit

	case "enter", " ":
		if it, ok := m.ShareList.SelectedItem().(shareItem); ok {
			return m, m.refreshOneCmd(it.share)
		}

	case "r":
		if m.Scanning {
			return m, nil
		}
		m.ShareList.SetItems([]list.Item{})
		m.Err = nil
		return m, tea.Batch(
			func() tea.Msg { return scanStartMsg{} },
			m.scanCmd(true),
			m.Spinner.Tick,
		)

	case "a":
		m.AddMode = true
		m.URLInput.SetValue("")
		m.URLInput.Focus()
		return m, nil

	case "d":
		if it, ok := m.ShareList.SelectedItem().(shareItem); ok && it.share.ManuallyAdded {
			m.browser.RemoveManualShare(it.share.ID)
			m.tracker.StopTracking(it.share.ID)
			m.setShares(m.browser.AllShares())
		}
		return m, nil
	}

	// Everything else (navigation, filtering) goes to the list
	var cmd tea.Cmd
	m.ShareList, cmd = m.ShareList.Update(msg)
	return m, cmd
}

// updateAddMode handles keyboard input while entering a share URL
func (m WatchModel) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c", "esc":
		m.AddMode = false
		m.URLInput.SetValue("")
		m.URLInput.Blur()
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.URLInput.Value())
		if value != "" {
			m.AddMode = false
			m.URLInput.SetValue("")
			m.URLInput.Blur()
			return m, m.addShareCmd(value)
		}
	}

	m.URLInput, cmd = m.URLInput.Update(msg)
	return m, cmd
}

// setShares rebuilds the list items, pairing each share with its
// current status and keeping the selection where possible.
func (m *WatchModel) setShares(all []shares.Share) {
	statuses := m.tracker.Statuses()
	items := make([]list.Item, len(all))
	for i, share := range all {
		st, ok := statuses[share.ID]
		if !ok {
			st = shares.Unknown()
		}
		items[i] = shareItem{share: share, status: st}
		m.tracker.StartTracking(share.ID)
	}
	m.ShareList.SetItems(items)
}

// applyStatus updates the list item for one status event in place
func (m *WatchModel) applyStatus(ev status.Event) {
	for i, item := range m.ShareList.Items() {
		if it, ok := item.(shareItem); ok && it.share.ID == ev.ShareID {
			it.status = ev.Status
			m.ShareList.SetItem(i, it)
			return
		}
	}
}

// scanCmd runs one discovery session to completion
func (m WatchModel) scanCmd(rescan bool) tea.Cmd {
	browser := m.browser
	return func() tea.Msg {
		if rescan {
			browser.Rescan()
		} else {
			browser.StartDiscovery()
		}
		for browser.IsScanning() {
			time.Sleep(200 * time.Millisecond)
		}
		return scanCompleteMsg{shares: browser.AllShares()}
	}
}

// waitForEvent pumps the next tracker event into the program
func (m WatchModel) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return statusEventMsg(ev)
	}
}

// refreshAllCmd refreshes every share's status and waits for the batch
func (m WatchModel) refreshAllCmd(all []shares.Share) tea.Cmd {
	tracker := m.tracker
	creds := m.creds
	return func() tea.Msg {
		targets := make([]status.Target, len(all))
		for i, share := range all {
			targets[i] = status.Target{Share: share, Credentials: creds(share)}
		}
		tracker.RefreshAll(context.Background(), targets)
		return refreshDoneMsg{}
	}
}

// refreshOneCmd refreshes a single share's status
func (m WatchModel) refreshOneCmd(share shares.Share) tea.Cmd {
	tracker := m.tracker
	creds := m.creds
	return func() tea.Msg {
		tracker.RefreshStatus(context.Background(), share, creds(share))
		return refreshDoneMsg{}
	}
}

// addShareCmd validates and adds a manual share
func (m WatchModel) addShareCmd(input string) tea.Cmd {
	browser := m.browser
	creds := m.creds
	return func() tea.Msg {
		share, err := browser.AddManualShare(context.Background(), input, creds(shares.Share{}))
		return addShareResultMsg{share: share, err: err}
	}
}

// View renders the watch screen
func (m WatchModel) View() string {
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	var content string
	switch {
	case m.AddMode:
		content = m.renderAddEntry()
	case m.Scanning:
		content = m.renderScanning(width)
	default:
		content = m.renderShareList()
	}

	var helpText string
	if m.AddMode {
		helpText = m.Help.View(m.AddKeys)
	} else {
		helpText = m.Help.View(m.Keys)
	}

	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderScanning renders a centered scan-in-progress panel
func (m WatchModel) renderScanning(width int) string {
	elapsed := int(time.Since(m.ScanStartTime).Seconds())

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(fmt.Sprintf("%s SCANNING NETWORK", m.Spinner.View())),
		"",
		SubtitleStyle.Render("Looking for SMB file shares..."),
		"",
		SubtitleStyle.Render(fmt.Sprintf("Elapsed: %ds", elapsed)),
		"",
	)

	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

// renderShareList renders the share list, an error, or the empty state
func (m WatchModel) renderShareList() string {
	var b strings.Builder

	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(RenderError(m.Err.Error()))
		b.WriteString("\n\n")
	}

	if len(m.ShareList.Items()) == 0 {
		warningStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		b.WriteString("  ")
		b.WriteString(warningStyle.Render("⚠ No shares found on your network"))
		b.WriteString("\n\n")
		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Check that your NAS or file server is powered on\n")
		b.WriteString("    • Some servers do not announce themselves over mDNS;\n")
		b.WriteString("      use 'a' to add one by address\n")
		b.WriteString("    • Try rescanning with 'r'\n")
	} else {
		b.WriteString(m.ShareList.View())
	}

	return b.String()
}

// renderAddEntry renders the manual share entry dialog
func (m WatchModel) renderAddEntry() string {
	var b strings.Builder

	b.WriteString(SubtitleStyle.Render("Enter a share URL (smb://host/share or \\\\host\\share)"))
	b.WriteString("\n\n")
	b.WriteString("  Share: ")
	b.WriteString(m.URLInput.View())
	b.WriteString("\n\n")

	return b.String()
}
