package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muurk/sharewatch/internal/config"
	"github.com/muurk/sharewatch/internal/discovery"
	"github.com/muurk/sharewatch/internal/logging"
	"github.com/muurk/sharewatch/internal/server"
	"github.com/muurk/sharewatch/internal/shares"
	"github.com/muurk/sharewatch/internal/smb"
	"github.com/muurk/sharewatch/internal/status"
	"github.com/muurk/sharewatch/internal/tui"
)

// Command flags
var (
	scanTimeout int
	username    string
	domain      string
	nickname    string
	serveHost   string
	servePort   int
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
}

// newOrchestrator wires the mDNS browser and SMB client into a
// discovery orchestrator using the registry's timeout preferences.
func newOrchestrator(reg *config.Registry) *discovery.Orchestrator {
	client := smb.NewClient()
	client.ConnectTimeout = time.Duration(reg.Preferences.ConnectTimeout) * time.Second

	cfg := discovery.Config{
		ScanTimeout:    time.Duration(reg.Preferences.ScanTimeout) * time.Second,
		ConnectTimeout: client.ConnectTimeout,
	}
	if scanTimeout > 0 {
		cfg.ScanTimeout = time.Duration(scanTimeout) * time.Second
	}

	return discovery.NewOrchestrator(discovery.NewBrowser(), client, client, cfg)
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// savedCredentials returns the stored credentials for a share, looked
// up by host address and share name. Passwords are never stored, so
// the returned credentials carry only username and domain.
func savedCredentials(reg *config.Registry, share shares.Share) shares.Credentials {
	for _, entry := range reg.Shares {
		if entry.HostAddress == share.HostAddress && entry.ShareName == share.ShareName {
			return entry.Credentials()
		}
	}
	return shares.Credentials{}
}

// findSavedID resolves a saved share by id, nickname, or host/share name.
func findSavedID(reg *config.Registry, arg string) (string, bool) {
	if reg.GetShare(arg) != nil {
		return arg, true
	}
	for id, entry := range reg.Shares {
		if entry.Nickname == arg || entry.DisplayName() == arg {
			return id, true
		}
	}
	return "", false
}

// scanCmd discovers shares on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the network for SMB file shares",
	Long: `Scan the local network for SMB file shares using mDNS discovery.

Hosts announcing the _smb._tcp service are enumerated over SMB and
every visible share is listed. Administrative shares (names ending in
'$') are hidden.`,
	Example: `  # Scan with the default timeout
  sharewatch scan

  # Quick 3-second scan
  sharewatch scan --timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 0, "Scan timeout in seconds (0 = use configured default)")
}

func runScan(cmd *cobra.Command, args []string) error {
	_ = logging.InitializeFromEnv()

	reg, err := config.Load()
	if err != nil {
		return err
	}

	orch := newOrchestrator(reg)

	timeout := reg.Preferences.ScanTimeout
	if scanTimeout > 0 {
		timeout = scanTimeout
	}
	fmt.Printf("Scanning for SMB shares (timeout: %ds)...\n\n", timeout)

	orch.StartDiscovery()
	for orch.IsScanning() {
		time.Sleep(200 * time.Millisecond)
	}

	found := orch.Shares()
	if len(found) == 0 {
		fmt.Println("No shares found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Check that your NAS or file server is powered on")
		fmt.Println("  - Some servers do not announce themselves over mDNS;")
		fmt.Println("    use 'sharewatch add smb://host/share' to add one manually")
		fmt.Println("  - Try increasing --timeout for slower networks")
		return nil
	}

	fmt.Printf("Found %d share(s):\n\n", len(found))
	for i, share := range found {
		fmt.Printf("%d. %s\n", i+1, share.DisplayName())
		fmt.Printf("   Address: %s\n", share.HostAddress)
		if share.Comment != "" {
			fmt.Printf("   Comment: %s\n", share.Comment)
		}
		fmt.Println()
	}

	fmt.Println("Use 'sharewatch add smb://host/share' to pin a share")
	fmt.Println("Use 'sharewatch watch' for the live view")

	return nil
}

// addCmd validates a share and saves it to the registry
var addCmd = &cobra.Command{
	Use:   "add <share-url>",
	Short: "Validate a share and add it to the saved list",
	Long: `Validate a share by connecting to it, then save it.

The share can be given as an smb:// URL, a UNC path, or a bare
host/share pair. If --user is set, the password is prompted and used
for the validation connection only; passwords are never stored.`,
	Example: `  # Add a share as guest
  sharewatch add smb://nas.local/media

  # Add with credentials and a nickname
  sharewatch add //nas.local/backup --user alice --nickname "backups"

  # UNC form works too
  sharewatch add '\\nas.local\media'`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&username, "user", "", "Username for authentication (password will be prompted)")
	addCmd.Flags().StringVar(&domain, "domain", "", "Authentication domain")
	addCmd.Flags().StringVar(&nickname, "nickname", "", "Friendly name for the saved share")
}

func runAdd(cmd *cobra.Command, args []string) error {
	_ = logging.InitializeFromEnv()

	reg, err := config.Load()
	if err != nil {
		return err
	}

	creds := shares.Credentials{Username: username, Domain: domain}
	if username != "" {
		pw, err := promptPassword(fmt.Sprintf("Password for %s: ", username))
		if err != nil {
			return err
		}
		creds.Password = pw
	}

	orch := newOrchestrator(reg)

	fmt.Printf("Validating %s...\n", args[0])
	share, err := orch.AddManualShare(cmd.Context(), args[0], creds)
	if err != nil {
		return err
	}

	reg.SaveShare(share, username, domain)
	reg.UpdateLastSeen(share.ID)
	if nickname != "" {
		reg.SetNickname(share.ID, nickname)
	}
	if err := reg.Save(); err != nil {
		return err
	}

	fmt.Printf("✓ Added %s (%s)\n", share.DisplayName(), share.HostAddress)
	return nil
}

// removeCmd removes a share from the saved list
var removeCmd = &cobra.Command{
	Use:   "remove <share>",
	Short: "Remove a share from the saved list",
	Long:  `Remove a saved share by id, nickname, or host/share name.`,
	Example: `  sharewatch remove nas.local/media
  sharewatch remove "backups"`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	reg, err := config.Load()
	if err != nil {
		return err
	}

	id, ok := findSavedID(reg, args[0])
	if !ok {
		return fmt.Errorf("no saved share matches %q", args[0])
	}

	name := reg.GetShare(id).DisplayName()
	reg.RemoveShare(id)
	if err := reg.Save(); err != nil {
		return err
	}

	fmt.Printf("✓ Removed %s\n", name)
	return nil
}

// listCmd lists saved shares
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved shares",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	reg, err := config.Load()
	if err != nil {
		return err
	}

	if len(reg.Shares) == 0 {
		fmt.Println("No saved shares. Use 'sharewatch add smb://host/share' to add one.")
		return nil
	}

	for _, id := range reg.SortedIDs() {
		entry := reg.GetShare(id)
		fmt.Printf("%s\n", entry.DisplayName())
		fmt.Printf("   Share:   //%s/%s\n", entry.HostName, entry.ShareName)
		fmt.Printf("   Address: %s\n", entry.HostAddress)
		if entry.Username != "" {
			fmt.Printf("   User:    %s\n", entry.Username)
		}
		if !entry.LastSeen.IsZero() {
			fmt.Printf("   Last seen: %s\n", entry.LastSeen.Format("2006-01-02 15:04"))
		}
		fmt.Println()
	}

	return nil
}

// statusCmd checks the connection status of saved shares
var statusCmd = &cobra.Command{
	Use:   "status [share...]",
	Short: "Check connection status of saved shares",
	Long: `Check whether saved shares are currently reachable.

With no arguments, every saved share is checked. Shares saved with a
username are checked with a prompted password; everything else is
checked as guest.`,
	Example: `  # Check everything
  sharewatch status

  # Check one share
  sharewatch status nas.local/media`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	_ = logging.InitializeFromEnv()

	reg, err := config.Load()
	if err != nil {
		return err
	}

	ids := reg.SortedIDs()
	if len(args) > 0 {
		ids = ids[:0]
		for _, arg := range args {
			id, ok := findSavedID(reg, arg)
			if !ok {
				return fmt.Errorf("no saved share matches %q", arg)
			}
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		fmt.Println("No saved shares. Use 'sharewatch add smb://host/share' to add one.")
		return nil
	}

	client := smb.NewClient()
	client.ConnectTimeout = time.Duration(reg.Preferences.ConnectTimeout) * time.Second
	tracker := status.NewTracker(client)

	targets := make([]status.Target, 0, len(ids))
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	for _, id := range ids {
		entry := reg.GetShare(id)
		creds := entry.Credentials()
		if creds.Username != "" && interactive {
			pw, err := promptPassword(fmt.Sprintf("Password for %s@%s: ", creds.Username, entry.DisplayName()))
			if err != nil {
				return err
			}
			creds.Password = pw
		}

		share := shares.Share{
			ID:          id,
			HostName:    entry.HostName,
			HostAddress: entry.HostAddress,
			ShareName:   entry.ShareName,
		}
		tracker.StartTracking(id)
		targets = append(targets, status.Target{Share: share, Credentials: creds})
	}

	fmt.Printf("Checking %d share(s)...\n\n", len(targets))
	tracker.RefreshAll(cmd.Context(), targets)

	statuses := tracker.Statuses()
	changed := false
	for _, id := range ids {
		entry := reg.GetShare(id)
		st := statuses[id]
		fmt.Printf("%-30s %s\n", entry.DisplayName(), st.String())
		if st.State == shares.StatusOnline {
			reg.UpdateLastSeen(id)
			changed = true
		}
	}

	if changed {
		if err := reg.Save(); err != nil {
			return err
		}
	}

	return nil
}

// watchCmd launches the interactive watch screen
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Launch the interactive watch screen",
	Long: `Launch the live TUI: scans the network, lists every share with its
connection status, and keeps the view updated.

Saved shares are checked with their stored username (password-less);
discovered shares are checked as guest.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	_ = logging.InitializeFromEnv()

	reg, err := config.Load()
	if err != nil {
		return err
	}

	client := smb.NewClient()
	client.ConnectTimeout = time.Duration(reg.Preferences.ConnectTimeout) * time.Second

	orch := newOrchestrator(reg)
	tracker := status.NewTracker(client)

	creds := func(share shares.Share) shares.Credentials {
		return savedCredentials(reg, share)
	}

	model := tui.NewWatchModel(orch, tracker, creds)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watch error: %w", err)
	}

	return nil
}

// serveCmd runs the HTTP status server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve share statuses over HTTP",
	Long: `Run a local HTTP server exposing discovered shares and their
connection statuses as JSON, plus a WebSocket feed of status changes.

The server scans once at startup and refreshes statuses periodically
while running.`,
	Example: `  # Serve on the default port
  sharewatch serve

  # Bind to all interfaces
  sharewatch serve --host 0.0.0.0 --port 9000`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Address to bind")
	serveCmd.Flags().IntVar(&servePort, "port", 8910, "Port to listen on")
	serveCmd.Flags().IntVar(&scanTimeout, "timeout", 0, "Scan timeout in seconds (0 = use configured default)")
}

// registrySource merges live discovery results with saved shares for
// the status server, deduplicating by host address and share name.
type registrySource struct {
	orch *discovery.Orchestrator
	reg  *config.Registry
}

func (s *registrySource) AllShares() []shares.Share {
	out := s.reg.SavedShares()
	seen := make(map[shares.Key]bool, len(out))
	for _, share := range out {
		seen[shares.Key{HostAddress: share.HostAddress, ShareName: share.ShareName}] = true
	}
	for _, share := range s.orch.AllShares() {
		k := shares.Key{HostAddress: share.HostAddress, ShareName: share.ShareName}
		if !seen[k] {
			seen[k] = true
			out = append(out, share)
		}
	}
	return out
}

func runServe(cmd *cobra.Command, args []string) error {
	_ = logging.InitializeFromEnv()

	reg, err := config.Load()
	if err != nil {
		return err
	}

	client := smb.NewClient()
	client.ConnectTimeout = time.Duration(reg.Preferences.ConnectTimeout) * time.Second

	orch := newOrchestrator(reg)
	tracker := status.NewTracker(client)
	source := &registrySource{orch: orch, reg: reg}

	srv := server.New(&server.Config{Host: serveHost, Port: servePort}, source, tracker)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initial scan, then periodic status refreshes
	go func() {
		orch.StartDiscovery()
		for orch.IsScanning() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(200 * time.Millisecond):
			}
		}
		refreshAll(ctx, source, tracker, reg)

		if !reg.Preferences.AutoRefresh {
			return
		}
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refreshAll(ctx, source, tracker, reg)
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	fmt.Printf("Serving share statuses on http://%s:%d\n", serveHost, servePort)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// refreshAll checks every known share, using stored password-less
// credentials for saved entries and guest access for the rest.
func refreshAll(ctx context.Context, source *registrySource, tracker *status.Tracker, reg *config.Registry) {
	all := source.AllShares()
	targets := make([]status.Target, len(all))
	for i, share := range all {
		tracker.StartTracking(share.ID)
		targets[i] = status.Target{Share: share, Credentials: savedCredentials(reg, share)}
	}
	tracker.RefreshAll(ctx, targets)
}
