// Package tui implements the interactive terminal UI for sharewatch.
//
// The watch screen is a Bubble Tea program that scans the local
// network for SMB shares, lists them with live connection status
// badges, and lets the user rescan, refresh individual shares, and
// manage manually added entries.
//
// # Architecture
//
// WatchModel follows the standard Model-Update-View shape. All slow
// work (scanning, status checks, share validation) runs inside
// tea.Cmd functions so the UI never blocks; results come back as
// typed messages. Status changes from the tracker are pumped into the
// program through a subscription channel, one event per command.
//
// # Key Bindings
//
//   - ↑/k, ↓/j  — move selection
//   - enter     — refresh the selected share's status
//   - r         — rescan the network
//   - a         — add a share by URL (smb://host/share or UNC path)
//   - d         — remove the selected manual share
//   - q         — quit
package tui
