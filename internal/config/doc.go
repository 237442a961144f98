// Package config manages the user configuration file for sharewatch.
//
// The configuration stores saved shares (host, share name, nickname,
// auth username) and application preferences (scan timeout, connect
// timeout, auto refresh). Passwords are never written to disk; commands
// that need one prompt for it.
//
// # File Location
//
// The config file lives in the platform conventional location:
//   - Linux: $XDG_CONFIG_HOME/sharewatch/config.yaml or ~/.config/sharewatch/config.yaml
//   - macOS: ~/.config/sharewatch/config.yaml
//   - Windows: %LOCALAPPDATA%\sharewatch\config.yaml
//
// # Usage
//
//	registry, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	registry.SaveShare(validated, "alice", "WORKGROUP")
//	if err := registry.Save(); err != nil {
//	    return err
//	}
//
// Saves are atomic (write to a temp file, then rename) so a crash cannot
// leave a half-written config behind.
package config
