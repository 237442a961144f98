// Package urls parses and renders share location URLs.
//
// Manual share entry accepts locations in the form:
//
//	smb://host/share
//	host/share
//	\\host\share
//
// Parse normalizes all three into a host and a share name, rejecting any
// explicit scheme other than "smb" with a typed unsupported-protocol error
// before any network activity happens.
//
// Usage:
//
//	import "github.com/muurk/sharewatch/internal/urls"
//
//	loc, err := urls.Parse("smb://nas1.local/Media")
//	// loc.Host == "nas1.local", loc.ShareName == "Media"
package urls
