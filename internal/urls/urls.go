package urls

import (
	"fmt"
	"strings"

	"github.com/muurk/sharewatch/internal/shares"
)

// Scheme is the only share URL scheme this tool supports
const Scheme = "smb"

// Location is a parsed share location: a host plus the name of one of its
// exported shares
type Location struct {
	Host      string
	ShareName string
}

// String renders the location as a canonical smb:// URL
func (l Location) String() string {
	return fmt.Sprintf("%s://%s/%s", Scheme, l.Host, l.ShareName)
}

// Parse parses a share location entered by a user.
//
// Accepted forms are "smb://host/share", UNC "\\host\share" and the bare
// "host/share". An explicit scheme other than smb yields an
// unsupported-protocol error; empty host or share components yield
// invalid-hostname / invalid-share-path errors. Trailing slashes are
// tolerated, but a share name must be a single path component.
func Parse(input string) (Location, error) {
	raw := strings.TrimSpace(input)

	// UNC form: \\host\share
	if strings.HasPrefix(raw, `\\`) {
		raw = strings.ReplaceAll(strings.TrimPrefix(raw, `\\`), `\`, "/")
	}

	// Explicit scheme
	if idx := strings.Index(raw, "://"); idx >= 0 {
		scheme := strings.ToLower(raw[:idx])
		if scheme != Scheme {
			return Location{}, shares.NewUnsupportedProtocolError(scheme)
		}
		raw = raw[idx+3:]
	}

	raw = strings.Trim(raw, "/")
	if raw == "" {
		return Location{}, shares.NewInvalidHostnameError(input)
	}

	parts := strings.Split(raw, "/")
	host := strings.TrimSpace(parts[0])
	if host == "" {
		return Location{}, shares.NewInvalidHostnameError(input)
	}
	if len(parts) < 2 {
		return Location{}, shares.NewInvalidSharePathError(input)
	}

	name := strings.TrimSpace(parts[1])
	if name == "" || len(parts) > 2 {
		return Location{}, shares.NewInvalidSharePathError(input)
	}

	return Location{Host: host, ShareName: name}, nil
}
