package shares

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Host represents a network endpoint advertising the share service
type Host struct {
	// Name is the mDNS instance or host name (e.g., "NAS1")
	Name string

	// Address is the network address (e.g., "10.0.0.5"). Host identity
	// is the address, compared exactly.
	Address string
}

// String returns a human-readable string representation of the host
func (h Host) String() string {
	return fmt.Sprintf("%s@%s", h.Name, h.Address)
}

// Share represents a named exportable directory tree on a host
type Share struct {
	// ID is an opaque stable identifier assigned at creation
	ID string `json:"id"`

	// HostName is the advertised name of the exporting host (e.g., "NAS1")
	HostName string `json:"host_name"`

	// HostAddress is the network address of the exporting host
	HostAddress string `json:"host_address"`

	// ShareName is the exported share name (e.g., "Movies")
	ShareName string `json:"share_name"`

	// Comment is the optional share description reported by the server
	Comment string `json:"comment,omitempty"`

	// DiscoveredAt is when the share was discovered or validated
	DiscoveredAt time.Time `json:"discovered_at"`

	// ManuallyAdded is true for shares added and validated by hand
	// rather than found by a network scan
	ManuallyAdded bool `json:"manually_added"`
}

// NewShare creates a share with a fresh identifier and discovery timestamp
func NewShare(hostName, hostAddress, shareName string) Share {
	return Share{
		ID:           uuid.NewString(),
		HostName:     hostName,
		HostAddress:  hostAddress,
		ShareName:    shareName,
		DiscoveredAt: time.Now(),
	}
}

// Key identifies a share for deduplication purposes.
// Two shares are the same share when they have the same host address and
// share name; the ID is irrelevant to equality. Comparison is
// case-sensitive, matching the exact strings observed on the network.
type Key struct {
	HostAddress string
	ShareName   string
}

// Key returns the deduplication key for the share
func (s Share) Key() Key {
	return Key{HostAddress: s.HostAddress, ShareName: s.ShareName}
}

// DisplayName returns the name shown to users, "host/share"
func (s Share) DisplayName() string {
	return s.HostName + "/" + s.ShareName
}

// String returns a human-readable string representation of the share
func (s Share) String() string {
	return fmt.Sprintf("%s (%s\\%s)", s.DisplayName(), s.HostAddress, s.ShareName)
}

// SortByDisplayName sorts shares by display name, case-insensitively.
// The sort is stable so shares with equal display names keep their
// relative order.
func SortByDisplayName(list []Share) {
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].DisplayName()) < strings.ToLower(list[j].DisplayName())
	})
}

// Credentials carries optional authentication for connecting to a share.
// The zero value means guest/anonymous access.
type Credentials struct {
	Username string
	Password string
	Domain   string
}

// IsZero reports whether no credentials were supplied
func (c Credentials) IsZero() bool {
	return c.Username == "" && c.Password == "" && c.Domain == ""
}
