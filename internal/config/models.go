package config

import (
	"time"

	"github.com/muurk/sharewatch/internal/shares"
)

// Registry represents the entire user configuration file.
// It stores saved shares and application preferences. Passwords are
// NEVER stored - they are always prompted when needed.
type Registry struct {
	Version     int                    `yaml:"version"`
	Shares      map[string]*SavedShare `yaml:"shares,omitempty"` // Keyed by share ID
	Preferences *Preferences           `yaml:"preferences,omitempty"`
}

// SavedShare is the persisted record of a share the user chose to keep.
// It carries enough to re-validate and re-track the share across runs.
type SavedShare struct {
	HostName    string    `yaml:"host_name"`
	HostAddress string    `yaml:"host_address"`
	ShareName   string    `yaml:"share_name"`
	Nickname    string    `yaml:"nickname,omitempty"` // User-friendly name
	Username    string    `yaml:"username,omitempty"` // Auth username; password is never stored
	Domain      string    `yaml:"domain,omitempty"`
	LastSeen    time.Time `yaml:"last_seen,omitempty"` // Last successful connection time
	AddedAt     time.Time `yaml:"added_at,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	ScanTimeout    int  `yaml:"scan_timeout"`    // Discovery scan timeout in seconds
	ConnectTimeout int  `yaml:"connect_timeout"` // Per-connection-attempt timeout in seconds
	AutoRefresh    bool `yaml:"auto_refresh"`    // Refresh saved share statuses on startup
}

func defaultPreferences() *Preferences {
	return &Preferences{
		ScanTimeout:    10,
		ConnectTimeout: 15,
		AutoRefresh:    true,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Shares:      make(map[string]*SavedShare),
		Preferences: defaultPreferences(),
	}
}

// GetShare retrieves a saved share by id.
// Returns nil if the share doesn't exist in the registry.
func (r *Registry) GetShare(id string) *SavedShare {
	return r.Shares[id]
}

// SaveShare records a validated share, preserving any existing nickname.
func (r *Registry) SaveShare(share shares.Share, username, domain string) {
	if r.Shares == nil {
		r.Shares = make(map[string]*SavedShare)
	}

	entry, exists := r.Shares[share.ID]
	if !exists {
		entry = &SavedShare{AddedAt: time.Now()}
		r.Shares[share.ID] = entry
	}
	entry.HostName = share.HostName
	entry.HostAddress = share.HostAddress
	entry.ShareName = share.ShareName
	entry.Username = username
	entry.Domain = domain
}

// RemoveShare deletes a saved share by id. Unknown ids are a no-op.
func (r *Registry) RemoveShare(id string) {
	delete(r.Shares, id)
}

// SetNickname sets a user-friendly nickname for a saved share.
// Unknown ids are a no-op.
func (r *Registry) SetNickname(id, nickname string) {
	if entry := r.Shares[id]; entry != nil {
		entry.Nickname = nickname
	}
}

// UpdateLastSeen records a successful connection to a saved share.
func (r *Registry) UpdateLastSeen(id string) {
	if entry := r.Shares[id]; entry != nil {
		entry.LastSeen = time.Now()
	}
}

// SavedShares returns the saved shares as model values, sorted by
// display name for stable output.
func (r *Registry) SavedShares() []shares.Share {
	out := make([]shares.Share, 0, len(r.Shares))
	for id, entry := range r.Shares {
		out = append(out, shares.Share{
			ID:            id,
			HostName:      entry.HostName,
			HostAddress:   entry.HostAddress,
			ShareName:     entry.ShareName,
			DiscoveredAt:  entry.AddedAt,
			ManuallyAdded: true,
		})
	}
	shares.SortByDisplayName(out)
	return out
}

// SortedIDs returns saved share ids ordered by display name, matching
// SavedShares.
func (r *Registry) SortedIDs() []string {
	list := r.SavedShares()
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}
	return ids
}

// Credentials returns the stored (password-less) credentials for a saved
// share. The password must be prompted from the user.
func (e *SavedShare) Credentials() shares.Credentials {
	return shares.Credentials{Username: e.Username, Domain: e.Domain}
}

// DisplayName returns the nickname when set, otherwise "host/share".
func (e *SavedShare) DisplayName() string {
	if e.Nickname != "" {
		return e.Nickname
	}
	return e.HostName + "/" + e.ShareName
}
