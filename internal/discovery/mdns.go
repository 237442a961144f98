package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/grandcat/zeroconf"

	"github.com/muurk/sharewatch/internal/shares"
)

const (
	// ServiceType is the mDNS service type advertised by SMB file servers
	ServiceType = "_smb._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."
)

// Browser discovers share-serving hosts via mDNS/DNS-SD.
// It implements HostDiscoverer.
type Browser struct{}

// NewBrowser creates a new mDNS host browser
func NewBrowser() *Browser {
	return &Browser{}
}

// DiscoverHosts browses for SMB services and streams every announcement
// as a Host. The returned channel is closed when ctx is cancelled.
// Duplicate announcements are passed through unchanged; deduplication is
// the consumer's concern.
func (b *Browser) DiscoverHosts(ctx context.Context) (<-chan shares.Host, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	hosts := make(chan shares.Host)

	go func() {
		defer close(hosts)
		for entry := range entries {
			host := parseServiceEntry(entry)
			if host == nil {
				continue
			}
			select {
			case hosts <- *host:
			case <-ctx.Done():
				// Keep draining entries so the resolver can shut down
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	return hosts, nil
}

// parseServiceEntry converts a zeroconf service entry to a Host.
// Returns nil if the entry carries no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *shares.Host {
	// Get IP address (prefer IPv4)
	var addr string
	for _, ip := range entry.AddrIPv4 {
		addr = ip.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if addr == "" && len(entry.AddrIPv6) > 0 {
		addr = entry.AddrIPv6[0].String()
	}

	if addr == "" {
		return nil
	}

	// Prefer the service instance name; fall back to the bare host name
	name := entry.Instance
	if name == "" {
		name = strings.TrimSuffix(entry.HostName, ".")
		name = strings.TrimSuffix(name, ".local")
	}
	if name == "" {
		name = addr
	}

	return &shares.Host{Name: name, Address: addr}
}
