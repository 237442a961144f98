package smb

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hirochachacha/go-smb2"
	"go.uber.org/zap"

	"github.com/muurk/sharewatch/internal/logging"
	"github.com/muurk/sharewatch/internal/shares"
)

const (
	// DefaultPort is the SMB direct-hosting TCP port
	DefaultPort = 445

	// DefaultConnectTimeout bounds one connection attempt, dial through
	// session setup
	DefaultConnectTimeout = 15 * time.Second

	// adminShareSuffix marks administrative/hidden shares (C$, ADMIN$,
	// IPC$, ...), which are excluded from enumeration results
	adminShareSuffix = "$"
)

// NT status codes of interest when classifying SMB response errors
const (
	statusLogonFailure    = 0xC000006D
	statusAccessDenied    = 0xC0000022
	statusBadNetworkName  = 0xC00000CC
	statusAccountDisabled = 0xC0000072
)

// Client speaks SMB2/3 to file servers on the local network. It
// implements the share enumeration, connection testing and status
// checking capabilities over a real network connection.
type Client struct {
	// Port is the TCP port to connect to (typically 445)
	Port int

	// ConnectTimeout is the maximum duration of a single connection
	// attempt, including session setup and tree connect
	ConnectTimeout time.Duration
}

// NewClient creates a client with default settings
func NewClient() *Client {
	return &Client{
		Port:           DefaultPort,
		ConnectTimeout: DefaultConnectTimeout,
	}
}

// ListShares connects to the host and returns its exported shares.
// Administrative shares (names ending in "$") are filtered out here so
// consumers never see them. Enumeration uses anonymous/guest access;
// servers that deny it report a typed error.
func (c *Client) ListShares(ctx context.Context, host shares.Host) ([]shares.Share, error) {
	ctx, cancel := context.WithTimeout(ctx, c.ConnectTimeout)
	defer cancel()

	session, conn, err := c.dial(ctx, host.Address, shares.Credentials{})
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	defer func() { _ = session.Logoff() }()

	names, err := session.WithContext(ctx).ListSharenames()
	if err != nil {
		return nil, classifySMBError(host.Address, "", err)
	}

	found := make([]shares.Share, 0, len(names))
	for _, name := range filterAdminShares(names) {
		found = append(found, shares.NewShare(host.Name, host.Address, name))
	}

	logging.Debug("Enumerated shares",
		zap.String("host", host.Address),
		zap.Int("count", len(found)),
	)
	return found, nil
}

// TestConnection validates that a share is reachable with the given
// credentials by connecting and mounting it. On success the validated
// share descriptor is returned.
func (c *Client) TestConnection(ctx context.Context, host, shareName string, creds shares.Credentials) (shares.Share, error) {
	if strings.TrimSpace(host) == "" {
		return shares.Share{}, shares.NewInvalidHostnameError(host)
	}
	if strings.TrimSpace(shareName) == "" || strings.ContainsAny(shareName, `/\`) {
		return shares.Share{}, shares.NewInvalidSharePathError(shareName)
	}

	ctx, cancel := context.WithTimeout(ctx, c.ConnectTimeout)
	defer cancel()

	session, conn, err := c.dial(ctx, host, creds)
	if err != nil {
		return shares.Share{}, err
	}
	defer conn.Close()
	defer func() { _ = session.Logoff() }()

	fs, err := session.WithContext(ctx).Mount(shareName)
	if err != nil {
		return shares.Share{}, classifySMBError(host, shareName, err)
	}
	_ = fs.Umount()

	return shares.NewShare(host, host, shareName), nil
}

// CheckStatus reports a share's current reachability. It never fails:
// any validation error is folded into an Offline status carrying a short
// human-readable reason, because an unreachable share is a normal
// outcome for status tracking, not an exceptional one.
func (c *Client) CheckStatus(ctx context.Context, share shares.Share, creds shares.Credentials) shares.ConnectionStatus {
	_, err := c.TestConnection(ctx, share.HostAddress, share.ShareName, creds)
	if err != nil {
		return shares.Offline(shares.ShortMessage(err))
	}
	return shares.Online()
}

// dial opens a TCP connection and negotiates an SMB session. The caller
// owns both and must close them.
func (c *Client) dial(ctx context.Context, address string, creds shares.Credentials) (*smb2.Session, net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(c.Port)))
	if err != nil {
		return nil, nil, shares.ClassifyConnectionError(address, err)
	}

	initiator := &smb2.NTLMInitiator{
		User:     creds.Username,
		Password: creds.Password,
		Domain:   creds.Domain,
	}
	if creds.IsZero() {
		// Anonymous/guest session for unauthenticated enumeration
		initiator = &smb2.NTLMInitiator{User: "Guest"}
	}

	dialer := &smb2.Dialer{Initiator: initiator}
	session, err := dialer.DialContext(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return nil, nil, classifySMBError(address, "", err)
	}
	return session, conn, nil
}

// filterAdminShares drops administrative/hidden shares from an
// enumeration result, preserving order
func filterAdminShares(names []string) []string {
	visible := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasSuffix(name, adminShareSuffix) {
			continue
		}
		visible = append(visible, name)
	}
	return visible
}

// classifySMBError translates an SMB-level error into the share error
// taxonomy, mapping well-known NT status codes before falling back to
// generic network classification
func classifySMBError(host, shareName string, err error) *shares.ShareError {
	if err == nil {
		return nil
	}

	var respErr *smb2.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.Code {
		case statusLogonFailure, statusAccessDenied, statusAccountDisabled:
			return shares.NewAuthError(host, err)
		case statusBadNetworkName:
			return shares.NewShareNotFoundError(host, shareName, err)
		}
	}

	return shares.ClassifyConnectionError(host, err)
}
