package shares

import "fmt"

// StatusState is the liveness state of a tracked share
type StatusState int

const (
	// StatusUnknown means the share has never been evaluated
	StatusUnknown StatusState = iota
	// StatusChecking means a refresh is currently in flight
	StatusChecking
	// StatusOnline means the last check reached the share
	StatusOnline
	// StatusOffline means the last check failed; the status carries a reason
	StatusOffline
)

// String returns a human-readable name for the state
func (s StatusState) String() string {
	switch s {
	case StatusUnknown:
		return "Unknown"
	case StatusChecking:
		return "Checking"
	case StatusOnline:
		return "Online"
	case StatusOffline:
		return "Offline"
	default:
		return fmt.Sprintf("StatusState(%d)", int(s))
	}
}

// ConnectionStatus is the result of evaluating a share's reachability.
// Offline statuses always carry a human-readable reason; the reason is
// empty for every other state.
type ConnectionStatus struct {
	State  StatusState `json:"state"`
	Reason string      `json:"reason,omitempty"`
}

// Unknown returns the default status for a never-evaluated share
func Unknown() ConnectionStatus {
	return ConnectionStatus{State: StatusUnknown}
}

// Checking returns the status for a share with a refresh in flight
func Checking() ConnectionStatus {
	return ConnectionStatus{State: StatusChecking}
}

// Online returns the status for a reachable share
func Online() ConnectionStatus {
	return ConnectionStatus{State: StatusOnline}
}

// Offline returns the status for an unreachable share with the given reason
func Offline(reason string) ConnectionStatus {
	return ConnectionStatus{State: StatusOffline, Reason: reason}
}

// String returns a human-readable string representation of the status
func (c ConnectionStatus) String() string {
	if c.State == StatusOffline && c.Reason != "" {
		return fmt.Sprintf("Offline (%s)", c.Reason)
	}
	return c.State.String()
}

// MarshalText implements encoding.TextMarshaler for log and YAML output
func (s StatusState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
