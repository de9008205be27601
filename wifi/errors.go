package wifi

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotSupported     = errors.New("not supported")
	ErrNotFound         = errors.New("not found")
	ErrNotAvailable     = errors.New("not available")
	ErrOperationFailed  = errors.New("operation failed")
	ErrWirelessDisabled = errors.New("wireless is disabled")
)

// InvalidNetworkNameError reports an empty or otherwise unusable SSID. It is
// raised before any OS command runs.
type InvalidNetworkNameError struct {
	Name string
}

func (e *InvalidNetworkNameError) Error() string {
	if e.Name == "" {
		return "network name is required"
	}
	return fmt.Sprintf("invalid network name: %q", e.Name)
}

// NetworkNotFoundError reports that the OS tools could not find a network
// with the requested SSID.
type NetworkNotFoundError struct {
	SSID string
}

func (e *NetworkNotFoundError) Error() string {
	return fmt.Sprintf("network %q not found", e.SSID)
}

func (e *NetworkNotFoundError) Unwrap() error { return ErrNotFound }

// NetworkConnectionError reports a post-connect verification failure: the
// backend claimed success but the OS is associated with some other network,
// or with none at all.
type NetworkConnectionError struct {
	Requested string
	Actual    string
}

func (e *NetworkConnectionError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("tried to connect to %q but ended up connected to nothing; the network may require a password, or the supplied one may be incorrect", e.Requested)
	}
	return fmt.Sprintf("tried to connect to %q but ended up connected to %q instead; the network may require a password, or the supplied one may be incorrect", e.Requested, e.Actual)
}

// WaitTimeoutError reports that a Till wait expired before its predicate
// became true.
type WaitTimeoutError struct {
	Target  Status
	Timeout time.Duration
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for status %q", e.Timeout, e.Target)
}

// KeychainErrorKind distinguishes credential store failures.
type KeychainErrorKind int

const (
	KeychainDenied KeychainErrorKind = iota
	KeychainCancelled
	KeychainNonInteractive
)

func (k KeychainErrorKind) String() string {
	switch k {
	case KeychainDenied:
		return "access denied"
	case KeychainCancelled:
		return "cancelled by user"
	case KeychainNonInteractive:
		return "keychain unavailable in a non-interactive session"
	default:
		return "unknown"
	}
}

// KeychainError reports a credential store access failure. A missing secret
// is not a KeychainError; lookups report that as found=false instead.
type KeychainError struct {
	Name string
	Kind KeychainErrorKind
}

func (e *KeychainError) Error() string {
	return fmt.Sprintf("could not read stored password for %q: %s", e.Name, e.Kind)
}
