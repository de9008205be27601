package wifi

import (
	"context"
	"sort"
	"time"
)

// NetworkProfile is a saved network configuration owned by the OS. The OS may
// silently create several profiles sharing a display name ("MySSID",
// "MySSID 1"); LastModified disambiguates them.
//
// HasStoredSecret is best effort: the OS listing commands do not report
// whether a secret is stored, so backends leave it false unless they happen
// to know. Use PreferredNetworkPassword for an authoritative answer.
type NetworkProfile struct {
	Name            string
	LastModified    time.Time
	HasStoredSecret bool
}

// Network is one row of a scan: a network currently visible to the radio.
type Network struct {
	SSID        string
	Security    SecurityType
	RawSecurity string // security column as printed by the OS tool
	Strength    uint8  // 0-100
	IsActive    bool
}

// SortNetworks sorts scan results in place: active network first, then by
// signal strength descending, then by SSID.
func SortNetworks(networks []Network) {
	sort.SliceStable(networks, func(i, j int) bool {
		a, b := networks[i], networks[j]
		if a.IsActive != b.IsActive {
			return a.IsActive
		}
		if a.Strength != b.Strength {
			return a.Strength > b.Strength
		}
		return a.SSID < b.SSID
	})
}

// Backend is the OS-specific connection mechanism. Implementations shape
// calls to OS tools; the Manager owns validation, idempotency, and
// verification, so backends may assume a non-empty SSID.
type Backend interface {
	// Connect associates with the named network. When password is empty and a
	// saved profile supplies the credential, usedSavedPassword is true.
	Connect(ctx context.Context, ssid, password string) (usedSavedPassword bool, err error)
	// Disconnect drops the current association. Disconnecting while not
	// connected is not an error.
	Disconnect(ctx context.Context) error
	// ConnectedSSID returns the name of the currently associated network, or
	// "" when not associated.
	ConnectedSSID(ctx context.Context) (string, error)

	// IsWirelessEnabled checks if the wireless radio is powered on.
	IsWirelessEnabled(ctx context.Context) (bool, error)
	// SetWireless powers the wireless radio on or off.
	SetWireless(ctx context.Context, enabled bool) error

	// AvailableNetworks lists visible networks, triggering a fresh scan when
	// rescan is true.
	AvailableNetworks(ctx context.Context, rescan bool) ([]Network, error)

	// PreferredNetworks lists saved profiles.
	PreferredNetworks(ctx context.Context) ([]NetworkProfile, error)
	// PreferredNetworkPassword looks up the stored secret for a saved
	// network. A missing secret is reported as found=false, not an error;
	// err is reserved for access failures (see KeychainError).
	PreferredNetworkPassword(ctx context.Context, name string) (secret string, found bool, err error)
	// RemovePreferredNetwork deletes a saved profile by name.
	RemovePreferredNetwork(ctx context.Context, name string) error
}
