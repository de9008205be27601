// Package mock provides an in-memory wifi.Backend for tests and demos.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/shazow/wifictl/wifi"
)

// Profile is a saved network with its secret.
type Profile struct {
	wifi.NetworkProfile
	Secret string
}

// Backend is an in-memory implementation of wifi.Backend. Every operation
// can be failed on demand through the *Error fields, and every call is
// counted so tests can assert on command volume.
type Backend struct {
	Profiles        []Profile
	Visible         []wifi.Network
	ConnectedTo     string
	WirelessEnabled bool

	// LandOn, when set, overrides which network a successful Connect
	// actually lands on. Used to exercise verification failures.
	LandOn string

	ConnectError    error
	DisconnectError error
	RadioError      error
	RemoveError     error
	SecretError     error

	// Calls counts backend invocations by operation name.
	Calls map[string]int

	// LastConnectPassword records the password the backend was invoked with.
	LastConnectPassword string
}

var _ wifi.Backend = (*Backend)(nil)

// New creates an empty mock backend with the radio on.
func New() *Backend {
	return &Backend{
		WirelessEnabled: true,
		Calls:           make(map[string]int),
	}
}

func (b *Backend) record(op string) {
	if b.Calls == nil {
		b.Calls = make(map[string]int)
	}
	b.Calls[op]++
}

// TotalCalls returns the number of backend invocations so far.
func (b *Backend) TotalCalls() int {
	total := 0
	for _, n := range b.Calls {
		total += n
	}
	return total
}

// AddProfile saves a profile with an optional secret.
func (b *Backend) AddProfile(name string, lastModified time.Time, secret string) {
	b.Profiles = append(b.Profiles, Profile{
		NetworkProfile: wifi.NetworkProfile{
			Name:            name,
			LastModified:    lastModified,
			HasStoredSecret: secret != "",
		},
		Secret: secret,
	})
}

func (b *Backend) Connect(ctx context.Context, ssid, password string) (bool, error) {
	b.record("Connect")
	if b.ConnectError != nil {
		return false, b.ConnectError
	}

	usedSaved := false
	if password == "" {
		for _, p := range b.Profiles {
			if p.Name == ssid && p.Secret != "" {
				password = p.Secret
				usedSaved = true
				break
			}
		}
	}
	b.LastConnectPassword = password

	// A connect against an unsaved network saves it, mirroring how both OS
	// backends leave a profile behind on success.
	known := false
	for _, p := range b.Profiles {
		if p.Name == ssid {
			known = true
			break
		}
	}
	if !known {
		b.AddProfile(ssid, time.Now(), password)
	}

	if b.LandOn != "" {
		b.ConnectedTo = b.LandOn
	} else {
		b.ConnectedTo = ssid
	}
	return usedSaved, nil
}

func (b *Backend) Disconnect(ctx context.Context) error {
	b.record("Disconnect")
	if b.DisconnectError != nil {
		return b.DisconnectError
	}
	b.ConnectedTo = ""
	return nil
}

func (b *Backend) ConnectedSSID(ctx context.Context) (string, error) {
	b.record("ConnectedSSID")
	if !b.WirelessEnabled {
		return "", nil
	}
	return b.ConnectedTo, nil
}

func (b *Backend) IsWirelessEnabled(ctx context.Context) (bool, error) {
	b.record("IsWirelessEnabled")
	if b.RadioError != nil {
		return false, b.RadioError
	}
	return b.WirelessEnabled, nil
}

func (b *Backend) SetWireless(ctx context.Context, enabled bool) error {
	b.record("SetWireless")
	if b.RadioError != nil {
		return b.RadioError
	}
	b.WirelessEnabled = enabled
	if !enabled {
		b.ConnectedTo = ""
	}
	return nil
}

func (b *Backend) AvailableNetworks(ctx context.Context, rescan bool) ([]wifi.Network, error) {
	b.record("AvailableNetworks")
	if !b.WirelessEnabled {
		return nil, wifi.ErrWirelessDisabled
	}
	networks := append([]wifi.Network(nil), b.Visible...)
	for i := range networks {
		networks[i].IsActive = networks[i].SSID == b.ConnectedTo
	}
	return networks, nil
}

func (b *Backend) PreferredNetworks(ctx context.Context) ([]wifi.NetworkProfile, error) {
	b.record("PreferredNetworks")
	profiles := make([]wifi.NetworkProfile, 0, len(b.Profiles))
	for _, p := range b.Profiles {
		profiles = append(profiles, p.NetworkProfile)
	}
	return profiles, nil
}

func (b *Backend) PreferredNetworkPassword(ctx context.Context, name string) (string, bool, error) {
	b.record("PreferredNetworkPassword")
	if b.SecretError != nil {
		return "", false, b.SecretError
	}
	for _, p := range b.Profiles {
		if p.Name == name {
			return p.Secret, p.Secret != "", nil
		}
	}
	return "", false, nil
}

func (b *Backend) RemovePreferredNetwork(ctx context.Context, name string) error {
	b.record("RemovePreferredNetwork")
	if b.RemoveError != nil {
		return b.RemoveError
	}
	for i, p := range b.Profiles {
		if p.Name == name {
			b.Profiles = append(b.Profiles[:i], b.Profiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("network not found: %s: %w", name, wifi.ErrNotFound)
}
