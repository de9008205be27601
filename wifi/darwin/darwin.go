// Package darwin implements the wifi.Backend interface for macOS. Connection
// and disconnection prefer a CoreWLAN helper run through the Swift
// interpreter; when Swift is unavailable the backend falls back to
// networksetup, which offers coarser errors.
package darwin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shazow/wifictl/shell"
	"github.com/shazow/wifictl/wifi"
)

// Backend drives the macOS networking tools: networksetup, system_profiler,
// security, and optionally the Swift CoreWLAN helper.
type Backend struct {
	runner shell.Runner
	logger *slog.Logger
	iface  string // e.g. en0

	// swift availability is probed at most once per instance; probing spawns
	// the Swift interpreter, which is expensive.
	swiftProbed bool
	swiftUsable bool
}

// New creates a Backend, discovering the Wi-Fi interface name.
func New(runner shell.Runner, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	out, err := shell.Output(context.Background(), runner, shell.NewCommand("networksetup", "-listallhardwareports"))
	if err != nil {
		return nil, fmt.Errorf("failed to list hardware ports: %w", err)
	}
	iface, err := findWifiInterface(string(out))
	if err != nil {
		return nil, err
	}
	return &Backend{runner: runner, logger: logger, iface: iface}, nil
}

var currentNetworkRe = regexp.MustCompile(`Current Wi-Fi Network: (.+)`)

// ConnectedSSID returns the currently associated network name, or "".
func (b *Backend) ConnectedSSID(ctx context.Context) (string, error) {
	out, err := b.runner.Run(ctx, shell.NewCommand("networksetup", "-getairportnetwork", b.iface))
	if err != nil {
		return "", err
	}
	// networksetup exits nonzero and prints "You are not associated with an
	// AirPort network" when disconnected. That is not an error here.
	if matches := currentNetworkRe.FindStringSubmatch(string(out.Output)); len(matches) > 1 {
		return strings.TrimSpace(matches[1]), nil
	}
	return "", nil
}

// IsWirelessEnabled checks the radio power state.
func (b *Backend) IsWirelessEnabled(ctx context.Context) (bool, error) {
	out, err := shell.Output(ctx, b.runner, shell.NewCommand("networksetup", "-getairportpower", b.iface))
	if err != nil {
		return false, err
	}
	return strings.Contains(string(out), ": On"), nil
}

// SetWireless powers the radio on or off.
func (b *Backend) SetWireless(ctx context.Context, enabled bool) error {
	state := "off"
	if enabled {
		state = "on"
	}
	_, err := shell.Output(ctx, b.runner, shell.NewCommand("networksetup", "-setairportpower", b.iface, state))
	return err
}

// Connect associates with the named network. When no password is supplied
// and the keychain holds one for a preferred network, the saved password is
// substituted and reported through usedSavedPassword. A keychain access
// failure aborts the connect: joining without the credential the user
// expected to be used would fail with a misleading wrong-password hint, or
// silently land on an open network.
func (b *Backend) Connect(ctx context.Context, ssid, password string) (bool, error) {
	usedSaved := false
	if password == "" {
		secret, found, err := b.PreferredNetworkPassword(ctx, ssid)
		if err != nil {
			return false, err
		}
		if found {
			password = secret
			usedSaved = true
		}
	}

	var err error
	if b.hasCoreWLAN(ctx) {
		err = b.coreWLANConnect(ctx, ssid, password)
	} else {
		err = b.networksetupConnect(ctx, ssid, password)
	}
	if err != nil {
		return false, err
	}
	return usedSaved, nil
}

func (b *Backend) networksetupConnect(ctx context.Context, ssid, password string) error {
	args := []string{"-setairportnetwork", b.iface, ssid}
	if password != "" {
		args = append(args, password)
	}
	res, err := b.runner.Run(ctx, shell.NewCommand("networksetup", args...))
	if err != nil {
		return err
	}
	// networksetup reports join failures on stdout, sometimes with exit 0.
	out := strings.ToLower(string(res.Output))
	if strings.Contains(out, "could not find network") || strings.Contains(out, "failed to join network") {
		return &wifi.NetworkNotFoundError{SSID: ssid}
	}
	if !res.Success() {
		return fmt.Errorf("failed to join %q: %w: %s", ssid, wifi.ErrOperationFailed, strings.TrimSpace(string(res.Output)))
	}
	return nil
}

// Disconnect drops the current association. The CoreWLAN disassociate is
// clean; the airport fallback requires privileges.
func (b *Backend) Disconnect(ctx context.Context) error {
	if b.hasCoreWLAN(ctx) {
		return b.coreWLANDisconnect(ctx)
	}
	_, err := shell.Output(ctx, b.runner, shell.NewCommand("sudo", airportPath, "-z"))
	var exitErr *shell.ExitError
	if errors.As(err, &exitErr) {
		// airport -z on an already-disconnected interface exits zero, so a
		// nonzero exit here is a real failure.
		return fmt.Errorf("failed to disconnect: %w: %s", wifi.ErrOperationFailed, strings.TrimSpace(string(exitErr.Output)))
	}
	return err
}

// AvailableNetworks scans via system_profiler. The deprecated airport
// utility had a dedicated scan mode; system_profiler is what remains, and it
// always reports a fresh scan, so the rescan parameter has no cached mode to
// distinguish from.
func (b *Backend) AvailableNetworks(ctx context.Context, _ bool) ([]wifi.Network, error) {
	out, err := shell.Output(ctx, b.runner, shell.NewCommand("system_profiler", "SPAirPortDataType"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for networks: %w", err)
	}
	return parseSystemProfilerOutput(string(out)), nil
}

// PreferredNetworks lists saved networks. macOS does not expose per-profile
// timestamps, so LastModified stays zero; the listing order is the system's
// preference order. HasStoredSecret stays false too: only a keychain query
// can answer that, and it may prompt the user.
func (b *Backend) PreferredNetworks(ctx context.Context) ([]wifi.NetworkProfile, error) {
	out, err := shell.Output(ctx, b.runner, shell.NewCommand("networksetup", "-listpreferredwirelessnetworks", b.iface))
	if err != nil {
		return nil, fmt.Errorf("failed to list preferred networks: %w", err)
	}
	var profiles []wifi.NetworkProfile
	for _, line := range strings.Split(string(out), "\n") {
		name := strings.TrimSpace(line)
		if name == "" || strings.HasPrefix(name, "Preferred networks") {
			continue
		}
		profiles = append(profiles, wifi.NetworkProfile{Name: name})
	}
	return profiles, nil
}

// RemovePreferredNetwork removes a saved network and its keychain entry.
func (b *Backend) RemovePreferredNetwork(ctx context.Context, name string) error {
	_, err := shell.Output(ctx, b.runner, shell.NewCommand("networksetup", "-removepreferredwirelessnetwork", b.iface, name))
	if err != nil {
		var exitErr *shell.ExitError
		if errors.As(err, &exitErr) && exitErr.OutputContains("not found") {
			return &wifi.NetworkNotFoundError{SSID: name}
		}
		return err
	}
	// The stored password lives separately in the keychain. Best effort; the
	// entry may never have existed.
	_, _ = b.runner.Run(ctx, shell.NewCommand("security", "delete-generic-password", "-D", keychainItemKind, "-a", name))
	return nil
}
