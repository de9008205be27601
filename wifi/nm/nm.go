// Package nm implements the wifi.Backend interface for Linux systems running
// NetworkManager, by shelling out to nmcli.
package nm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shazow/wifictl/shell"
	"github.com/shazow/wifictl/wifi"
)

// Backend drives NetworkManager through nmcli's terse output mode.
type Backend struct {
	runner shell.Runner
	logger *slog.Logger
	device string // wifi device name, e.g. wlan0
}

// New creates a Backend, discovering the wifi device via nmcli.
func New(runner shell.Runner, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Backend{runner: runner, logger: logger}

	out, err := shell.Output(context.Background(), runner, shell.NewCommand("nmcli", "-t", "-f", "DEVICE,TYPE", "device"))
	if err != nil {
		return nil, fmt.Errorf("failed to list network devices: %w", err)
	}
	device, err := findWifiDevice(string(out))
	if err != nil {
		return nil, err
	}
	b.device = device
	return b, nil
}

// findWifiDevice picks the first wifi-type device out of
// `nmcli -t -f DEVICE,TYPE device` output.
func findWifiDevice(output string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		fields := splitTerse(strings.TrimSpace(line))
		if len(fields) == 2 && fields[1] == "wifi" && fields[0] != "" {
			return fields[0], nil
		}
	}
	return "", fmt.Errorf("no wifi device found: %w", wifi.ErrNotFound)
}

// splitTerse splits one line of `nmcli -t` output on colons, honoring nmcli's
// backslash escaping of colons inside field values.
func splitTerse(line string) []string {
	var fields []string
	var b strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	fields = append(fields, b.String())
	return fields
}

// Connect associates with the named network, reusing or repairing a saved
// profile where one exists.
func (b *Backend) Connect(ctx context.Context, ssid, password string) (bool, error) {
	// The Manager short-circuits this case before calling; re-check here so
	// that driving the backend directly is just as safe. A failed query falls
	// through to a normal connect.
	if current, err := b.ConnectedSSID(ctx); err == nil && current == ssid {
		return false, nil
	}

	if password != "" {
		return false, b.connectWithPassword(ctx, ssid, password)
	}
	return b.connectSaved(ctx, ssid)
}

// connectWithPassword handles an explicitly supplied credential. If a saved
// profile exists and already holds this password, it is reused untouched;
// rewriting a profile secret is slow and disruptive, so it only happens when
// the password actually changed.
func (b *Backend) connectWithPassword(ctx context.Context, ssid, password string) error {
	profile, ok := b.FindBestProfile(ctx, ssid)
	if !ok {
		return b.connectDirect(ctx, ssid, password)
	}

	stored, found, _ := b.profileSecret(ctx, profile.Name)
	if !found || stored != password {
		raw := b.scannedSecurityOf(ctx, ssid)
		property, ok := secretProperty(wifi.ClassifySecurity(raw))
		if !ok {
			// No credential slot to write into; bypass the profile and let
			// nmcli build a fresh one from the direct connect.
			b.logger.Debug("profile security has no credential parameter, connecting directly", "ssid", ssid, "security", raw)
			return b.connectDirect(ctx, ssid, password)
		}
		cmd := shell.NewCommand("nmcli", "connection", "modify", profile.Name, property, password)
		if _, err := shell.Output(ctx, b.runner, cmd); err != nil {
			return translateConnectError(ssid, err)
		}
	}

	cmd := shell.NewCommand("nmcli", "connection", "up", profile.Name)
	if _, err := shell.Output(ctx, b.runner, cmd); err != nil {
		return translateConnectError(ssid, err)
	}
	return nil
}

// connectSaved handles a connect with no password: activate the best saved
// profile when there is one, otherwise attempt an open-network connect.
func (b *Backend) connectSaved(ctx context.Context, ssid string) (bool, error) {
	profile, ok := b.FindBestProfile(ctx, ssid)
	if !ok {
		return false, b.connectDirect(ctx, ssid, "")
	}

	stored, found, _ := b.profileSecret(ctx, profile.Name)
	usedSaved := found && stored != ""

	cmd := shell.NewCommand("nmcli", "connection", "up", profile.Name)
	if _, err := shell.Output(ctx, b.runner, cmd); err != nil {
		return false, translateConnectError(ssid, err)
	}
	return usedSaved, nil
}

func (b *Backend) connectDirect(ctx context.Context, ssid, password string) error {
	args := []string{"dev", "wifi", "connect", ssid}
	if password != "" {
		args = append(args, "password", password)
	}
	if _, err := shell.Output(ctx, b.runner, shell.NewCommand("nmcli", args...)); err != nil {
		return translateConnectError(ssid, err)
	}
	return nil
}

// secretProperty maps a security type to the nmcli property that holds its
// credential. SecurityUnknown maps to the WPA psk: when a caller supplies a
// password for a network we could not classify, WPA-family is the best-effort
// default.
func secretProperty(security wifi.SecurityType) (string, bool) {
	switch security {
	case wifi.SecurityWEP:
		return "802-11-wireless-security.wep-key0", true
	case wifi.SecurityNone:
		return "", false
	default:
		return "802-11-wireless-security.psk", true
	}
}

// translateConnectError maps nmcli failure text into the error taxonomy.
// Raw exit codes never escape this package.
func translateConnectError(ssid string, err error) error {
	var exitErr *shell.ExitError
	if errors.As(err, &exitErr) {
		for _, pattern := range []string{
			"no network with ssid",
			"no wi-fi networks found",
			"connection activation failed",
		} {
			if exitErr.OutputContains(pattern) {
				return &wifi.NetworkNotFoundError{SSID: ssid}
			}
		}
	}
	return err
}

// scannedSecurityOf returns the raw SECURITY column for an SSID from the
// current scan results, or "" when unavailable.
func (b *Backend) scannedSecurityOf(ctx context.Context, ssid string) string {
	networks, err := b.AvailableNetworks(ctx, false)
	if err != nil {
		return ""
	}
	for _, n := range networks {
		if n.SSID == ssid {
			return n.RawSecurity
		}
	}
	return ""
}

// Disconnect drops the device's association. Already-disconnected is fine.
func (b *Backend) Disconnect(ctx context.Context) error {
	_, err := shell.Output(ctx, b.runner, shell.NewCommand("nmcli", "device", "disconnect", b.device))
	var exitErr *shell.ExitError
	if errors.As(err, &exitErr) && exitErr.OutputContains("not active") {
		return nil
	}
	return err
}

// ConnectedSSID returns the SSID the device is associated with, or "".
func (b *Backend) ConnectedSSID(ctx context.Context) (string, error) {
	out, err := shell.Output(ctx, b.runner, shell.NewCommand("nmcli", "-t", "-f", "ACTIVE,SSID", "dev", "wifi"))
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := splitTerse(strings.TrimSpace(line))
		if len(fields) == 2 && fields[0] == "yes" {
			return fields[1], nil
		}
	}
	return "", nil
}

// IsWirelessEnabled checks the radio power state.
func (b *Backend) IsWirelessEnabled(ctx context.Context) (bool, error) {
	out, err := shell.Output(ctx, b.runner, shell.NewCommand("nmcli", "radio", "wifi"))
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.TrimSpace(string(out)), "enabled"), nil
}

// SetWireless powers the radio on or off. nmcli returns before the state
// change has converged; callers wait through the Manager.
func (b *Backend) SetWireless(ctx context.Context, enabled bool) error {
	state := "off"
	if enabled {
		state = "on"
	}
	_, err := shell.Output(ctx, b.runner, shell.NewCommand("nmcli", "radio", "wifi", state))
	return err
}

// AvailableNetworks lists visible networks from nmcli's scan cache,
// requesting a fresh scan when rescan is true.
func (b *Backend) AvailableNetworks(ctx context.Context, rescan bool) ([]wifi.Network, error) {
	args := []string{"-t", "-f", "ACTIVE,SSID,SIGNAL,SECURITY", "dev", "wifi", "list"}
	if rescan {
		args = append(args, "--rescan", "yes")
	}
	out, err := shell.Output(ctx, b.runner, shell.NewCommand("nmcli", args...))
	if err != nil {
		return nil, err
	}
	return parseScanOutput(string(out)), nil
}

func parseScanOutput(output string) []wifi.Network {
	var networks []wifi.Network
	seen := make(map[string]bool)
	for _, line := range strings.Split(output, "\n") {
		fields := splitTerse(strings.TrimSpace(line))
		if len(fields) != 4 || fields[1] == "" {
			continue
		}
		ssid := fields[1]
		signal, _ := strconv.Atoi(fields[2])
		if signal < 0 {
			signal = 0
		} else if signal > 100 {
			signal = 100
		}
		// An empty SECURITY column means an open network, not an
		// unclassifiable one.
		security := wifi.SecurityNone
		if fields[3] != "" {
			security = wifi.ClassifySecurity(fields[3])
		}
		n := wifi.Network{
			SSID:        ssid,
			IsActive:    fields[0] == "yes",
			Strength:    uint8(signal),
			RawSecurity: fields[3],
			Security:    security,
		}
		// nmcli lists one row per BSSID; keep the strongest per SSID.
		if seen[ssid] {
			for i := range networks {
				if networks[i].SSID == ssid {
					if n.Strength > networks[i].Strength {
						networks[i].Strength = n.Strength
					}
					if n.IsActive {
						networks[i].IsActive = true
					}
					break
				}
			}
			continue
		}
		seen[ssid] = true
		networks = append(networks, n)
	}
	return networks
}

// RemovePreferredNetwork deletes the saved profile with the given name.
func (b *Backend) RemovePreferredNetwork(ctx context.Context, name string) error {
	_, err := shell.Output(ctx, b.runner, shell.NewCommand("nmcli", "connection", "delete", "id", name))
	var exitErr *shell.ExitError
	if errors.As(err, &exitErr) && exitErr.OutputContains("unknown connection") {
		return &wifi.NetworkNotFoundError{SSID: name}
	}
	return err
}
