// Package wifi provides an OS-independent control plane for wireless
// networking, built on top of OS command-line tools. The Manager owns the
// orchestration of connect/disconnect requests: input validation,
// idempotency, radio power convergence, and post-connect verification. The
// OS-specific mechanics live behind the Backend interface.
package wifi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"
)

// DefaultRadioTimeout bounds the radio power convergence performed inside
// Connect, WifiOn and WifiOff.
const DefaultRadioTimeout = 15 * time.Second

// Manager orchestrates connection operations over a Backend. A Manager owns
// a single sequential call chain; it is not safe for concurrent use.
type Manager struct {
	backend      Backend
	logger       *slog.Logger
	probe        func(context.Context) bool
	radioTimeout time.Duration

	// lastUsedSavedPassword survives until overwritten by the next Connect.
	lastUsedSavedPassword bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithInternetProbe replaces the reachability check behind the connected and
// disconnected wait targets.
func WithInternetProbe(probe func(context.Context) bool) Option {
	return func(m *Manager) { m.probe = probe }
}

// WithRadioTimeout bounds how long Connect, WifiOn and WifiOff wait for the
// radio to reach its target power state.
func WithRadioTimeout(d time.Duration) Option {
	return func(m *Manager) { m.radioTimeout = d }
}

// New creates a Manager over the given backend. The backend is chosen once
// at startup by the caller; the Manager never probes the OS itself.
func New(backend Backend, opts ...Option) *Manager {
	m := &Manager{
		backend:      backend,
		logger:       slog.Default(),
		probe:        dialInternetProbe,
		radioTimeout: DefaultRadioTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// dialInternetProbe checks internet reachability with a TCP dial to a public
// resolver. Cheap, no payload, and independent of DNS state.
func dialInternetProbe(ctx context.Context) bool {
	d := net.Dialer{Timeout: 3 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", "1.1.1.1:53")
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Connect associates with the named network, optionally using a password.
// An empty password means "use whatever the OS has saved, or treat the
// network as open".
//
// Connecting to the already-connected network is a no-op. The radio is
// powered on first if needed. After the backend reports success the actual
// association is re-queried; a mismatch is a *NetworkConnectionError.
func (m *Manager) Connect(ctx context.Context, ssid, password string) error {
	if strings.TrimSpace(ssid) == "" {
		return &InvalidNetworkNameError{Name: ssid}
	}

	// Never trust a stale reading: query the current association fresh. A
	// failed query here is not fatal, it just means we cannot short-circuit.
	if current, err := m.backend.ConnectedSSID(ctx); err == nil && current == ssid {
		m.logger.Debug("already connected, nothing to do", "ssid", ssid)
		return nil
	}

	if err := m.ensureWirelessEnabled(ctx); err != nil {
		return err
	}

	usedSaved, err := m.backend.Connect(ctx, ssid, password)
	if err != nil {
		return err
	}
	m.lastUsedSavedPassword = usedSaved

	actual, err := m.backend.ConnectedSSID(ctx)
	if err != nil {
		return fmt.Errorf("could not verify connection to %q: %w", ssid, err)
	}
	if actual != ssid {
		return &NetworkConnectionError{Requested: ssid, Actual: actual}
	}

	m.logger.Info("connected", "ssid", ssid, "used_saved_password", usedSaved)
	return nil
}

// Disconnect drops the current association. It is idempotent: disconnecting
// while not connected never raises.
func (m *Manager) Disconnect(ctx context.Context) error {
	return m.backend.Disconnect(ctx)
}

// CycleNetwork power-cycles the radio, waiting for each state to converge.
// Reassociation afterwards is the OS's own autoconnect behavior.
func (m *Manager) CycleNetwork(ctx context.Context) error {
	if err := m.WifiOff(ctx); err != nil {
		return err
	}
	return m.WifiOn(ctx)
}

// WifiOn powers the radio on and waits for it to converge.
func (m *Manager) WifiOn(ctx context.Context) error {
	return m.setWireless(ctx, true)
}

// WifiOff powers the radio off and waits for it to converge.
func (m *Manager) WifiOff(ctx context.Context) error {
	return m.setWireless(ctx, false)
}

func (m *Manager) setWireless(ctx context.Context, enabled bool) error {
	if on, err := m.backend.IsWirelessEnabled(ctx); err == nil && on == enabled {
		return nil
	}
	if err := m.backend.SetWireless(ctx, enabled); err != nil {
		return err
	}
	target := StatusOn
	if !enabled {
		target = StatusOff
	}
	return m.Till(ctx, target, m.radioTimeout, 0)
}

func (m *Manager) ensureWirelessEnabled(ctx context.Context) error {
	on, err := m.backend.IsWirelessEnabled(ctx)
	if err != nil {
		return err
	}
	if on {
		return nil
	}
	m.logger.Debug("radio is off, powering on before connecting")
	return m.WifiOn(ctx)
}

// IsWifiOn reports the radio power state, queried fresh.
func (m *Manager) IsWifiOn(ctx context.Context) (bool, error) {
	return m.backend.IsWirelessEnabled(ctx)
}

// ConnectedNetworkName returns the SSID of the current association, or ""
// when not associated.
func (m *Manager) ConnectedNetworkName(ctx context.Context) (string, error) {
	return m.backend.ConnectedSSID(ctx)
}

// ConnectedToInternet reports whether the internet is reachable right now.
func (m *Manager) ConnectedToInternet(ctx context.Context) bool {
	return m.probe(ctx)
}

// LastConnectionUsedSavedPassword reports whether the most recent Connect
// substituted a saved password for a missing explicit one.
func (m *Manager) LastConnectionUsedSavedPassword() bool {
	return m.lastUsedSavedPassword
}

// AvailableNetworks scans and returns visible networks, strongest first.
func (m *Manager) AvailableNetworks(ctx context.Context) ([]Network, error) {
	on, err := m.backend.IsWirelessEnabled(ctx)
	if err != nil {
		return nil, err
	}
	if !on {
		return nil, ErrWirelessDisabled
	}
	networks, err := m.backend.AvailableNetworks(ctx, true)
	if err != nil {
		return nil, err
	}
	SortNetworks(networks)
	return networks, nil
}

// PreferredNetworks lists saved profiles.
func (m *Manager) PreferredNetworks(ctx context.Context) ([]NetworkProfile, error) {
	return m.backend.PreferredNetworks(ctx)
}

// PreferredNetworkPassword returns the stored secret for a saved network.
// The network must be in the preferred list; a saved network without a
// stored secret reports found=false.
func (m *Manager) PreferredNetworkPassword(ctx context.Context, name string) (string, bool, error) {
	profiles, err := m.backend.PreferredNetworks(ctx)
	if err != nil {
		return "", false, err
	}
	known := false
	for _, p := range profiles {
		if p.Name == name {
			known = true
			break
		}
	}
	if !known {
		return "", false, &NetworkNotFoundError{SSID: name}
	}
	return m.backend.PreferredNetworkPassword(ctx, name)
}

// RemovePreferredNetworks deletes the named saved profiles, returning the
// names actually removed. Names with no matching profile are skipped.
func (m *Manager) RemovePreferredNetworks(ctx context.Context, names ...string) ([]string, error) {
	profiles, err := m.backend.PreferredNetworks(ctx)
	if err != nil {
		return nil, err
	}
	saved := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		saved[p.Name] = true
	}

	var removed []string
	for _, name := range names {
		if !saved[name] {
			continue
		}
		if err := m.backend.RemovePreferredNetwork(ctx, name); err != nil {
			return removed, err
		}
		removed = append(removed, name)
	}
	return removed, nil
}
