package darwin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shazow/wifictl/shell/shelltest"
	"github.com/shazow/wifictl/wifi"
)

const hardwarePorts = `Hardware Port: Wi-Fi
Device: en0
Ethernet Address: a1:b2:c3:d4:e5:f6

Hardware Port: Bluetooth PAN
Device: en8
Ethernet Address: a1:b2:c3:d4:e5:f7

Hardware Port: Thunderbolt Bridge
Device: bridge0
Ethernet Address: a1:b2:c3:d4:e5:f8`

func newTestBackend(t *testing.T, r *shelltest.Runner) *Backend {
	t.Helper()
	r.On("networksetup -listallhardwareports").Respond(hardwarePorts, 0)
	b, err := New(r, nil)
	require.NoError(t, err)
	require.Equal(t, "en0", b.iface)
	return b
}

// noSwift scripts the CoreWLAN probe as unavailable.
func noSwift(r *shelltest.Runner) {
	r.On("swift -e \"import CoreWLAN\"").Respond("swift: command not found", 127)
}

func TestFindWifiInterface(t *testing.T) {
	device, err := findWifiInterface(hardwarePorts)
	require.NoError(t, err)
	assert.Equal(t, "en0", device)

	_, err = findWifiInterface("Hardware Port: Ethernet\nDevice: en1\n")
	require.ErrorIs(t, err, wifi.ErrNotFound)
}

func TestParseSystemProfilerOutput(t *testing.T) {
	mockedOutput := `Wi-Fi:

      Software Versions:
          CoreWLAN: 16.0 (1657)
      Interfaces:
        en0:
          Card Type: Wi-Fi
          Status: Connected
          Current Network Information:
            MyHomeNetwork:
              PHY Mode: 802.11ac
              Channel: 36 (5GHz, 80MHz)
              Network Type: Infrastructure
              Security: WPA2 Personal
              Signal / Noise: -55 dBm / -95 dBm
              Transmit Rate: 866
          Other Local Wi-Fi Networks:
            NeighborWiFi:
              PHY Mode: 802.11n
              Channel: 6 (2GHz, 20MHz)
              Network Type: Infrastructure
              Security: WPA3 Personal
              Signal / Noise: -75 dBm / -90 dBm
            OpenCafe:
              PHY Mode: 802.11g
              Channel: 11 (2GHz, 20MHz)
              Network Type: Infrastructure
              Security: Open
        awdl0:
          MAC Address: 00:11:22:33:44:55`

	networks := parseSystemProfilerOutput(mockedOutput)
	require.Len(t, networks, 3)

	byName := make(map[string]wifi.Network)
	for _, n := range networks {
		byName[n.SSID] = n
	}

	home := byName["MyHomeNetwork"]
	assert.True(t, home.IsActive)
	assert.Equal(t, uint8(90), home.Strength)
	assert.Equal(t, wifi.SecurityWPA2, home.Security)
	assert.Equal(t, "WPA2 Personal", home.RawSecurity)

	neighbor := byName["NeighborWiFi"]
	assert.False(t, neighbor.IsActive)
	assert.Equal(t, uint8(50), neighbor.Strength)
	assert.Equal(t, wifi.SecurityWPA3, neighbor.Security)

	assert.Equal(t, wifi.SecurityNone, byName["OpenCafe"].Security)
}

func TestRssiToStrength(t *testing.T) {
	tests := []struct {
		rssi     int
		expected uint8
	}{
		{-50, 100},
		{-70, 60},
		{-90, 20},
		{-100, 0},
		{-110, 0},
		{0, 0},
		{10, 0},
	}
	for _, tt := range tests {
		if got := rssiToStrength(tt.rssi); got != tt.expected {
			t.Errorf("rssiToStrength(%d) = %d, want %d", tt.rssi, got, tt.expected)
		}
	}
}

func TestConnectedSSID(t *testing.T) {
	r := shelltest.NewRunner()
	b := newTestBackend(t, r)

	r.On("networksetup -getairportnetwork en0").Respond("Current Wi-Fi Network: HomeNet\n", 0)
	ssid, err := b.ConnectedSSID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "HomeNet", ssid)

	r.On("networksetup -getairportnetwork en0").
		Respond("You are not associated with an AirPort network.\n", 4)
	ssid, err = b.ConnectedSSID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", ssid)
}

func TestConnectFallsBackToNetworksetup(t *testing.T) {
	r := shelltest.NewRunner()
	b := newTestBackend(t, r)
	noSwift(r)

	r.On("security find-generic-password -D \"AirPort network password\" -wa CafeNet").
		Respond("", keychainExitNotFound)
	r.On("networksetup -setairportnetwork en0 CafeNet secret").Respond("", 0)

	usedSaved, err := b.Connect(context.Background(), "CafeNet", "secret")
	require.NoError(t, err)
	assert.False(t, usedSaved)
}

func TestConnectSubstitutesSavedPassword(t *testing.T) {
	r := shelltest.NewRunner()
	b := newTestBackend(t, r)
	noSwift(r)

	r.On("security find-generic-password -D \"AirPort network password\" -wa HomeNet").
		Respond("hunter2\n", 0)
	r.On("networksetup -setairportnetwork en0 HomeNet hunter2").Respond("", 0)

	usedSaved, err := b.Connect(context.Background(), "HomeNet", "")
	require.NoError(t, err)
	assert.True(t, usedSaved)
	assert.Contains(t, r.Calls(), "networksetup -setairportnetwork en0 HomeNet hunter2")
}

func TestConnectStopsOnKeychainAccessFailure(t *testing.T) {
	r := shelltest.NewRunner()
	b := newTestBackend(t, r)

	r.On("security find-generic-password -D \"AirPort network password\" -wa HomeNet").
		Respond("security: SecKeychainItemCopyContent: The user name or passphrase you entered is not correct.\n", keychainExitDenied)

	usedSaved, err := b.Connect(context.Background(), "HomeNet", "")
	assert.False(t, usedSaved)
	var keychainErr *wifi.KeychainError
	require.ErrorAs(t, err, &keychainErr)
	assert.Equal(t, wifi.KeychainDenied, keychainErr.Kind)

	for _, call := range r.Calls() {
		assert.NotContains(t, call, "-setairportnetwork", "a failed credential read must not fall through to a passwordless join")
		assert.NotContains(t, call, "swift", "no connect attempt may run after a failed credential read")
	}
}

func TestConnectTranslatesNotFound(t *testing.T) {
	r := shelltest.NewRunner()
	b := newTestBackend(t, r)
	noSwift(r)

	r.On("networksetup -setairportnetwork en0 GhostNet pw").
		Respond("Could not find network GhostNet.\n", 0)

	_, err := b.Connect(context.Background(), "GhostNet", "pw")
	var notFound *wifi.NetworkNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "GhostNet", notFound.SSID)
}

func TestSwiftProbeIsCachedPerInstance(t *testing.T) {
	r := shelltest.NewRunner()
	b := newTestBackend(t, r)
	noSwift(r)

	r.On("security find-generic-password -D \"AirPort network password\" -wa Net").
		Respond("", keychainExitNotFound)
	r.On("networksetup -setairportnetwork en0 Net pw").Respond("", 0)
	_, err := b.Connect(context.Background(), "Net", "pw")
	require.NoError(t, err)

	r.On("security find-generic-password -D \"AirPort network password\" -wa Net2").
		Respond("", keychainExitNotFound)
	r.On("networksetup -setairportnetwork en0 Net2 pw").Respond("", 0)
	_, err = b.Connect(context.Background(), "Net2", "pw")
	require.NoError(t, err)

	probes := 0
	for _, call := range r.Calls() {
		if call == "swift -e \"import CoreWLAN\"" {
			probes++
		}
	}
	assert.Equal(t, 1, probes, "the helper probe is expensive and must run at most once per instance")
}

func TestPreferredNetworks(t *testing.T) {
	r := shelltest.NewRunner()
	b := newTestBackend(t, r)

	r.On("networksetup -listpreferredwirelessnetworks en0").
		Respond("Preferred networks on en0:\n\tHomeNet\n\tCafeNet\n", 0)
	profiles, err := b.PreferredNetworks(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "HomeNet", profiles[0].Name)
	assert.Equal(t, "CafeNet", profiles[1].Name)
}

func TestPreferredNetworkPassword(t *testing.T) {
	r := shelltest.NewRunner()
	b := newTestBackend(t, r)

	r.On("security find-generic-password -D \"AirPort network password\" -wa HomeNet").
		Respond("hunter2\n", 0)
	secret, found, err := b.PreferredNetworkPassword(context.Background(), "HomeNet")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hunter2", secret)
}

func TestPreferredNetworkPasswordExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		output   string
		found    bool
		wantKind wifi.KeychainErrorKind
		wantErr  bool
	}{
		{name: "missing item is not an error", exitCode: keychainExitNotFound},
		{name: "denied", exitCode: keychainExitDenied, output: "security: SecKeychainSearchCopyNext: The user name or passphrase you entered is not correct.", wantErr: true, wantKind: wifi.KeychainDenied},
		{name: "non-interactive", exitCode: keychainExitDenied, output: "security: non-interactive mode, cannot prompt", wantErr: true, wantKind: wifi.KeychainNonInteractive},
		{name: "cancelled", exitCode: keychainExitCanceled, wantErr: true, wantKind: wifi.KeychainCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := shelltest.NewRunner()
			b := newTestBackend(t, r)
			r.On("security find-generic-password -D \"AirPort network password\" -wa Net").
				Respond(tt.output, tt.exitCode)

			_, found, err := b.PreferredNetworkPassword(context.Background(), "Net")
			assert.Equal(t, tt.found, found)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var keychainErr *wifi.KeychainError
			require.ErrorAs(t, err, &keychainErr)
			assert.Equal(t, tt.wantKind, keychainErr.Kind)
		})
	}
}

func TestRemovePreferredNetworkAlsoClearsKeychain(t *testing.T) {
	r := shelltest.NewRunner()
	b := newTestBackend(t, r)

	r.On("networksetup -removepreferredwirelessnetwork en0 HomeNet").Respond("Removed HomeNet\n", 0)
	r.On("security delete-generic-password -D \"AirPort network password\" -a HomeNet").
		Respond("", keychainExitNotFound)

	require.NoError(t, b.RemovePreferredNetwork(context.Background(), "HomeNet"))
	assert.Len(t, r.Calls(), 3)
}
