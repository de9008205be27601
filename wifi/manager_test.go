package wifi_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shazow/wifictl/wifi"
	"github.com/shazow/wifictl/wifi/mock"
)

func newManager(b *mock.Backend, opts ...wifi.Option) *wifi.Manager {
	opts = append([]wifi.Option{
		wifi.WithRadioTimeout(time.Second),
		wifi.WithInternetProbe(func(ctx context.Context) bool { return b.ConnectedTo != "" }),
	}, opts...)
	return wifi.New(b, opts...)
}

func TestConnectRejectsEmptySSID(t *testing.T) {
	b := mock.New()
	m := newManager(b)

	for _, ssid := range []string{"", "   "} {
		err := m.Connect(context.Background(), ssid, "secret")
		var invalidErr *wifi.InvalidNetworkNameError
		require.ErrorAs(t, err, &invalidErr)
	}
	assert.Equal(t, 0, b.TotalCalls(), "validation must happen before any backend call")
}

func TestConnectIsIdempotent(t *testing.T) {
	b := mock.New()
	b.ConnectedTo = "HomeNet"
	m := newManager(b)

	require.NoError(t, m.Connect(context.Background(), "HomeNet", ""))
	assert.Equal(t, 1, b.TotalCalls(), "only the connectivity check should run")
	assert.Equal(t, 0, b.Calls["Connect"])
}

func TestConnectPowersOnRadio(t *testing.T) {
	b := mock.New()
	b.WirelessEnabled = false
	m := newManager(b)

	require.NoError(t, m.Connect(context.Background(), "HomeNet", "pw"))
	assert.True(t, b.WirelessEnabled)
	assert.Equal(t, 1, b.Calls["SetWireless"])
	assert.Equal(t, "HomeNet", b.ConnectedTo)
}

func TestConnectVerifiesOutcome(t *testing.T) {
	b := mock.New()
	b.LandOn = "NeighborNet"
	m := newManager(b)

	err := m.Connect(context.Background(), "HomeNet", "pw")
	var connErr *wifi.NetworkConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "HomeNet", connErr.Requested)
	assert.Equal(t, "NeighborNet", connErr.Actual)
	assert.Contains(t, connErr.Error(), "HomeNet")
	assert.Contains(t, connErr.Error(), "NeighborNet")
}

func TestConnectVerificationDistinguishesNothing(t *testing.T) {
	err := &wifi.NetworkConnectionError{Requested: "HomeNet"}
	assert.Contains(t, err.Error(), "connected to nothing")
}

func TestConnectNewNetworkWithPassword(t *testing.T) {
	b := mock.New()
	m := newManager(b)

	require.NoError(t, m.Connect(context.Background(), "CafeNet", "secret"))
	assert.Equal(t, "secret", b.LastConnectPassword)
	assert.False(t, m.LastConnectionUsedSavedPassword())

	// The successful connect left a profile behind.
	profiles, err := m.PreferredNetworks(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "CafeNet", profiles[0].Name)
}

func TestConnectUsesSavedPassword(t *testing.T) {
	b := mock.New()
	b.AddProfile("CafeNet", time.Now(), "abc")
	m := newManager(b)

	require.NoError(t, m.Connect(context.Background(), "CafeNet", ""))
	assert.Equal(t, "abc", b.LastConnectPassword)
	assert.True(t, m.LastConnectionUsedSavedPassword())
}

func TestDisconnectTwiceNeverRaises(t *testing.T) {
	b := mock.New()
	b.ConnectedTo = "HomeNet"
	m := newManager(b)

	require.NoError(t, m.Disconnect(context.Background()))
	require.NoError(t, m.Disconnect(context.Background()))
}

func TestCycleNetwork(t *testing.T) {
	b := mock.New()
	b.ConnectedTo = "HomeNet"
	m := newManager(b)

	require.NoError(t, m.CycleNetwork(context.Background()))
	assert.True(t, b.WirelessEnabled)
	assert.Equal(t, 2, b.Calls["SetWireless"])
}

func TestCycleNetworkWhileDisconnected(t *testing.T) {
	b := mock.New()
	m := newManager(b)
	require.NoError(t, m.CycleNetwork(context.Background()))
	assert.True(t, b.WirelessEnabled)
}

func TestWifiOnIsIdempotent(t *testing.T) {
	b := mock.New()
	m := newManager(b)

	require.NoError(t, m.WifiOn(context.Background()))
	assert.Equal(t, 0, b.Calls["SetWireless"])
}

func TestPreferredNetworkPasswordUnknownNetwork(t *testing.T) {
	b := mock.New()
	m := newManager(b)

	_, _, err := m.PreferredNetworkPassword(context.Background(), "Nowhere")
	var notFound *wifi.NetworkNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Nowhere", notFound.SSID)
}

func TestPreferredNetworkPassword(t *testing.T) {
	b := mock.New()
	b.AddProfile("HomeNet", time.Now(), "hunter2")
	b.AddProfile("OpenNet", time.Now(), "")
	m := newManager(b)

	secret, found, err := m.PreferredNetworkPassword(context.Background(), "HomeNet")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hunter2", secret)

	_, found, err = m.PreferredNetworkPassword(context.Background(), "OpenNet")
	require.NoError(t, err)
	assert.False(t, found, "a saved open network has no stored secret")
}

func TestRemovePreferredNetworks(t *testing.T) {
	b := mock.New()
	b.AddProfile("A", time.Now(), "x")
	b.AddProfile("B", time.Now(), "y")
	m := newManager(b)

	removed, err := m.RemovePreferredNetworks(context.Background(), "A", "Missing", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, removed)

	profiles, err := m.PreferredNetworks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestAvailableNetworksRequiresRadio(t *testing.T) {
	b := mock.New()
	b.WirelessEnabled = false
	m := newManager(b)

	_, err := m.AvailableNetworks(context.Background())
	require.ErrorIs(t, err, wifi.ErrWirelessDisabled)
}

func TestAvailableNetworksSorted(t *testing.T) {
	b := mock.New()
	b.ConnectedTo = "HomeNet"
	b.Visible = []wifi.Network{
		{SSID: "Weak", Strength: 20},
		{SSID: "HomeNet", Strength: 50},
		{SSID: "Strong", Strength: 90},
	}
	m := newManager(b)

	networks, err := m.AvailableNetworks(context.Background())
	require.NoError(t, err)
	require.Len(t, networks, 3)
	assert.Equal(t, "HomeNet", networks[0].SSID, "active network sorts first")
	assert.Equal(t, "Strong", networks[1].SSID)
	assert.Equal(t, "Weak", networks[2].SSID)
}
