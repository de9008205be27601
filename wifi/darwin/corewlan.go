package darwin

import (
	"context"
	"fmt"
	"strings"

	"github.com/shazow/wifictl/shell"
	"github.com/shazow/wifictl/wifi"
)

const airportPath = "/System/Library/PrivateFrameworks/Apple80211.framework/Versions/Current/Resources/airport"

// One-shot CoreWLAN programs run through the Swift interpreter. Interpolated
// values are Go-quoted, which Swift string literals accept.
const (
	coreWLANProbeSource = `import CoreWLAN`

	coreWLANConnectSource = `import CoreWLAN
let client = CWWiFiClient.shared()
guard let interface = client.interface() else {
    print("No Wi-Fi interface")
    exit(2)
}
do {
    let networks = try interface.scanForNetworks(withName: %s)
    guard let network = networks.first else {
        print("Could not find network")
        exit(3)
    }
    try interface.associate(to: network, password: %s)
} catch {
    print("Failed to join network: \(error)")
    exit(4)
}
`

	coreWLANDisconnectSource = `import CoreWLAN
CWWiFiClient.shared().interface()?.disassociate()
`
)

// hasCoreWLAN reports whether Swift with the CoreWLAN framework is usable.
// The probe spawns the Swift interpreter, so its result is cached for the
// lifetime of this Backend instance.
func (b *Backend) hasCoreWLAN(ctx context.Context) bool {
	if b.swiftProbed {
		return b.swiftUsable
	}
	b.swiftProbed = true

	res, err := b.runner.Run(ctx, shell.NewCommand("swift", "-e", coreWLANProbeSource))
	b.swiftUsable = err == nil && res.Success()
	if !b.swiftUsable {
		b.logger.Debug("CoreWLAN helper unavailable, falling back to networksetup", "error", err)
	}
	return b.swiftUsable
}

func (b *Backend) coreWLANConnect(ctx context.Context, ssid, password string) error {
	passwordLiteral := "nil"
	if password != "" {
		passwordLiteral = fmt.Sprintf("%q", password)
	}
	source := fmt.Sprintf(coreWLANConnectSource, fmt.Sprintf("%q", ssid), passwordLiteral)

	res, err := b.runner.Run(ctx, shell.NewCommand("swift", "-e", source))
	if err != nil {
		return err
	}
	if res.Success() {
		return nil
	}
	out := strings.ToLower(string(res.Output))
	if strings.Contains(out, "could not find network") {
		return &wifi.NetworkNotFoundError{SSID: ssid}
	}
	return fmt.Errorf("failed to join %q: %w: %s", ssid, wifi.ErrOperationFailed, strings.TrimSpace(string(res.Output)))
}

func (b *Backend) coreWLANDisconnect(ctx context.Context) error {
	_, err := shell.Output(ctx, b.runner, shell.NewCommand("swift", "-e", coreWLANDisconnectSource))
	return err
}
