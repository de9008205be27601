package nm

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shazow/wifictl/shell"
	"github.com/shazow/wifictl/wifi"
)

// FindBestProfile resolves an SSID to the saved profile most likely to be
// the one the user means. NetworkManager silently creates duplicates
// ("MySSID", "MySSID 1") when a connect races a stale profile, so the match
// is by name prefix and the most recently modified profile wins. Ties keep
// the first listed.
//
// A failed listing or no match reports ok=false; the network is then treated
// as unsaved.
func (b *Backend) FindBestProfile(ctx context.Context, ssid string) (wifi.NetworkProfile, bool) {
	profiles, err := b.PreferredNetworks(ctx)
	if err != nil {
		b.logger.Debug("could not list saved profiles", "error", err)
		return wifi.NetworkProfile{}, false
	}

	var best wifi.NetworkProfile
	found := false
	for _, p := range profiles {
		if !strings.HasPrefix(p.Name, ssid) {
			continue
		}
		if !found || p.LastModified.After(best.LastModified) {
			best = p
			found = true
		}
	}
	return best, found
}

// PreferredNetworks lists saved wireless profiles with their last-modified
// timestamps. HasStoredSecret stays false: reading each profile's psk would
// cost one nmcli invocation per profile, and callers that care ask
// PreferredNetworkPassword directly.
func (b *Backend) PreferredNetworks(ctx context.Context) ([]wifi.NetworkProfile, error) {
	cmd := shell.NewCommand("nmcli", "-t", "-f", "NAME,TYPE,TIMESTAMP", "connection", "show")
	out, err := shell.Output(ctx, b.runner, cmd)
	if err != nil {
		return nil, err
	}
	return parseProfileList(string(out)), nil
}

func parseProfileList(output string) []wifi.NetworkProfile {
	var profiles []wifi.NetworkProfile
	for _, line := range strings.Split(output, "\n") {
		fields := splitTerse(strings.TrimSpace(line))
		if len(fields) != 3 || fields[0] == "" {
			continue
		}
		if fields[1] != "802-11-wireless" {
			continue
		}
		ts, _ := strconv.ParseInt(fields[2], 10, 64)
		p := wifi.NetworkProfile{Name: fields[0]}
		if ts > 0 {
			p.LastModified = time.Unix(ts, 0)
		}
		profiles = append(profiles, p)
	}
	return profiles
}

// PreferredNetworkPassword returns the stored psk for a saved profile. A
// profile with no secret, or no profile at all, reports found=false.
func (b *Backend) PreferredNetworkPassword(ctx context.Context, name string) (string, bool, error) {
	return b.profileSecret(ctx, name)
}

func (b *Backend) profileSecret(ctx context.Context, name string) (string, bool, error) {
	cmd := shell.NewCommand("nmcli", "-s", "-g", "802-11-wireless-security.psk", "connection", "show", name)
	out, err := shell.Output(ctx, b.runner, cmd)
	if err != nil {
		// nmcli exits nonzero for unknown profiles and for profiles without
		// a security section; both mean "no stored secret" here.
		return "", false, nil
	}
	secret := strings.TrimSpace(string(out))
	if secret == "" {
		return "", false, nil
	}
	return secret, true, nil
}
