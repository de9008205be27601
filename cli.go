package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shazow/wifictl/wifi"
)

func formatNetwork(n wifi.Network) string {
	parts := []string{fmt.Sprintf("%d%%", n.Strength), n.Security.String()}
	if n.IsActive {
		parts = append(parts, "active")
	}
	return strings.Join(parts, ", ")
}

func runList(ctx context.Context, w io.Writer, jsonOut bool, m *wifi.Manager) error {
	networks, err := m.AvailableNetworks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list networks: %w", err)
	}

	if jsonOut {
		type row struct {
			SSID     string `json:"ssid"`
			Strength uint8  `json:"strength"`
			Security string `json:"security"`
			Active   bool   `json:"active"`
		}
		rows := make([]row, 0, len(networks))
		for _, n := range networks {
			rows = append(rows, row{SSID: n.SSID, Strength: n.Strength, Security: n.Security.String(), Active: n.IsActive})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	for _, n := range networks {
		fmt.Fprintf(w, "%s\t%s\n", n.SSID, formatNetwork(n))
	}
	return nil
}

func runStatus(ctx context.Context, w io.Writer, jsonOut bool, m *wifi.Manager) error {
	on, err := m.IsWifiOn(ctx)
	if err != nil {
		return fmt.Errorf("failed to query radio state: %w", err)
	}

	network := ""
	internet := false
	if on {
		// A failed query just means no association.
		network, _ = m.ConnectedNetworkName(ctx)
		internet = m.ConnectedToInternet(ctx)
	}

	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			WifiOn   bool   `json:"wifi_on"`
			Network  string `json:"network,omitempty"`
			Internet bool   `json:"internet"`
		}{WifiOn: on, Network: network, Internet: internet})
	}

	fmt.Fprintf(w, "Wifi On: %t\n", on)
	if network != "" {
		fmt.Fprintf(w, "Network: %s\n", network)
	} else {
		fmt.Fprintf(w, "Network: (none)\n")
	}
	fmt.Fprintf(w, "Internet: %t\n", internet)
	return nil
}

func runConnect(ctx context.Context, w io.Writer, m *wifi.Manager, ssid, password string) error {
	if err := m.Connect(ctx, ssid, password); err != nil {
		return err
	}
	if m.LastConnectionUsedSavedPassword() {
		fmt.Fprintf(w, "Connected to %s using its saved password.\n", ssid)
	} else {
		fmt.Fprintf(w, "Connected to %s.\n", ssid)
	}
	return nil
}

func runPassword(ctx context.Context, w io.Writer, m *wifi.Manager, name string) error {
	secret, found, err := m.PreferredNetworkPassword(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no stored password for %q", name)
	}
	fmt.Fprintln(w, secret)
	return nil
}

func runForget(ctx context.Context, w io.Writer, m *wifi.Manager, names ...string) error {
	removed, err := m.RemovePreferredNetworks(ctx, names...)
	for _, name := range removed {
		fmt.Fprintf(w, "Removed %s\n", name)
	}
	return err
}

func runQR(ctx context.Context, w io.Writer, m *wifi.Manager, ssid string) error {
	if ssid == "" {
		current, err := m.ConnectedNetworkName(ctx)
		if err != nil {
			return fmt.Errorf("failed to query current network: %w", err)
		}
		if current == "" {
			return fmt.Errorf("not connected; pass an ssid to generate a code for")
		}
		ssid = current
	}

	// Saved password and scanned security are both best-effort; an open or
	// unknown network still gets a usable code.
	password, _, err := m.PreferredNetworkPassword(ctx, ssid)
	if err != nil {
		var notFound *wifi.NetworkNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	security := wifi.SecurityUnknown
	if networks, err := m.AvailableNetworks(ctx); err == nil {
		for _, n := range networks {
			if n.SSID == ssid {
				security = n.Security
				break
			}
		}
	}
	if security == wifi.SecurityUnknown && password != "" {
		security = wifi.SecurityWPA
	}

	code, err := GenerateWifiQRCode(ssid, password, security)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, code)
	return nil
}
