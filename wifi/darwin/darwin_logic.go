package darwin

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shazow/wifictl/wifi"
)

var (
	signalRe   = regexp.MustCompile(`Signal / Noise:\s*(-?\d+)\s*dBm`)
	securityRe = regexp.MustCompile(`Security:\s*(.+)`)
)

// parseSystemProfilerOutput extracts visible networks from
// `system_profiler SPAirPortDataType` output. Network names appear as
// 12-space-indented headers under the "Current Network Information" and
// "Other Local Wi-Fi Networks" sections.
func parseSystemProfilerOutput(output string) []wifi.Network {
	var networks []wifi.Network
	index := make(map[string]int)

	flush := func(n *wifi.Network, rssi int) {
		if n == nil || n.SSID == "" {
			return
		}
		n.Strength = rssiToStrength(rssi)
		if i, seen := index[n.SSID]; seen {
			// The same SSID can appear in both sections; keep the stronger
			// reading and the active flag.
			if n.Strength > networks[i].Strength {
				networks[i].Strength = n.Strength
			}
			if n.IsActive {
				networks[i].IsActive = true
			}
			return
		}
		index[n.SSID] = len(networks)
		networks = append(networks, *n)
	}

	scanner := bufio.NewScanner(strings.NewReader(output))
	inCurrent := false
	inOthers := false
	var current *wifi.Network
	rssi := 0

	for scanner.Scan() {
		line := scanner.Text()

		if strings.Contains(line, "Current Network Information:") {
			inCurrent, inOthers = true, false
			continue
		}
		if strings.Contains(line, "Other Local Wi-Fi Networks:") {
			inCurrent, inOthers = false, true
			continue
		}
		// A peer interface stanza (awdl0 etc.) ends the section we care about.
		if strings.HasPrefix(strings.TrimSpace(line), "awdl") {
			break
		}
		if !inCurrent && !inOthers {
			continue
		}

		trimmed := strings.TrimSpace(line)
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if indent == 12 && strings.HasSuffix(trimmed, ":") && !strings.Contains(trimmed, ": ") {
			flush(current, rssi)
			current = &wifi.Network{
				SSID:     strings.TrimSuffix(trimmed, ":"),
				IsActive: inCurrent,
				Security: wifi.SecurityNone,
			}
			rssi = 0
			continue
		}

		if current == nil {
			continue
		}
		if matches := signalRe.FindStringSubmatch(line); len(matches) > 1 {
			rssi, _ = strconv.Atoi(matches[1])
		}
		if matches := securityRe.FindStringSubmatch(line); len(matches) > 1 {
			current.RawSecurity = strings.TrimSpace(matches[1])
			current.Security = wifi.ClassifySecurity(current.RawSecurity)
		}
	}
	flush(current, rssi)

	return networks
}

// rssiToStrength maps a dBm reading onto a 0-100 scale. Anything at or above
// 0 dBm is garbage from the parser's perspective, and -100 dBm is the floor.
func rssiToStrength(rssi int) uint8 {
	if rssi >= 0 || rssi <= -100 {
		return 0
	}
	strength := 2 * (rssi + 100)
	if strength > 100 {
		strength = 100
	}
	return uint8(strength)
}

// findWifiInterface parses `networksetup -listallhardwareports` output. The
// output is a series of blank-line-separated stanzas, one per hardware port.
func findWifiInterface(output string) (string, error) {
	for _, stanza := range strings.Split(output, "\n\n") {
		var device string
		isWifi := false
		for _, line := range strings.Split(stanza, "\n") {
			if port, ok := strings.CutPrefix(line, "Hardware Port: "); ok {
				if strings.Contains(port, "Wi-Fi") || strings.Contains(port, "AirPort") {
					isWifi = true
				}
			}
			if dev, ok := strings.CutPrefix(line, "Device: "); ok {
				device = dev
			}
		}
		if isWifi && device != "" {
			return device, nil
		}
	}
	return "", fmt.Errorf("no Wi-Fi interface found: %w", wifi.ErrNotFound)
}
