package wifi

import "strings"

// SecurityType represents the security protocol of a network.
type SecurityType int

const (
	SecurityUnknown SecurityType = iota
	SecurityNone
	SecurityWEP
	SecurityWPA
	SecurityWPA2
	SecurityWPA3
)

func (s SecurityType) String() string {
	switch s {
	case SecurityNone:
		return "none"
	case SecurityWEP:
		return "WEP"
	case SecurityWPA:
		return "WPA"
	case SecurityWPA2:
		return "WPA2"
	case SecurityWPA3:
		return "WPA3"
	default:
		return "unknown"
	}
}

// ClassifySecurity normalizes a raw security string from an OS tool into a
// SecurityType. The input may carry several space-separated protocol tokens
// (nmcli prints "WPA1 WPA2", system_profiler prints "WPA2 Personal"); the
// strongest recognized protocol wins. Unrecognized input classifies as
// SecurityUnknown, which connect paths treat as an open network unless a
// password was explicitly supplied.
func ClassifySecurity(raw string) SecurityType {
	best := SecurityUnknown
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == '/' || r == ','
	})
	for _, token := range tokens {
		if t := classifyToken(token); t > best {
			best = t
		}
	}
	return best
}

func classifyToken(token string) SecurityType {
	switch token = strings.ToUpper(strings.Trim(token, "-/()")); {
	case strings.HasPrefix(token, "WPA3"):
		return SecurityWPA3
	case strings.HasPrefix(token, "WPA2"):
		return SecurityWPA2
	case strings.HasPrefix(token, "WPA"): // covers WPA and nmcli's WPA1
		return SecurityWPA
	case strings.HasPrefix(token, "WEP"):
		return SecurityWEP
	case token == "NONE" || token == "OPEN" || token == "":
		// nmcli prints "--" for open networks; the trim reduces it to "".
		return SecurityNone
	default:
		return SecurityUnknown
	}
}
