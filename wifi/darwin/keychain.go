package darwin

import (
	"context"
	"strings"

	"github.com/shazow/wifictl/shell"
	"github.com/shazow/wifictl/wifi"
)

// keychainItemKind is the keychain item class macOS uses for Wi-Fi
// passwords.
const keychainItemKind = "AirPort network password"

// Exit codes from `security find-generic-password`.
const (
	keychainExitNotFound = 44  // errSecItemNotFound
	keychainExitDenied   = 45  // errSecAuthFailed
	keychainExitNoSuch   = 51  // errSecNoSuchKeychain
	keychainExitCanceled = 128 // user dismissed the unlock prompt
)

// PreferredNetworkPassword looks up the stored password for a network in
// the login keychain. A missing item reports found=false with no error;
// access failures surface as *wifi.KeychainError so callers never branch on
// raw exit codes.
func (b *Backend) PreferredNetworkPassword(ctx context.Context, name string) (string, bool, error) {
	cmd := shell.NewCommand("security", "find-generic-password", "-D", keychainItemKind, "-wa", name)
	res, err := b.runner.Run(ctx, cmd)
	if err != nil {
		return "", false, err
	}
	if res.Success() {
		return strings.TrimSpace(string(res.Output)), true, nil
	}

	switch res.ExitCode {
	case keychainExitNotFound:
		return "", false, nil
	case keychainExitDenied:
		return "", false, &wifi.KeychainError{Name: name, Kind: KeychainDeniedKind(res.Output)}
	case keychainExitCanceled, keychainExitNoSuch:
		return "", false, &wifi.KeychainError{Name: name, Kind: wifi.KeychainCancelled}
	default:
		return "", false, &shell.ExitError{Command: cmd, ExitCode: res.ExitCode, Output: res.Output}
	}
}

// KeychainDeniedKind distinguishes a plain denial from a session that has no
// way to prompt at all, based on the tool's message text.
func KeychainDeniedKind(output []byte) wifi.KeychainErrorKind {
	if strings.Contains(strings.ToLower(string(output)), "non-interactive") {
		return wifi.KeychainNonInteractive
	}
	return wifi.KeychainDenied
}
