//go:build !linux && !darwin && !mock

package main

import (
	"fmt"
	"log/slog"

	"github.com/shazow/wifictl/shell"
	"github.com/shazow/wifictl/wifi"
)

func GetBackend(_ shell.Runner, _ *slog.Logger) (wifi.Backend, error) {
	return nil, fmt.Errorf("unsupported operating system")
}
