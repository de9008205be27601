//go:build darwin && !mock

package main

import (
	"log/slog"

	"github.com/shazow/wifictl/shell"
	"github.com/shazow/wifictl/wifi"
	"github.com/shazow/wifictl/wifi/darwin"
)

func GetBackend(runner shell.Runner, logger *slog.Logger) (wifi.Backend, error) {
	return darwin.New(runner, logger)
}
