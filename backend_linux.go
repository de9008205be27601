//go:build linux && !mock

package main

import (
	"log/slog"

	"github.com/shazow/wifictl/shell"
	"github.com/shazow/wifictl/wifi"
	"github.com/shazow/wifictl/wifi/nm"
)

func GetBackend(runner shell.Runner, logger *slog.Logger) (wifi.Backend, error) {
	return nm.New(runner, logger)
}
