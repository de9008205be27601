//go:build mock

package main

import (
	"log/slog"
	"time"

	"github.com/shazow/wifictl/shell"
	"github.com/shazow/wifictl/wifi"
	mockBackend "github.com/shazow/wifictl/wifi/mock"
)

func GetBackend(_ shell.Runner, _ *slog.Logger) (wifi.Backend, error) {
	b := mockBackend.New()
	b.AddProfile("Home Base", time.Now().Add(-24*time.Hour), "hunter2")
	b.AddProfile("Cafe Guest", time.Now().Add(-72*time.Hour), "")
	b.Visible = []wifi.Network{
		{SSID: "Home Base", Security: wifi.SecurityWPA2, RawSecurity: "WPA2", Strength: 82},
		{SSID: "Cafe Guest", Security: wifi.SecurityNone, RawSecurity: "", Strength: 55},
		{SSID: "Library 5G", Security: wifi.SecurityWPA3, RawSecurity: "WPA3", Strength: 40},
	}
	b.ConnectedTo = "Home Base"
	return b, nil
}
