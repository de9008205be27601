package main

import (
	"strings"
	"testing"

	"github.com/shazow/wifictl/wifi"
)

func TestEscapeWifiString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{`semi;colon`, `semi\;colon`},
		{`has:both,of;them`, `has\:both\,of\;them`},
		{`back\slash`, `back\\slash`},
		{`"quoted"`, `\"quoted\"`},
	}
	for _, tt := range tests {
		if got := EscapeWifiString(tt.input); got != tt.want {
			t.Errorf("EscapeWifiString(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestGenerateWifiQRCode(t *testing.T) {
	tests := []struct {
		name     string
		security wifi.SecurityType
		password string
	}{
		{"wpa2", wifi.SecurityWPA2, "password123"},
		{"wpa3", wifi.SecurityWPA3, "password123"},
		{"wep", wifi.SecurityWEP, "oldkey"},
		{"open", wifi.SecurityNone, ""},
		{"unknown", wifi.SecurityUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := GenerateWifiQRCode("TestNet", tt.password, tt.security)
			if err != nil {
				t.Fatalf("GenerateWifiQRCode() failed: %v", err)
			}
			if strings.TrimSpace(code) == "" {
				t.Fatalf("GenerateWifiQRCode() produced empty output")
			}
		})
	}
}
