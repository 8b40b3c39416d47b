package utils

import "testing"

const (
	uaChromeMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaIPhone    = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaIPad      = "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"
	uaGooglebot = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestDeviceTypeFromUserAgent(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"desktop browser", uaChromeMac, "desktop"},
		{"phone", uaIPhone, "mobile"},
		{"tablet", uaIPad, "tablet"},
		{"crawler", uaGooglebot, "bot"},
		{"empty", "", "desktop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeviceTypeFromUserAgent(tt.ua); got != tt.want {
				t.Errorf("DeviceTypeFromUserAgent(%q) = %s, want %s", tt.ua, got, tt.want)
			}
		})
	}
}

func TestDeviceNameFromUserAgent(t *testing.T) {
	if got := DeviceNameFromUserAgent(uaChromeMac); got != "Chrome on macOS" {
		t.Errorf("Expected Chrome on macOS, got %s", got)
	}
	if got := DeviceNameFromUserAgent(""); got != "Browser" {
		t.Errorf("Expected Browser fallback for empty agent, got %s", got)
	}
}
