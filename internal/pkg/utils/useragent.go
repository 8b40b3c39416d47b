package utils

import ua "github.com/mileusna/useragent"

// DeviceTypeFromUserAgent classifies a user agent as mobile, tablet, bot or
// desktop. Desktop is the fallback for anything unrecognized, curl included.
func DeviceTypeFromUserAgent(raw string) string {
	agent := ua.Parse(raw)
	switch {
	case agent.Bot:
		return "bot"
	case agent.Tablet:
		return "tablet"
	case agent.Mobile:
		return "mobile"
	default:
		return "desktop"
	}
}

// DeviceNameFromUserAgent derives a short human-readable device label
func DeviceNameFromUserAgent(raw string) string {
	agent := ua.Parse(raw)

	name := agent.Name
	if name == "" {
		name = "Browser"
	}
	if agent.OS == "" {
		return name
	}
	return name + " on " + agent.OS
}
