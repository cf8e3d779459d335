package bucket

import (
	"strings"

	"github.com/goodtune/awtally/internal/storage"
)

var windowsPrefixes = []string{"desktop-", "laptop-", "wndws"}

var linuxHosts = map[string]bool{
	"linux":       true,
	"ubuntu":      true,
	"arch":        true,
	"endeavouros": true,
	"cachyos":     true,
}

var macHosts = map[string]bool{
	"macos":       true,
	"mac":         true,
	"macbook":     true,
	"macbook pro": true,
	"macbook air": true,
	"osx":         true,
}

// ClassifyPlatform maps a bucket hostname to an operating system label.
// Matching is case-insensitive. Unrecognized hostnames are returned
// unchanged with ok set to false; an empty hostname yields Unknown.
func ClassifyPlatform(hostname string) (platform string, ok bool) {
	if hostname == "" {
		return storage.PlatformUnknown, false
	}

	lower := strings.ToLower(hostname)
	for _, prefix := range windowsPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return storage.PlatformWindows, true
		}
	}
	if linuxHosts[lower] {
		return storage.PlatformLinux, true
	}
	if macHosts[lower] {
		return storage.PlatformMacOS, true
	}
	return hostname, false
}
