package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	ua "github.com/mssola/user_agent"
)

// ClientInfo describes the caller of a request for logging
type ClientInfo struct {
	IP         string `json:"ip"`
	DeviceType string `json:"device_type"` // mobile, tablet, desktop, unknown
	Platform   string `json:"platform"`    // android, ios, windows, mac, linux, unknown
	Browser    string `json:"browser"`
	IsBot      bool   `json:"is_bot"`
}

// Client extracts the caller's IP and device details from the request
func Client(c *gin.Context) ClientInfo {
	info := ParseUserAgent(c.Request.UserAgent())
	info.IP = RealIP(c)
	return info
}

// RealIP returns the client address behind reverse proxies.
// X-Real-IP wins, then the first public X-Forwarded-For hop, then gin's ClientIP.
func RealIP(c *gin.Context) string {
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
		if ip := net.ParseIP(realIP); ip != nil && !isPrivate(ip) {
			return realIP
		}
	}

	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		var first string
		for _, hop := range strings.Split(forwarded, ",") {
			hop = strings.TrimSpace(hop)
			ip := net.ParseIP(hop)
			if ip == nil {
				continue
			}
			if first == "" {
				first = hop
			}
			if !isPrivate(ip) {
				return hop
			}
		}
		if first != "" {
			return first
		}
	}

	return c.ClientIP()
}

func isPrivate(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback()
}

// ParseUserAgent classifies a User-Agent string. IP is left empty.
func ParseUserAgent(userAgent string) ClientInfo {
	if userAgent == "" {
		return ClientInfo{DeviceType: "unknown", Platform: "unknown", Browser: "Unknown"}
	}

	parser := ua.New(userAgent)

	browser, _ := parser.Browser()
	if browser == "" {
		browser = "Unknown"
	}

	return ClientInfo{
		DeviceType: deviceType(parser),
		Platform:   platform(parser.OSInfo().Name),
		Browser:    browser,
		IsBot:      parser.Bot(),
	}
}

func deviceType(parser *ua.UserAgent) string {
	if !parser.Mobile() {
		return "desktop"
	}
	lower := strings.ToLower(parser.UA())
	for _, indicator := range []string{"ipad", "tablet", "kindle", "sm-t", "nexus 7", "nexus 9", "nexus 10"} {
		if strings.Contains(lower, indicator) {
			return "tablet"
		}
	}
	return "mobile"
}

func platform(osName string) string {
	name := strings.ToLower(osName)
	switch {
	case strings.Contains(name, "android"):
		return "android"
	case strings.Contains(name, "iphone"), strings.Contains(name, "ios"):
		return "ios"
	case strings.Contains(name, "windows"):
		return "windows"
	case strings.Contains(name, "mac os"), strings.Contains(name, "macos"):
		return "mac"
	case strings.Contains(name, "chrome os"), strings.Contains(name, "cros"):
		return "chromeos"
	case strings.Contains(name, "linux"), strings.Contains(name, "ubuntu"):
		return "linux"
	}
	return "unknown"
}
