// Package clientinfo extracts the caller's address and user agent from a request.
package clientinfo

import (
	"net"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Unknown is returned as the IP when no address can be resolved.
const Unknown = "unknown"

const (
	// HeaderForwardedFor lists the client and proxy chain, client first.
	HeaderForwardedFor = "X-Forwarded-For"
	// HeaderRealIP is the single client address set by some proxies.
	HeaderRealIP = "X-Real-IP"
	// HeaderUserAgent is the raw client user agent.
	HeaderUserAgent = "User-Agent"
)

// Info is the best-effort identity of the calling client.
type Info struct {
	IP        string
	UserAgent string
}

// HeaderGetter reads a single request header.
type HeaderGetter interface {
	Get(key string) string
}

// HeaderFunc adapts a plain function to HeaderGetter.
type HeaderFunc func(key string) string

// Get calls f(key).
func (f HeaderFunc) Get(key string) string { return f(key) }

// Resolve checks forwarding headers before the connection address and never fails.
func Resolve(headers HeaderGetter, remoteAddr string) Info {
	info := Info{IP: Unknown}
	if headers != nil {
		info.UserAgent = strings.TrimSpace(headers.Get(HeaderUserAgent))
		if ip := firstForwarded(headers.Get(HeaderForwardedFor)); ip != "" {
			info.IP = ip
			return info
		}
		if ip := parseIP(headers.Get(HeaderRealIP)); ip != "" {
			info.IP = ip
			return info
		}
	}
	if ip := hostOnly(remoteAddr); ip != "" {
		info.IP = ip
	}
	return info
}

// FromFiber resolves client info for a fiber request.
func FromFiber(c *fiber.Ctx) Info {
	var remote string
	if addr := c.Context().RemoteAddr(); addr != nil {
		remote = addr.String()
	}
	return Resolve(HeaderFunc(func(key string) string { return c.Get(key) }), remote)
}

// IPPtr returns nil when the address is unknown.
func (i Info) IPPtr() *string {
	if i.IP == "" || i.IP == Unknown {
		return nil
	}
	ip := i.IP
	return &ip
}

// UserAgentPtr returns nil when the header was absent.
func (i Info) UserAgentPtr() *string {
	if i.UserAgent == "" {
		return nil
	}
	ua := i.UserAgent
	return &ua
}

func firstForwarded(xff string) string {
	for _, part := range strings.Split(xff, ",") {
		if ip := parseIP(part); ip != "" {
			return ip
		}
	}
	return ""
}

func parseIP(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if ip := net.ParseIP(raw); ip != nil {
		return ip.String()
	}
	// some proxies append the port
	return hostOnly(raw)
}

func hostOnly(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if ip := net.ParseIP(strings.Trim(addr, "[]")); ip != nil {
		return ip.String()
	}
	return ""
}
