package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIPResolver finds the address a request originated from.
// Forwarding headers are only honoured when the direct peer is inside one
// of the trusted proxy ranges, and only the hops those proxies appended.
type ClientIPResolver struct {
	trusted []netip.Prefix
}

// NewClientIPResolver parses trustedProxies as CIDR ranges or bare
// addresses. Entries that parse as neither are skipped.
func NewClientIPResolver(trustedProxies []string) *ClientIPResolver {
	resolver := &ClientIPResolver{trusted: make([]netip.Prefix, 0, len(trustedProxies))}

	for _, entry := range trustedProxies {
		entry = strings.TrimSpace(entry)
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			resolver.trusted = append(resolver.trusted, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			resolver.trusted = append(resolver.trusted, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}

	return resolver
}

// ClientIP returns the nearest untrusted hop when the peer is a trusted
// proxy, and the peer address otherwise. X-Forwarded-For is walked right to
// left; entries left of the nearest untrusted hop are client-supplied and
// ignored. X-Real-IP is used only when X-Forwarded-For is absent.
func (c *ClientIPResolver) ClientIP(r *http.Request) string {
	peer := remoteAddr(r)

	if c == nil || !c.isTrusted(peer) {
		return peer
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				// a malformed hop ends the chain we can attribute
				return peer
			}
			if !c.isTrusted(addr.String()) {
				return addr.Unmap().String()
			}
		}
		return peer
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if addr, err := netip.ParseAddr(xri); err == nil {
			return addr.Unmap().String()
		}
	}

	return peer
}

func (c *ClientIPResolver) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, prefix := range c.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// remoteAddr strips the port from RemoteAddr
func remoteAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
