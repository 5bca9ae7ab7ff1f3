package middleware

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

// ParseTrustedProxies accepts bare addresses and CIDR ranges.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

func trustedPeer(addr netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func peerAddr(remoteAddr string) (netip.Addr, bool) {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	a, err := netip.ParseAddr(strings.TrimSpace(host))
	if err != nil {
		return netip.Addr{}, false
	}
	return a.Unmap(), true
}

// RealIP sets the client address into Gin context (key: "real_ip").
// Forwarding headers are only honoured when the direct peer is a trusted proxy:
//  1. CF-Connecting-IP (Cloudflare)
//  2. X-Forwarded-For, walked right to left past trusted hops
//
// Any other peer is keyed by its own socket address.
func RealIP(trusted []netip.Prefix) gin.HandlerFunc {
	return func(c *gin.Context) {
		peer, ok := peerAddr(c.Request.RemoteAddr)
		if !ok {
			c.Set("real_ip", c.ClientIP())
			c.Next()
			return
		}
		c.Set("real_ip", clientAddr(c, peer, trusted).String())
		c.Next()
	}
}

func clientAddr(c *gin.Context, peer netip.Addr, trusted []netip.Prefix) netip.Addr {
	if !trustedPeer(peer, trusted) {
		return peer
	}
	if cf, err := netip.ParseAddr(strings.TrimSpace(c.GetHeader("CF-Connecting-IP"))); err == nil {
		return cf.Unmap()
	}
	hops := strings.Split(c.GetHeader("X-Forwarded-For"), ",")
	client := peer
	for i := len(hops) - 1; i >= 0; i-- {
		a, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		client = a.Unmap()
		if !trustedPeer(client, trusted) {
			break
		}
	}
	return client
}
