package pageinsight

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"syscall"
	"time"
)

const (
	dialTimeout   = 10 * time.Second
	dialKeepAlive = 30 * time.Second
)

var errForbiddenTarget = errors.New("target address is not publicly routable")

// nonPublicRanges lists blocks that netip.Addr has no predicate for. Loopback,
// RFC 1918, link-local, multicast and unspecified addresses are caught by
// IsGlobalUnicast and IsPrivate instead.
var nonPublicRanges = []netip.Prefix{
	netip.MustParsePrefix("100.64.0.0/10"),   // shared address space, RFC 6598
	netip.MustParsePrefix("192.0.0.0/24"),    // IETF protocol assignments
	netip.MustParsePrefix("192.0.2.0/24"),    // documentation
	netip.MustParsePrefix("198.18.0.0/15"),   // benchmarking
	netip.MustParsePrefix("198.51.100.0/24"), // documentation
	netip.MustParsePrefix("203.0.113.0/24"),  // documentation
	netip.MustParsePrefix("240.0.0.0/4"),     // class E, includes broadcast
	netip.MustParsePrefix("2001:db8::/32"),   // IPv6 documentation
}

// newDialer builds the dialer shared by every outbound client: page fetches,
// link checks and robots/sitemap lookups. The address is inspected in Control,
// i.e. after name resolution, so a hostname that resolves to an internal
// address is refused as well. allowPrivate turns the guard off.
func newDialer(allowPrivate bool) *net.Dialer {
	d := &net.Dialer{Timeout: dialTimeout, KeepAlive: dialKeepAlive}
	if !allowPrivate {
		d.Control = refusePrivateDial
	}
	return d
}

func refusePrivateDial(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %w", errForbiddenTarget, err)
	}
	if forbiddenTarget(ap.Addr()) {
		return fmt.Errorf("%w: %s", errForbiddenTarget, ap.Addr())
	}
	return nil
}

// forbiddenTarget reports whether addr must not be dialed. IPv4-mapped IPv6
// addresses are judged by their IPv4 form.
func forbiddenTarget(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return true
	}
	for _, r := range nonPublicRanges {
		if r.Contains(addr) {
			return true
		}
	}
	return false
}
