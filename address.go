package mcvhost

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

var ErrInvalidAddress = errors.New("invalid address")

// ParseAddress accepts "<ipv4>:<port>" or a bare "<port>". A bare port
// binds to every interface. Trailing spaces are ignored.
func ParseAddress(s string) (netip.AddrPort, error) {
	s = strings.TrimRight(s, " \v\f\r")
	host, port, found := strings.Cut(s, ":")
	if !found {
		p, err := parsePort(s)
		if err != nil {
			return netip.AddrPort{}, fmt.Errorf("%w %q", ErrInvalidAddress, s)
		}
		return netip.AddrPortFrom(netip.IPv4Unspecified(), p), nil
	}

	if host == "" || strings.Trim(host, "0123456789.") != "" {
		return netip.AddrPort{}, fmt.Errorf("%w %q", ErrInvalidAddress, s)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil || !ip.Is4() {
		return netip.AddrPort{}, fmt.Errorf("%w %q", ErrInvalidAddress, s)
	}
	p, err := parsePort(port)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w %q", ErrInvalidAddress, s)
	}
	return netip.AddrPortFrom(ip, p), nil
}

func parsePort(s string) (uint16, error) {
	if s == "" || strings.Trim(s, "0123456789") != "" {
		return 0, strconv.ErrSyntax
	}
	p, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(p), nil
}
