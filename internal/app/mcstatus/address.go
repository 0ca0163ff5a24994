package mcstatus

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// NormalizeAddress trims and lowercases a host[:port] address and checks
// that it is something the status APIs can look up.
func NormalizeAddress(addr string) (string, error) {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if addr == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	if strings.ContainsAny(addr, " /?#@\\") {
		return "", fmt.Errorf("%w: %q contains illegal characters", ErrInvalidAddress, addr)
	}

	host := addr
	if strings.Contains(addr, ":") {
		h, p, err := net.SplitHostPort(addr)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}

		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return "", fmt.Errorf("%w: port %q out of range", ErrInvalidAddress, p)
		}
		host = h
	}

	if host == "" {
		return "", fmt.Errorf("%w: empty host", ErrInvalidAddress)
	}

	return addr, nil
}
