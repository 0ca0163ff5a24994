package api

import (
	"errors"
	"net"

	"github.com/pires/go-proxyproto"
)

var (
	ErrUpstreamNotTrusted = errors.New("upstream not trusted")
	ErrNoTrustedCIDRs     = errors.New("no trusted CIDRs")
)

// newProxyProtocolListener requires a PROXY protocol header from trusted
// upstreams and rejects all other connections.
func newProxyProtocolListener(l net.Listener, trustedCIDRs []string) (net.Listener, error) {
	if len(trustedCIDRs) == 0 {
		return nil, ErrNoTrustedCIDRs
	}

	cidrs := make([]*net.IPNet, len(trustedCIDRs))
	for i, trustedCIDR := range trustedCIDRs {
		_, cidr, err := net.ParseCIDR(trustedCIDR)
		if err != nil {
			return nil, err
		}
		cidrs[i] = cidr
	}

	return &proxyproto.Listener{
		Listener: l,
		Policy: func(upstream net.Addr) (proxyproto.Policy, error) {
			tcpAddr, ok := upstream.(*net.TCPAddr)
			if !ok {
				return proxyproto.REJECT, errors.New("not a tcp conn")
			}

			for _, cidr := range cidrs {
				if cidr.Contains(tcpAddr.IP) {
					return proxyproto.REQUIRE, nil
				}
			}

			return proxyproto.REJECT, ErrUpstreamNotTrusted
		},
	}, nil
}
