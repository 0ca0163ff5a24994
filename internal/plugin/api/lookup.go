package api

import (
	"errors"

	"github.com/gertd/wild"
)

var ErrAddressNotAllowed = errors.New("address not allowed")

type lookupConfig struct {
	// AllowedAddresses are wildcard patterns. An empty list allows all.
	AllowedAddresses []string `mapstructure:"allowedAddresses"`
	DeniedAddresses  []string `mapstructure:"deniedAddresses"`
}

// check reports ErrAddressNotAllowed if addr matches a denied pattern or
// does not match any allowed pattern. Deny wins over allow.
func (cfg lookupConfig) check(addr string) error {
	if matchAny(cfg.DeniedAddresses, addr) {
		return ErrAddressNotAllowed
	}

	if len(cfg.AllowedAddresses) > 0 && !matchAny(cfg.AllowedAddresses, addr) {
		return ErrAddressNotAllowed
	}

	return nil
}

func matchAny(patterns []string, s string) bool {
	for _, pattern := range patterns {
		if wild.Match(pattern, s, true) {
			return true
		}
	}
	return false
}
