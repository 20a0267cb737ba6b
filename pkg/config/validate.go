package config

import (
	"fmt"

	"go.minekube.com/veloxy/pkg/util/validation"
)

// Validate checks c against the invariants spec'd for the
// configuration snapshot. Faults are returned separately from
// warnings: a fault means the proxy should refuse to start; a warning
// is logged but does not block startup.
func (c *ProxyConfig) Validate() (warnings []error, faults []error) {
	e := func(m string, args ...any) { faults = append(faults, fmt.Errorf(m, args...)) }
	w := func(m string, args ...any) { warnings = append(warnings, fmt.Errorf(m, args...)) }

	if c == nil {
		e("config must not be nil")
		return
	}

	if c.Bind == "" {
		e("bind is empty")
	} else if err := validation.ValidHostPort(c.Bind); err != nil {
		e("invalid bind %q: %v", c.Bind, err)
	}

	if !c.OnlineMode {
		w("proxy is running in offline mode")
	}

	switch c.PlayerInfoForwardingMode {
	case NoneForwardingMode:
		w("player info forwarding is disabled: backend servers will see offline-mode uuids and the proxy's own ip")
	case LegacyForwardingMode, BungeeGuardForwardingMode, ModernForwardingMode:
	default:
		e("unknown player-info-forwarding-mode %q", c.PlayerInfoForwardingMode)
	}

	if c.PlayerInfoForwardingMode == ModernForwardingMode || c.PlayerInfoForwardingMode == BungeeGuardForwardingMode {
		if len(c.ForwardingSecret) == 0 {
			e("player-info-forwarding-mode %q requires a non-empty forwarding secret", c.PlayerInfoForwardingMode)
		}
	}

	if len(c.Servers.Entries) == 0 {
		w("no backend servers configured")
	}
	for name, addr := range c.Servers.Entries {
		if !validation.ValidServerName(name) {
			e("invalid server name %q: %s and length 1-%d", name,
				validation.QualifiedNameErrMsg, validation.QualifiedNameMaxLength)
		}
		if err := validation.ValidHostPort(addr); err != nil {
			e("invalid address %q for server %q: %v", addr, name, err)
		}
	}
	for _, name := range c.Servers.AttemptConnectionOrder {
		if _, ok := c.Servers.Entries[name]; !ok {
			e("try server %q must be registered under servers", name)
		}
	}
	for host, names := range c.ForcedHosts {
		for _, name := range names {
			if _, ok := c.Servers.Entries[name]; !ok {
				e("forced host %q server %q must be registered under servers", host, name)
			}
		}
	}

	if c.Advanced.CompressionLevel < -1 || c.Advanced.CompressionLevel > 9 {
		e("unsupported compression level %d: must be -1..9", c.Advanced.CompressionLevel)
	}
	if c.Advanced.CompressionThreshold < -1 {
		e("invalid compression threshold %d: must be >= -1", c.Advanced.CompressionThreshold)
	}
	if c.Advanced.LoginRatelimit < 0 {
		e("invalid login-ratelimit %s: must be >= 0", c.Advanced.LoginRatelimit)
	}

	return warnings, faults
}
