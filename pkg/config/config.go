// Package config loads, migrates, validates and freezes the proxy's
// on-disk configuration.
package config

import (
	"go.uber.org/atomic"

	"go.minekube.com/veloxy/pkg/util/configutil"
	"go.minekube.com/veloxy/pkg/util/favicon"
)

// ForwardingMode is a player info forwarding mode.
type ForwardingMode string

const (
	NoneForwardingMode       ForwardingMode = "NONE"
	LegacyForwardingMode     ForwardingMode = "LEGACY"
	BungeeGuardForwardingMode ForwardingMode = "BUNGEEGUARD"
	ModernForwardingMode     ForwardingMode = "MODERN"
)

// PingPassthroughMode controls how server list pings are handled.
type PingPassthroughMode string

const (
	DisabledPingPassthroughMode   PingPassthroughMode = "DISABLED"
	ModsPingPassthroughMode       PingPassthroughMode = "MODS"
	DescriptionPingPassthroughMode PingPassthroughMode = "DESCRIPTION"
	AllPingPassthroughMode        PingPassthroughMode = "ALL"
)

// ProxyConfig is the immutable snapshot of the proxy's configuration,
// produced once at boot by Read.
type ProxyConfig struct {
	Bind string

	Motd                          string
	ShowMaxPlayers                int
	OnlineMode                    bool
	ForceKeyAuthentication        bool
	AnnounceForge                 bool
	PreventClientProxyConnections bool
	KickExistingPlayers           bool
	EnablePlayerAddressLogging    bool

	PlayerInfoForwardingMode ForwardingMode
	ForwardingSecret         []byte
	ForwardingSecretFile     string

	PingPassthrough PingPassthroughMode

	ConfigVersion string

	Servers        Servers
	ForcedHosts    ForcedHosts
	Advanced       Advanced
	Query          Query
	Metrics        Metrics
	Authentication Authentication

	Favicon favicon.Favicon
}

// Servers is the backend server registry.
type Servers struct {
	// Entries maps a server name to its address. The "try" key is never
	// stored here; it seeds AttemptConnectionOrder instead.
	Entries                 map[string]string
	AttemptConnectionOrder []string
}

// ForcedHosts maps a lower-cased virtual host to an ordered list of
// server names to try for that host.
type ForcedHosts map[string][]string

// Advanced holds the tunables Velocity groups under the "advanced" table.
type Advanced struct {
	CompressionThreshold int
	CompressionLevel     int

	LoginRatelimit    configutil.Duration
	ConnectionTimeout configutil.Duration
	ReadTimeout       configutil.Duration

	// ProxyProtocol is the one field on the frozen snapshot the spec
	// documents as mutable after boot (e.g. toggled by an admin
	// command), so it is backed by an atomic.Bool rather than a plain
	// bool to stay safe against torn reads.
	ProxyProtocol *atomic.Bool

	TCPFastOpen                           bool
	BungeePluginMessageChannel            bool
	ShowPingRequests                      bool
	FailoverOnUnexpectedServerDisconnect bool
	AnnounceProxyCommands                 bool
	LogCommandExecutions                  bool
	LogPlayerConnections                  bool
	AcceptTransfers                       bool
}

// Query holds the GameSpy4 query protocol settings.
type Query struct {
	Enabled     bool
	Port        int
	Map         string
	ShowPlugins bool
}

// Metrics holds the metrics-reporting toggle. Metrics export itself is
// out of scope; this only carries the config-level intent.
type Metrics struct {
	Enabled bool
}

// Authentication holds the flags the LittleSkin migration adds on top
// of the base schema.
type Authentication struct {
	EnableLittleSkin      bool
	LittleSkinWhitelist   []string
}
