package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"
	toml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"go.minekube.com/veloxy/pkg/util/configutil"
	"go.minekube.com/veloxy/pkg/util/favicon"
)

// Store owns the immutable configuration snapshot plus the one
// documented mutable field (Advanced.ProxyProtocol).
type Store struct {
	cfg *ProxyConfig
}

// Config returns the immutable snapshot. Callers must not mutate the
// returned value's maps or slices.
func (s *Store) Config() *ProxyConfig { return s.cfg }

type rawConfig struct {
	Bind                          string         `koanf:"bind"`
	Motd                          string         `koanf:"motd"`
	ShowMaxPlayers                int            `koanf:"show-max-players"`
	OnlineMode                    bool           `koanf:"online-mode"`
	ForceKeyAuthentication        bool           `koanf:"force-key-authentication"`
	AnnounceForge                 bool           `koanf:"announce-forge"`
	PreventClientProxyConnections bool           `koanf:"prevent-client-proxy-connections"`
	KickExistingPlayers           bool           `koanf:"kick-existing-players"`
	EnablePlayerAddressLogging    bool           `koanf:"enable-player-address-logging"`
	PlayerInfoForwardingMode      string         `koanf:"player-info-forwarding-mode"`
	PingPassthrough               string         `koanf:"ping-passthrough"`
	ForwardingSecretFile          string         `koanf:"forwarding-secret-file"`
	ConfigVersion                 string         `koanf:"config-version"`
	Servers                       map[string]any `koanf:"servers"`
	ForcedHosts                   map[string]any `koanf:"forced-hosts"`
	Advanced                      rawAdvanced    `koanf:"advanced"`
	Query                         rawQuery       `koanf:"query"`
	Metrics                       rawMetrics     `koanf:"metrics"`
	Authentication                rawAuth        `koanf:"authentication"`
}

type rawAdvanced struct {
	CompressionThreshold                 int  `koanf:"compression-threshold"`
	CompressionLevel                     int  `koanf:"compression-level"`
	LoginRatelimit                       int  `koanf:"login-ratelimit"`
	ConnectionTimeout                    int  `koanf:"connection-timeout"`
	ReadTimeout                          int  `koanf:"read-timeout"`
	ProxyProtocol                        bool `koanf:"proxy-protocol"`
	TCPFastOpen                          bool `koanf:"tcp-fast-open"`
	BungeePluginMessageChannel           bool `koanf:"bungee-plugin-message-channel"`
	ShowPingRequests                     bool `koanf:"show-ping-requests"`
	FailoverOnUnexpectedServerDisconnect bool `koanf:"failover-on-unexpected-server-disconnect"`
	AnnounceProxyCommands                bool `koanf:"announce-proxy-commands"`
	LogCommandExecutions                 bool `koanf:"log-command-executions"`
	LogPlayerConnections                  bool `koanf:"log-player-connections"`
	AcceptTransfers                      bool `koanf:"accept-transfers"`
}

type rawQuery struct {
	Enabled     bool   `koanf:"enabled"`
	Port        int    `koanf:"port"`
	Map         string `koanf:"map"`
	ShowPlugins bool   `koanf:"show-plugins"`
}

type rawMetrics struct {
	Enabled bool `koanf:"enabled"`
}

type rawAuth struct {
	EnableLittleSkin    bool     `koanf:"enable-littleskin"`
	LittleSkinWhitelist []string `koanf:"littleskin-whitelist"`
}

// Read loads the configuration at path, running it through the
// migration chain and validation, and returns an immutable snapshot.
// If path does not exist, the embedded default configuration is
// written there first, matching a first-time startup.
func Read(path string, log logr.Logger) (*Store, error) {
	firstRun := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		firstRun = true
		if err := os.WriteFile(path, defaultConfigBytes, 0o644); err != nil {
			return nil, fmt.Errorf("config: write default config: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}

	DefaultChain.Apply(k, log)

	var raw rawConfig
	if err := k.Unmarshal("", &raw); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	cfg, err := materialize(&raw, filepath.Dir(path), firstRun)
	if err != nil {
		return nil, err
	}

	warnings, faults := cfg.Validate()
	for _, w := range warnings {
		log.Info(w.Error())
	}
	if len(faults) > 0 {
		for _, f := range faults {
			log.Error(f, "configuration validation fault")
		}
		return nil, fmt.Errorf("config: %d validation fault(s), see log", len(faults))
	}

	return &Store{cfg: cfg}, nil
}

func materialize(raw *rawConfig, configDir string, firstRun bool) (*ProxyConfig, error) {
	secret, err := resolveForwardingSecret(raw.ForwardingSecretFile, configDir, firstRun)
	if err != nil {
		return nil, err
	}

	icon, err := favicon.LoadFromWorkingDirectory()
	if err != nil {
		icon = ""
	}

	cfg := &ProxyConfig{
		Bind:                          raw.Bind,
		Motd:                          raw.Motd,
		ShowMaxPlayers:                raw.ShowMaxPlayers,
		OnlineMode:                    raw.OnlineMode,
		ForceKeyAuthentication:        raw.ForceKeyAuthentication,
		AnnounceForge:                 raw.AnnounceForge,
		PreventClientProxyConnections: raw.PreventClientProxyConnections,
		KickExistingPlayers:           raw.KickExistingPlayers,
		EnablePlayerAddressLogging:    raw.EnablePlayerAddressLogging,
		PlayerInfoForwardingMode:      ForwardingMode(strings.ToUpper(raw.PlayerInfoForwardingMode)),
		ForwardingSecret:              secret,
		ForwardingSecretFile:          raw.ForwardingSecretFile,
		PingPassthrough:               PingPassthroughMode(strings.ToUpper(raw.PingPassthrough)),
		ConfigVersion:                 raw.ConfigVersion,
		Servers:                       buildServers(raw.Servers),
		ForcedHosts:                   buildForcedHosts(raw.ForcedHosts),
		Favicon:                       icon,
		Advanced: Advanced{
			CompressionThreshold:                  raw.Advanced.CompressionThreshold,
			CompressionLevel:                      raw.Advanced.CompressionLevel,
			LoginRatelimit:                        configutil.Duration(time.Duration(raw.Advanced.LoginRatelimit) * time.Millisecond),
			ConnectionTimeout:                     configutil.Duration(time.Duration(raw.Advanced.ConnectionTimeout) * time.Millisecond),
			ReadTimeout:                           configutil.Duration(time.Duration(raw.Advanced.ReadTimeout) * time.Millisecond),
			ProxyProtocol:                         atomicBool(raw.Advanced.ProxyProtocol),
			TCPFastOpen:                           raw.Advanced.TCPFastOpen,
			BungeePluginMessageChannel:            raw.Advanced.BungeePluginMessageChannel,
			ShowPingRequests:                      raw.Advanced.ShowPingRequests,
			FailoverOnUnexpectedServerDisconnect: raw.Advanced.FailoverOnUnexpectedServerDisconnect,
			AnnounceProxyCommands:                 raw.Advanced.AnnounceProxyCommands,
			LogCommandExecutions:                  raw.Advanced.LogCommandExecutions,
			LogPlayerConnections:                  raw.Advanced.LogPlayerConnections,
			AcceptTransfers:                       raw.Advanced.AcceptTransfers,
		},
		Query: Query{
			Enabled:     raw.Query.Enabled,
			Port:        raw.Query.Port,
			Map:         raw.Query.Map,
			ShowPlugins: raw.Query.ShowPlugins,
		},
		Metrics: Metrics{Enabled: raw.Metrics.Enabled},
		Authentication: Authentication{
			EnableLittleSkin:    raw.Authentication.EnableLittleSkin,
			LittleSkinWhitelist: raw.Authentication.LittleSkinWhitelist,
		},
	}
	return cfg, nil
}

// buildServers splits the raw "servers" table into the address map
// and the attempt-connection order carried under its "try" key,
// cleaning '"' characters out of server names.
func buildServers(raw map[string]any) Servers {
	s := Servers{Entries: make(map[string]string, len(raw))}
	for name, v := range raw {
		if name == "try" {
			s.AttemptConnectionOrder = toStringSlice(v)
			continue
		}
		addr, ok := v.(string)
		if !ok {
			continue
		}
		s.Entries[CleanServerName(name)] = addr
	}
	if s.AttemptConnectionOrder == nil {
		s.AttemptConnectionOrder = []string{"lobby"}
	}
	return s
}

var lowerCaser = cases.Lower(language.Und)

// buildForcedHosts lower-cases forced-host keys and accepts either a
// single string or a list of strings as the TOML value.
func buildForcedHosts(raw map[string]any) ForcedHosts {
	fh := make(ForcedHosts, len(raw))
	for host, v := range raw {
		fh[lowerCaser.String(host)] = toStringSlice(v)
	}
	return fh
}

func toStringSlice(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
