package config

import (
	"strconv"

	"github.com/go-logr/logr"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

const configVersionKey = "config-version"

// configVersionOf parses the config-version key as a float so
// migrations can compare against their target version. A missing or
// unparsable key is treated as version 1.0, the schema baseline,
// which is below every migration's target.
func configVersionOf(k *koanf.Koanf) float64 {
	s := k.String(configVersionKey)
	if s == "" {
		return 1.0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1.0
	}
	return v
}

// set merges a single dotted key/value pair into k. Koanf trees are
// built by merging providers rather than mutated field-by-field, so a
// migration "sets" a key by merging a one-key confmap on top of the
// existing tree.
func set(k *koanf.Koanf, key string, val any) {
	_ = k.Load(confmap.Provider(map[string]any{key: val}, "."), nil)
}

func setConfigVersion(k *koanf.Koanf, version string) {
	set(k, configVersionKey, version)
}

// forwardingMigration renames the legacy "velocity" forwarding mode
// spelling to "MODERN" and fills in the default mode when absent,
// grounded on Velocity's historical rename of its own forwarding mode.
type forwardingMigration struct{}

func (forwardingMigration) ShouldMigrate(k *koanf.Koanf) bool { return configVersionOf(k) < 2.4 }

func (forwardingMigration) Migrate(k *koanf.Koanf, log logr.Logger) {
	mode := k.String("player-info-forwarding-mode")
	switch mode {
	case "velocity", "Velocity":
		set(k, "player-info-forwarding-mode", string(ModernForwardingMode))
		log.Info("migrated legacy forwarding mode spelling", "from", mode, "to", ModernForwardingMode)
	case "":
		set(k, "player-info-forwarding-mode", string(LegacyForwardingMode))
	}
	setConfigVersion(k, "2.4")
}

// keyAuthenticationMigration adds the force-key-authentication flag
// that became mandatory once the proxy started enforcing signed chat,
// grounded on KeyAuthenticationMigration.java.
type keyAuthenticationMigration struct{}

func (keyAuthenticationMigration) ShouldMigrate(k *koanf.Koanf) bool { return configVersionOf(k) < 2.5 }

func (keyAuthenticationMigration) Migrate(k *koanf.Koanf, log logr.Logger) {
	if !k.Exists("force-key-authentication") {
		set(k, "force-key-authentication", true)
	}
	setConfigVersion(k, "2.5")
}

// motdMigration fills in the MiniMessage-formatted default MOTD when
// absent, grounded on Velocity's switch away from the legacy "&"-code
// MOTD format.
type motdMigration struct{}

func (motdMigration) ShouldMigrate(k *koanf.Koanf) bool { return configVersionOf(k) < 2.6 }

func (motdMigration) Migrate(k *koanf.Koanf, log logr.Logger) {
	if k.String("motd") == "" {
		set(k, "motd", "<#09add3>A Velocity Server")
	}
	setConfigVersion(k, "2.6")
}

// transferIntegrationMigration adds the advanced.accept-transfers flag
// introduced alongside the 1.20.5 transfer packet, grounded on
// TransferIntegrationMigration.java.
type transferIntegrationMigration struct{}

func (transferIntegrationMigration) ShouldMigrate(k *koanf.Koanf) bool {
	return configVersionOf(k) < 2.7
}

func (transferIntegrationMigration) Migrate(k *koanf.Koanf, log logr.Logger) {
	if !k.Exists("advanced.accept-transfers") {
		set(k, "advanced.accept-transfers", false)
	}
	setConfigVersion(k, "2.7")
}

// littleSkinAuthenticationMigration adds support for the LittleSkin
// third-party authentication service, grounded on
// LittleSkinAuthenticationMigration.java, targeting schema version 2.8.
type littleSkinAuthenticationMigration struct{}

func (littleSkinAuthenticationMigration) ShouldMigrate(k *koanf.Koanf) bool {
	return configVersionOf(k) < 2.8
}

func (littleSkinAuthenticationMigration) Migrate(k *koanf.Koanf, log logr.Logger) {
	if !k.Exists("authentication.enable-littleskin") {
		set(k, "authentication.enable-littleskin", true)
	}
	if !k.Exists("authentication.littleskin-whitelist") {
		set(k, "authentication.littleskin-whitelist", []string{})
	}
	setConfigVersion(k, "2.8")
}
