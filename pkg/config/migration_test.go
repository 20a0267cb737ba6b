package config

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/require"
)

func newKoanf(t *testing.T, seed map[string]any) *koanf.Koanf {
	t.Helper()
	k := koanf.New(".")
	require.NoError(t, k.Load(confmap.Provider(seed, "."), nil))
	return k
}

// Applying the chain to a config already at the LittleSkin target
// adds nothing further: the chain is idempotent once every migration
// has fired.
func TestMigrationChain_Monotonic(t *testing.T) {
	k := newKoanf(t, map[string]any{"config-version": "2.8"})
	DefaultChain.Apply(k, logr.Discard())
	require.Equal(t, "2.8", k.String("config-version"))
	require.False(t, k.Exists("authentication.enable-littleskin"))
}

// Applying the chain twice to the same starting tree yields the same
// result as applying it once.
func TestMigrationChain_ApplyTwiceIsApplyOnce(t *testing.T) {
	seed := map[string]any{"config-version": "2.0"}
	k1 := newKoanf(t, seed)
	DefaultChain.Apply(k1, logr.Discard())

	k2 := newKoanf(t, seed)
	DefaultChain.Apply(k2, logr.Discard())
	DefaultChain.Apply(k2, logr.Discard())

	require.Equal(t, k1.Get("config-version"), k2.Get("config-version"))
	require.Equal(t, k1.Get("authentication.enable-littleskin"), k2.Get("authentication.enable-littleskin"))
}

// A config at version 2.7 with no LittleSkin key runs only the
// LittleSkin migration and lands on 2.8 with the key present.
func TestLittleSkinMigration_Scenario(t *testing.T) {
	k := newKoanf(t, map[string]any{"config-version": "2.7"})
	DefaultChain.Apply(k, logr.Discard())

	require.Equal(t, "2.8", k.String("config-version"))
	require.True(t, k.Bool("authentication.enable-littleskin"))
}

// A config with no config-version key at all runs the full chain from
// the schema baseline.
func TestMigrationChain_FromScratch(t *testing.T) {
	k := newKoanf(t, map[string]any{})
	DefaultChain.Apply(k, logr.Discard())

	require.Equal(t, "2.8", k.String("config-version"))
	require.True(t, k.Bool("force-key-authentication"))
	require.True(t, k.Bool("authentication.enable-littleskin"))
}

func TestForwardingMigration_NormalizesLegacySpelling(t *testing.T) {
	k := newKoanf(t, map[string]any{
		"config-version":              "2.0",
		"player-info-forwarding-mode": "velocity",
	})
	DefaultChain.Apply(k, logr.Discard())
	require.Equal(t, string(ModernForwardingMode), k.String("player-info-forwarding-mode"))
}
