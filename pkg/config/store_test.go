package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
)

func TestRead_WritesDefaultConfigWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	store, err := Read(path, logr.Discard())
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, "0.0.0.0:25565", store.Config().Bind)
	require.Equal(t, "2.8", store.Config().ConfigVersion)
	require.True(t, store.Config().Authentication.EnableLittleSkin)
}

func TestRead_MigratesOldConfigVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	t.Setenv("VELOCITY_FORWARDING_SECRET", "test-secret")

	const toml = `
config-version = "2.6"
bind = "0.0.0.0:25577"
player-info-forwarding-mode = "legacy"

[servers]
lobby = "127.0.0.1:30066"
try = ["lobby"]
`
	require.NoError(t, os.WriteFile(path, []byte(toml), 0o644))

	store, err := Read(path, logr.Discard())
	require.NoError(t, err)
	require.Equal(t, "2.8", store.Config().ConfigVersion)
	require.True(t, store.Config().Authentication.EnableLittleSkin)
	require.Equal(t, "0.0.0.0:25577", store.Config().Bind)
}

func TestRead_CleansServerNamesAndSplitsTry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	t.Setenv("VELOCITY_FORWARDING_SECRET", "test-secret")

	const toml = `
bind = "0.0.0.0:25565"

[servers]
"lo\"bby" = "127.0.0.1:30066"
try = ["lobby"]
`
	require.NoError(t, os.WriteFile(path, []byte(toml), 0o644))

	store, err := Read(path, logr.Discard())
	require.NoError(t, err)
	_, ok := store.Config().Servers.Entries["lobby"]
	require.True(t, ok)
	require.Equal(t, []string{"lobby"}, store.Config().Servers.AttemptConnectionOrder)
}

func TestRead_LowerCasesForcedHostKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	t.Setenv("VELOCITY_FORWARDING_SECRET", "test-secret")

	const toml = `
bind = "0.0.0.0:25565"

[servers]
lobby = "127.0.0.1:30066"

[forced-hosts]
"Play.Example.COM" = "lobby"
`
	require.NoError(t, os.WriteFile(path, []byte(toml), 0o644))

	store, err := Read(path, logr.Discard())
	require.NoError(t, err)
	_, ok := store.Config().ForcedHosts["play.example.com"]
	require.True(t, ok)
}

func TestRead_ForwardingSecretFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	t.Setenv("VELOCITY_FORWARDING_SECRET", "env-secret")

	store, err := Read(path, logr.Discard())
	require.NoError(t, err)
	require.Equal(t, "env-secret", string(store.Config().ForwardingSecret))
}
