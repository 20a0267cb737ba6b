package config

import (
	"github.com/go-logr/logr"
	"github.com/knadh/koanf/v2"
)

// Migration evolves a config tree from one schema version to the
// next. ShouldMigrate must be pure and is typically a comparison
// against the config-version key; Migrate mutates k in place and is
// responsible for bumping config-version to its own target.
type Migration interface {
	ShouldMigrate(k *koanf.Koanf) bool
	Migrate(k *koanf.Koanf, log logr.Logger)
}

// MigrationChain is an ordered, fixed list of migrations. Engineers
// add migrations by appending to DefaultChain; reordering or removing
// an entry would change the meaning of already-migrated config files.
type MigrationChain []Migration

// DefaultChain is the registered chain of schema migrations, in order.
var DefaultChain = MigrationChain{
	forwardingMigration{},
	keyAuthenticationMigration{},
	motdMigration{},
	transferIntegrationMigration{},
	littleSkinAuthenticationMigration{},
}

// Apply tries every migration in order, running each whose
// ShouldMigrate predicate holds. Applying the chain twice is a no-op
// the second time: once every migration's target version has been
// reached, ShouldMigrate is false for all of them.
func (chain MigrationChain) Apply(k *koanf.Koanf, log logr.Logger) {
	for _, m := range chain {
		if m.ShouldMigrate(k) {
			m.Migrate(k, log)
		}
	}
}
