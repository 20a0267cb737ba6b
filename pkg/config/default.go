package config

import (
	_ "embed"

	"go.uber.org/atomic"
)

//go:embed default.toml
var defaultConfigBytes []byte

func atomicBool(v bool) *atomic.Bool {
	return atomic.NewBool(v)
}
