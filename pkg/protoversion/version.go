// Package protoversion identifies Minecraft Java wire-protocol revisions.
package protoversion

import (
	"fmt"
)

// Version is a named Minecraft Java protocol revision.
type Version struct {
	Protocol int
	Name     string
}

func (v *Version) String() string {
	if v == nil {
		return "Unknown"
	}
	return fmt.Sprintf("%s(%d)", v.Name, v.Protocol)
}

// GreaterEqual reports whether v is at least as new as then.
func (v *Version) GreaterEqual(then *Version) bool {
	return v.Protocol >= then.Protocol
}

// Named protocol revisions relevant to the tab list and configuration
// subsystems. This module does not need the full version table; only the ones
// that appear as gates in the wire protocol are named here.
var (
	Unknown          = &Version{-1, "Unknown"}
	Minecraft_1_8    = &Version{47, "1.8"}
	Minecraft_1_19   = &Version{759, "1.19"}
	Minecraft_1_19_3 = &Version{761, "1.19.3"}
	Minecraft_1_20_2 = &Version{764, "1.20.2"}
	Minecraft_1_21_2 = &Version{768, "1.21.2"}
	Minecraft_1_21_4 = &Version{769, "1.21.4"}
)
