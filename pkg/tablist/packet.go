package tablist

import (
	"go.minekube.com/common/minecraft/component"
	"go.minekube.com/veloxy/pkg/chatsession"
	"go.minekube.com/veloxy/pkg/profile"
	"go.minekube.com/veloxy/pkg/uuid"
)

// UpsertAction is one bit of the UpsertPlayerInfo action set.
type UpsertAction int

const (
	AddPlayerAction UpsertAction = iota
	InitializeChatAction
	UpdateGameModeAction
	UpdateListedAction
	UpdateLatencyAction
	UpdateDisplayNameAction
	// UpdateListOrderAction is only meaningful on protocol >= 1.21.2 (768).
	UpdateListOrderAction
	// UpdateHatAction is only meaningful on protocol >= 1.21.4 (769).
	UpdateHatAction
)

func (a UpsertAction) String() string {
	switch a {
	case AddPlayerAction:
		return "ADD_PLAYER"
	case InitializeChatAction:
		return "INITIALIZE_CHAT"
	case UpdateGameModeAction:
		return "UPDATE_GAME_MODE"
	case UpdateListedAction:
		return "UPDATE_LISTED"
	case UpdateLatencyAction:
		return "UPDATE_LATENCY"
	case UpdateDisplayNameAction:
		return "UPDATE_DISPLAY_NAME"
	case UpdateListOrderAction:
		return "UPDATE_LIST_ORDER"
	case UpdateHatAction:
		return "UPDATE_HAT"
	default:
		return "UNKNOWN"
	}
}

// ContainsAction reports whether action is present in actions.
func ContainsAction(actions []UpsertAction, action UpsertAction) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// Upsert is the UpsertPlayerInfo packet: an action set plus one delta
// per affected profile. Only fields whose action is present in
// ActionSet are meaningful for a given entry.
type Upsert struct {
	ActionSet []UpsertAction
	Entries   []*UpsertEntry
}

// UpsertEntry is one per-profile delta inside an Upsert packet.
type UpsertEntry struct {
	ProfileID   uuid.UUID
	Profile     *profile.GameProfile // meaningful iff AddPlayerAction is set
	DisplayName component.Component  // meaningful iff UpdateDisplayNameAction is set
	Latency     int                  // milliseconds; meaningful iff UpdateLatencyAction is set
	GameMode    int                  // meaningful iff UpdateGameModeAction is set
	Listed      bool                 // meaningful iff UpdateListedAction is set
	ListOrder   int                  // meaningful iff UpdateListOrderAction is set
	ChatSession *chatsession.ChatSession
	ShowHat     bool
}

// Remove is the RemovePlayerInfo packet.
type Remove struct {
	ProfilesToRemove []uuid.UUID
}

// HeaderAndFooter is the PlayerListHeaderAndFooter packet.
type HeaderAndFooter struct {
	Header component.Component
	Footer component.Component
}
