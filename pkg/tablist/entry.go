package tablist

import (
	"sync"
	"time"

	"go.minekube.com/common/minecraft/component"
	"go.minekube.com/veloxy/pkg/chatsession"
	"go.minekube.com/veloxy/pkg/profile"
	"go.minekube.com/veloxy/pkg/protoversion"
)

// TabListEntry is the public shape an entry must satisfy to be handed
// to Engine.AddEntry. *Entry implements it directly; any other
// implementation is accepted too, but its fields are copied into a
// fresh *Entry owned by the receiving engine rather than used in
// place, since the engine only ever operates on its own concrete
// representation.
type TabListEntry interface {
	Profile() profile.GameProfile
	DisplayName() component.Component
	Latency() time.Duration
	GameMode() int
	Listed() bool
	ListOrder() int
	ChatSession() *chatsession.ChatSession
}

// Entry is one row of one player's tab list.
type Entry struct {
	// engine is a non-owning back-reference used only to route
	// publishing mutators to the packet sink; the engine owns the
	// entries map, not the other way around.
	engine *Engine

	mu          sync.Mutex
	profile     profile.GameProfile
	displayName component.Component
	latency     time.Duration
	gameMode    int
	listed      bool
	listOrder   int
	chatSession *chatsession.ChatSession
	showHat     bool
}

var _ TabListEntry = (*Entry)(nil)

// TabList returns the engine this entry belongs to.
func (e *Entry) TabList() *Engine { return e.engine }

func (e *Entry) Profile() profile.GameProfile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile
}

func (e *Entry) DisplayName() component.Component {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.displayName
}

// SetDisplayName updates the display name and publishes a single-action
// UPDATE_DISPLAY_NAME delta.
func (e *Entry) SetDisplayName(name component.Component) error {
	e.mu.Lock()
	e.displayName = name
	id := e.profile.Id
	e.mu.Unlock()
	return e.engine.emitSingleAction(UpdateDisplayNameAction, &UpsertEntry{
		ProfileID:   id,
		DisplayName: name,
	})
}

func (e *Entry) Latency() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latency
}

// SetLatency updates the latency and publishes a single-action
// UPDATE_LATENCY delta.
func (e *Entry) SetLatency(latency time.Duration) error {
	e.mu.Lock()
	e.latency = latency
	id := e.profile.Id
	e.mu.Unlock()
	return e.engine.emitSingleAction(UpdateLatencyAction, &UpsertEntry{
		ProfileID: id,
		Latency:   int(latency.Milliseconds()),
	})
}

func (e *Entry) GameMode() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gameMode
}

// SetGameMode updates the game mode and publishes a single-action
// UPDATE_GAME_MODE delta.
func (e *Entry) SetGameMode(gameMode int) error {
	e.mu.Lock()
	e.gameMode = gameMode
	id := e.profile.Id
	e.mu.Unlock()
	return e.engine.emitSingleAction(UpdateGameModeAction, &UpsertEntry{
		ProfileID: id,
		GameMode:  gameMode,
	})
}

func (e *Entry) Listed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listed
}

// SetListed updates the listed flag and publishes a single-action
// UPDATE_LISTED delta.
func (e *Entry) SetListed(listed bool) error {
	e.mu.Lock()
	e.listed = listed
	id := e.profile.Id
	e.mu.Unlock()
	return e.engine.emitSingleAction(UpdateListedAction, &UpsertEntry{
		ProfileID: id,
		Listed:    listed,
	})
}

func (e *Entry) ListOrder() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listOrder
}

// SetListOrder updates the list order field unconditionally but only
// publishes the UPDATE_LIST_ORDER delta on protocol >= 1.21.2.
func (e *Entry) SetListOrder(order int) error {
	e.mu.Lock()
	e.listOrder = order
	id := e.profile.Id
	e.mu.Unlock()
	if !e.engine.protocolVersion().GreaterEqual(protoversion.Minecraft_1_21_2) {
		return nil
	}
	return e.engine.emitSingleAction(UpdateListOrderAction, &UpsertEntry{
		ProfileID: id,
		ListOrder: order,
	})
}

func (e *Entry) ChatSession() *chatsession.ChatSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chatSession
}

func (e *Entry) ShowHat() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.showHat
}

// SetShowHat updates the cape/hat visibility flag and publishes a
// single-action UPDATE_HAT delta, gated to protocol >= 1.21.4 — one
// version newer than the UPDATE_LIST_ORDER gate.
func (e *Entry) SetShowHat(showHat bool) error {
	e.mu.Lock()
	e.showHat = showHat
	id := e.profile.Id
	e.mu.Unlock()
	if !e.engine.protocolVersion().GreaterEqual(protoversion.Minecraft_1_21_4) {
		return nil
	}
	return e.engine.emitSingleAction(UpdateHatAction, &UpsertEntry{
		ProfileID: id,
		ShowHat:   showHat,
	})
}
