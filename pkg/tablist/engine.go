package tablist

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"go.minekube.com/common/minecraft/component"
	"go.minekube.com/veloxy/pkg/chatsession"
	"go.minekube.com/veloxy/pkg/profile"
	"go.minekube.com/veloxy/pkg/protoversion"
	"go.minekube.com/veloxy/pkg/uuid"
)

// ErrInvalidEntry is returned by AddEntry when the entry's profile id is nil.
var ErrInvalidEntry = errors.New("tablist: entry must have a non-nil profile id")

// Engine maintains one viewer's server-side mirror of their tab list
// and turns mutations into the minimal set of outbound packets needed
// to keep the client in sync.
type Engine struct {
	viewer Viewer
	logger logr.Logger

	mu      sync.RWMutex
	entries map[uuid.UUID]*Entry
}

// New creates an Engine that emits packets to viewer.
func New(viewer Viewer, logger logr.Logger) *Engine {
	return &Engine{
		viewer:  viewer,
		logger:  logger,
		entries: make(map[uuid.UUID]*Entry),
	}
}

func (e *Engine) protocolVersion() *protoversion.Version {
	if e.viewer == nil {
		return protoversion.Unknown
	}
	return e.viewer.Protocol()
}

// ContainsEntry reports whether id is currently tracked.
func (e *Engine) ContainsEntry(id uuid.UUID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.entries[id]
	return ok
}

// GetEntry returns the tracked entry for id, if any.
func (e *Engine) GetEntry(id uuid.UUID) (*Entry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.entries[id]
	return entry, ok
}

// GetEntries returns a snapshot of all currently tracked entries.
func (e *Engine) GetEntries() []*Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Entry, 0, len(e.entries))
	for _, entry := range e.entries {
		out = append(out, entry)
	}
	return out
}

// BuildEntry constructs a new, unattached Entry. It is not visible to
// AddEntry's merge logic until passed to AddEntry.
func (e *Engine) BuildEntry(
	prof profile.GameProfile,
	displayName component.Component,
	latency time.Duration,
	gameMode int,
	session *chatsession.ChatSession,
	listed bool,
	listOrder int,
) *Entry {
	return &Entry{
		engine:      e,
		profile:     prof,
		displayName: displayName,
		latency:     latency,
		gameMode:    gameMode,
		chatSession: session,
		listed:      listed,
		listOrder:   listOrder,
	}
}

// AddEntry merges entry into the tab list, computing the minimal
// action set and delta needed to bring the viewer's client in sync,
// and emits the resulting Upsert packet. Adding an entry that is
// already present and identical to the stored one is a no-op that
// emits nothing.
func (e *Engine) AddEntry(entry TabListEntry) error {
	prof := entry.Profile()
	if prof.Id == uuid.Nil {
		return ErrInvalidEntry
	}
	id := prof.Id

	e.mu.Lock()
	stored, existed := e.entries[id]
	if !existed {
		stored = &Entry{engine: e}
		// Lock the new entry before publishing it so a concurrent
		// AddEntry for the same id cannot diff against its zero fields.
		stored.mu.Lock()
		e.entries[id] = stored
	}
	e.mu.Unlock()

	if existed {
		stored.mu.Lock()
	}
	var actions []UpsertAction
	delta := &UpsertEntry{ProfileID: id}

	displayName := entry.DisplayName()
	latency := entry.Latency()
	gameMode := entry.GameMode()
	listed := entry.Listed()
	listOrder := entry.ListOrder()
	session := entry.ChatSession()

	listOrderGated := e.protocolVersion().GreaterEqual(protoversion.Minecraft_1_21_2)

	if !existed {
		actions = append(actions, AddPlayerAction, UpdateLatencyAction, UpdateListedAction)
		stored.profile = prof
		stored.latency = latency
		stored.listed = listed
		p := prof
		delta.Profile = &p
		delta.Latency = int(latency.Milliseconds())
		delta.Listed = listed

		if displayName != nil {
			actions = append(actions, UpdateDisplayNameAction)
			stored.displayName = displayName
			delta.DisplayName = displayName
		}
		if session != nil {
			actions = append(actions, InitializeChatAction)
			stored.chatSession = session
			delta.ChatSession = session
		}
		stored.gameMode = gameMode
		if gameModeSet(gameMode) {
			actions = append(actions, UpdateGameModeAction)
			delta.GameMode = gameMode
		}
		stored.listOrder = listOrder
		if listOrder != 0 && listOrderGated {
			actions = append(actions, UpdateListOrderAction)
			delta.ListOrder = listOrder
		}
	} else {
		if !sameDisplayName(stored.displayName, displayName) {
			actions = append(actions, UpdateDisplayNameAction)
			stored.displayName = displayName
			delta.DisplayName = displayName
		}
		if stored.latency != latency {
			actions = append(actions, UpdateLatencyAction)
			stored.latency = latency
			delta.Latency = int(latency.Milliseconds())
		}
		if stored.gameMode != gameMode {
			actions = append(actions, UpdateGameModeAction)
			stored.gameMode = gameMode
			delta.GameMode = gameMode
		}
		if stored.listed != listed {
			actions = append(actions, UpdateListedAction)
			stored.listed = listed
			delta.Listed = listed
		}
		if listOrderGated && stored.listOrder != listOrder {
			actions = append(actions, UpdateListOrderAction)
			stored.listOrder = listOrder
			delta.ListOrder = listOrder
		} else {
			stored.listOrder = listOrder
		}
		if !chatsession.Equal(stored.chatSession, session) {
			stored.chatSession = session
			if session != nil {
				actions = append(actions, InitializeChatAction)
				delta.ChatSession = session
			}
		}
	}
	stored.mu.Unlock()

	if len(actions) == 0 {
		return nil
	}
	return e.viewer.WritePacket(&Upsert{
		ActionSet: actions,
		Entries:   []*UpsertEntry{delta},
	})
}

// sameDisplayName compares by value, not identity: two separately
// built components with equal contents must not trigger a spurious
// UPDATE_DISPLAY_NAME emission.
func sameDisplayName(a, b component.Component) bool {
	return reflect.DeepEqual(a, b)
}

// RemoveEntry removes id from the tab list and emits a Remove packet.
// It returns the entry that was removed, or nil if id was not tracked.
func (e *Engine) RemoveEntry(id uuid.UUID) (*Entry, error) {
	e.mu.Lock()
	removed, ok := e.entries[id]
	if ok {
		delete(e.entries, id)
	}
	e.mu.Unlock()

	if err := e.viewer.WritePacket(&Remove{ProfilesToRemove: []uuid.UUID{id}}); err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return removed, nil
}

// ClearAll removes every tracked entry and queues a single Remove
// packet for all of them via the viewer's delayed write path.
func (e *Engine) ClearAll() error {
	ids := e.clearAllLocked()
	if len(ids) == 0 {
		return nil
	}
	return e.viewer.DelayedWritePacket(&Remove{ProfilesToRemove: ids})
}

// ClearAllSilent removes every tracked entry without emitting any packet.
func (e *Engine) ClearAllSilent() {
	e.clearAllLocked()
}

func (e *Engine) clearAllLocked() []uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(e.entries))
	for id := range e.entries {
		ids = append(ids, id)
	}
	e.entries = make(map[uuid.UUID]*Entry)
	return ids
}

// SetHeaderAndFooter sends the tab list header and footer. Both must
// be non-nil; passing a nil component is a programmer error.
func (e *Engine) SetHeaderAndFooter(header, footer component.Component) error {
	if header == nil || footer == nil {
		panic("tablist: header and footer must not be nil")
	}
	return e.viewer.WritePacket(&HeaderAndFooter{Header: header, Footer: footer})
}

// ClearHeaderAndFooter resets the header and footer to empty text.
func (e *Engine) ClearHeaderAndFooter() error {
	return e.SetHeaderAndFooter(&component.Text{}, &component.Text{})
}

// emitSingleAction is called by Entry's publishing setters to push a
// single-field delta outside of the entry's own lock.
func (e *Engine) emitSingleAction(action UpsertAction, delta *UpsertEntry) error {
	return e.viewer.WritePacket(&Upsert{
		ActionSet: []UpsertAction{action},
		Entries:   []*UpsertEntry{delta},
	})
}

// ProcessUpdate applies an inbound Upsert packet to this engine's
// mirror of the tab list, as would happen on a client-bound connection
// relaying the backend server's own tab list packets.
func (e *Engine) ProcessUpdate(pkt *Upsert) error {
	for _, delta := range pkt.Entries {
		if err := e.processUpdateEntry(pkt.ActionSet, delta); err != nil {
			return fmt.Errorf("process upsert for %s: %w", delta.ProfileID, err)
		}
	}
	return nil
}

func (e *Engine) processUpdateEntry(actions []UpsertAction, delta *UpsertEntry) error {
	if delta.ProfileID == uuid.Nil {
		return errors.New("tablist: profile id must not be nil")
	}
	id := delta.ProfileID

	e.mu.Lock()
	stored, existed := e.entries[id]
	if !existed {
		if !ContainsAction(actions, AddPlayerAction) {
			e.mu.Unlock()
			e.logger.V(1).Info("dropping tab list update received before ADD_PLAYER", "profileId", id)
			return nil
		}
		stored = &Entry{engine: e, gameMode: delta.GameMode}
		if delta.Profile != nil {
			stored.profile = *delta.Profile
		} else {
			stored.profile = profile.GameProfile{Id: id}
		}
		e.entries[id] = stored
	}
	e.mu.Unlock()

	stored.mu.Lock()
	defer stored.mu.Unlock()
	if ContainsAction(actions, UpdateGameModeAction) {
		stored.gameMode = delta.GameMode
	}
	if ContainsAction(actions, UpdateLatencyAction) {
		stored.latency = time.Duration(delta.Latency) * time.Millisecond
	}
	if ContainsAction(actions, UpdateDisplayNameAction) {
		stored.displayName = delta.DisplayName
	}
	if ContainsAction(actions, InitializeChatAction) {
		stored.chatSession = delta.ChatSession
	}
	if ContainsAction(actions, UpdateListedAction) {
		stored.listed = delta.Listed
	}
	if ContainsAction(actions, UpdateListOrderAction) {
		stored.listOrder = delta.ListOrder
	}
	if ContainsAction(actions, UpdateHatAction) {
		stored.showHat = delta.ShowHat
	}
	return nil
}

// ProcessRemove applies an inbound Remove packet to this engine's mirror.
func (e *Engine) ProcessRemove(pkt *Remove) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range pkt.ProfilesToRemove {
		delete(e.entries, id)
	}
}
