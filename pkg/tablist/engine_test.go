package tablist

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
	"go.minekube.com/common/minecraft/component"
	"go.minekube.com/veloxy/pkg/profile"
	"go.minekube.com/veloxy/pkg/protoversion"
	"go.minekube.com/veloxy/pkg/uuid"
)

type fakeViewer struct {
	mu       sync.Mutex
	protocol *protoversion.Version
	written  []any
	delayed  []any
}

func newFakeViewer(protocol *protoversion.Version) *fakeViewer {
	return &fakeViewer{protocol: protocol}
}

func (f *fakeViewer) Protocol() *protoversion.Version { return f.protocol }

func (f *fakeViewer) WritePacket(p any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, p)
	return nil
}

func (f *fakeViewer) DelayedWritePacket(p any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delayed = append(f.delayed, p)
	return nil
}

func (f *fakeViewer) last() *Upsert {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.written) == 0 {
		return nil
	}
	u, _ := f.written[len(f.written)-1].(*Upsert)
	return u
}

func newEngine(protocol *protoversion.Version) (*Engine, *fakeViewer) {
	v := newFakeViewer(protocol)
	return New(v, logr.Discard()), v
}

func newProfile() profile.GameProfile {
	return profile.GameProfile{Id: uuid.New(), Name: "Notch"}
}

// AddEntry on an unseen profile emits ADD_PLAYER, UPDATE_LATENCY and
// UPDATE_LISTED unconditionally.
func TestAddEntry_NewEntry(t *testing.T) {
	e, v := newEngine(protoversion.Minecraft_1_20_2)
	prof := newProfile()
	entry := e.BuildEntry(prof, nil, 50*time.Millisecond, GameModeSurvival, nil, true, 0)

	require.NoError(t, e.AddEntry(entry))

	u := v.last()
	require.NotNil(t, u)
	require.True(t, ContainsAction(u.ActionSet, AddPlayerAction))
	require.True(t, ContainsAction(u.ActionSet, UpdateLatencyAction))
	require.True(t, ContainsAction(u.ActionSet, UpdateListedAction))
	require.True(t, ContainsAction(u.ActionSet, UpdateGameModeAction))
	require.False(t, ContainsAction(u.ActionSet, UpdateDisplayNameAction))
	require.True(t, e.ContainsEntry(prof.Id))
}

// Re-adding an identical entry is idempotent: it must not emit a packet.
func TestAddEntry_Idempotent(t *testing.T) {
	e, v := newEngine(protoversion.Minecraft_1_20_2)
	prof := newProfile()
	entry := e.BuildEntry(prof, nil, 50*time.Millisecond, GameModeSurvival, nil, true, 0)

	require.NoError(t, e.AddEntry(entry))
	before := len(v.written)
	require.NoError(t, e.AddEntry(entry))
	require.Equal(t, before, len(v.written))
}

// Changing a single field after the initial add emits exactly one
// action for that field.
func TestAddEntry_SingleDelta(t *testing.T) {
	e, v := newEngine(protoversion.Minecraft_1_20_2)
	prof := newProfile()
	entry := e.BuildEntry(prof, nil, 50*time.Millisecond, GameModeSurvival, nil, true, 0)
	require.NoError(t, e.AddEntry(entry))

	updated := e.BuildEntry(prof, nil, 250*time.Millisecond, GameModeSurvival, nil, true, 0)
	require.NoError(t, e.AddEntry(updated))

	u := v.last()
	require.NotNil(t, u)
	require.Equal(t, []UpsertAction{UpdateLatencyAction}, u.ActionSet)
	require.Equal(t, 250, u.Entries[0].Latency)
}

// UPDATE_LIST_ORDER is only emitted on protocol >= 1.21.2, even when
// the list order field itself is non-zero.
func TestAddEntry_ListOrderGatedByProtocol(t *testing.T) {
	e, v := newEngine(protoversion.Minecraft_1_20_2)
	prof := newProfile()
	entry := e.BuildEntry(prof, nil, 0, GameModeSurvival, nil, true, 5)
	require.NoError(t, e.AddEntry(entry))

	u := v.last()
	require.False(t, ContainsAction(u.ActionSet, UpdateListOrderAction))

	stored, ok := e.GetEntry(prof.Id)
	require.True(t, ok)
	require.Equal(t, 5, stored.ListOrder())
}

func TestAddEntry_ListOrderEmittedOnNewProtocol(t *testing.T) {
	e, v := newEngine(protoversion.Minecraft_1_21_2)
	prof := newProfile()
	entry := e.BuildEntry(prof, nil, 0, GameModeSurvival, nil, true, 5)
	require.NoError(t, e.AddEntry(entry))

	u := v.last()
	require.True(t, ContainsAction(u.ActionSet, UpdateListOrderAction))
	require.Equal(t, 5, u.Entries[0].ListOrder)
}

// gameMode -1 (not set) must never trigger UPDATE_GAME_MODE.
func TestAddEntry_GameModeNotSetOmitted(t *testing.T) {
	e, v := newEngine(protoversion.Minecraft_1_20_2)
	prof := newProfile()
	entry := e.BuildEntry(prof, nil, 0, GameModeNotSet, nil, true, 0)
	require.NoError(t, e.AddEntry(entry))

	u := v.last()
	require.False(t, ContainsAction(u.ActionSet, UpdateGameModeAction))
}

// RemoveEntry followed by AddEntry round-trips: the profile is absent
// after removal and present again after re-adding.
func TestRemoveThenAddRoundTrip(t *testing.T) {
	e, _ := newEngine(protoversion.Minecraft_1_20_2)
	prof := newProfile()
	entry := e.BuildEntry(prof, nil, 0, GameModeSurvival, nil, true, 0)
	require.NoError(t, e.AddEntry(entry))
	require.True(t, e.ContainsEntry(prof.Id))

	removed, err := e.RemoveEntry(prof.Id)
	require.NoError(t, err)
	require.NotNil(t, removed)
	require.False(t, e.ContainsEntry(prof.Id))

	require.NoError(t, e.AddEntry(entry))
	require.True(t, e.ContainsEntry(prof.Id))
}

// An inbound update for a profile never seen before, without
// ADD_PLAYER in the action set, is dropped rather than creating a
// half-initialized entry.
func TestProcessUpdate_DropsPartialBeforeAdd(t *testing.T) {
	e, _ := newEngine(protoversion.Minecraft_1_20_2)
	id := uuid.New()

	err := e.ProcessUpdate(&Upsert{
		ActionSet: []UpsertAction{UpdateLatencyAction},
		Entries:   []*UpsertEntry{{ProfileID: id, Latency: 10}},
	})
	require.NoError(t, err)
	require.False(t, e.ContainsEntry(id))
}

// An inbound ADD_PLAYER update sets the stored game mode from the
// delta even when UPDATE_GAME_MODE is not itself in the action set.
func TestProcessUpdate_AddSetsGameMode(t *testing.T) {
	e, _ := newEngine(protoversion.Minecraft_1_20_2)
	id := uuid.New()
	p := profile.GameProfile{Id: id, Name: "Notch"}

	err := e.ProcessUpdate(&Upsert{
		ActionSet: []UpsertAction{AddPlayerAction},
		Entries:   []*UpsertEntry{{ProfileID: id, Profile: &p, GameMode: GameModeCreative}},
	})
	require.NoError(t, err)

	stored, ok := e.GetEntry(id)
	require.True(t, ok)
	require.Equal(t, GameModeCreative, stored.GameMode())
}

// ProcessRemove clears the mirrored entries for the given profiles.
func TestProcessRemove(t *testing.T) {
	e, _ := newEngine(protoversion.Minecraft_1_20_2)
	id := uuid.New()
	p := profile.GameProfile{Id: id}
	require.NoError(t, e.ProcessUpdate(&Upsert{
		ActionSet: []UpsertAction{AddPlayerAction},
		Entries:   []*UpsertEntry{{ProfileID: id, Profile: &p}},
	}))
	require.True(t, e.ContainsEntry(id))

	e.ProcessRemove(&Remove{ProfilesToRemove: []uuid.UUID{id}})
	require.False(t, e.ContainsEntry(id))
}

// ClearAll removes every entry and emits exactly one delayed Remove
// packet covering the full set of ids that were present.
func TestClearAll_EmitsFullSet(t *testing.T) {
	e, v := newEngine(protoversion.Minecraft_1_20_2)
	ids := make([]uuid.UUID, 0, 3)
	for i := 0; i < 3; i++ {
		p := newProfile()
		ids = append(ids, p.Id)
		require.NoError(t, e.AddEntry(e.BuildEntry(p, nil, 0, GameModeSurvival, nil, true, 0)))
	}

	require.NoError(t, e.ClearAll())
	require.Len(t, v.delayed, 1)
	rm, ok := v.delayed[0].(*Remove)
	require.True(t, ok)
	require.ElementsMatch(t, ids, rm.ProfilesToRemove)
	require.Empty(t, e.GetEntries())
}

func TestSetHeaderAndFooter_RejectsNil(t *testing.T) {
	e, _ := newEngine(protoversion.Minecraft_1_20_2)
	require.Panics(t, func() {
		_ = e.SetHeaderAndFooter(nil, &component.Text{})
	})
}

func TestSetHeaderAndFooter(t *testing.T) {
	e, v := newEngine(protoversion.Minecraft_1_20_2)
	header := &component.Text{Content: "header"}
	footer := &component.Text{Content: "footer"}
	require.NoError(t, e.SetHeaderAndFooter(header, footer))

	require.Len(t, v.written, 1)
	hf, ok := v.written[0].(*HeaderAndFooter)
	require.True(t, ok)
	require.Equal(t, header, hf.Header)
	require.Equal(t, footer, hf.Footer)
}

// Entry.SetListOrder publishes UPDATE_LIST_ORDER only on newer protocols.
func TestEntrySetListOrder_GatedByProtocol(t *testing.T) {
	e, v := newEngine(protoversion.Minecraft_1_20_2)
	prof := newProfile()
	entry := e.BuildEntry(prof, nil, 0, GameModeSurvival, nil, true, 0)
	require.NoError(t, e.AddEntry(entry))

	stored, _ := e.GetEntry(prof.Id)
	before := len(v.written)
	require.NoError(t, stored.SetListOrder(7))
	require.Equal(t, before, len(v.written))
	require.Equal(t, 7, stored.ListOrder())
}

func TestEntrySetShowHat_GatedByProtocol(t *testing.T) {
	e, v := newEngine(protoversion.Minecraft_1_21_2)
	prof := newProfile()
	entry := e.BuildEntry(prof, nil, 0, GameModeSurvival, nil, true, 0)
	require.NoError(t, e.AddEntry(entry))

	stored, _ := e.GetEntry(prof.Id)
	before := len(v.written)
	require.NoError(t, stored.SetShowHat(true))
	require.Equal(t, before, len(v.written), "1.21.2 is below the UPDATE_HAT gate of 1.21.4")

	e2, v2 := newEngine(protoversion.Minecraft_1_21_4)
	entry2 := e2.BuildEntry(prof, nil, 0, GameModeSurvival, nil, true, 0)
	require.NoError(t, e2.AddEntry(entry2))
	stored2, _ := e2.GetEntry(prof.Id)
	before2 := len(v2.written)
	require.NoError(t, stored2.SetShowHat(true))
	require.Equal(t, before2+1, len(v2.written))
}

// Adding the same entry twice is idempotent over random names and a
// spread of latencies, game modes and list orders, not just one
// hand-picked case.
func TestAddEntry_IdempotentProperty(t *testing.T) {
	for i := 0; i < 25; i++ {
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			e, v := newEngine(protoversion.Minecraft_1_21_2)
			prof := profile.GameProfile{Id: uuid.New(), Name: faker.Username()}
			latency := time.Duration(i) * 10 * time.Millisecond
			mode := []int{GameModeSurvival, GameModeCreative, GameModeAdventure, GameModeSpectator}[i%4]
			entry := e.BuildEntry(prof, nil, latency, mode, nil, true, i)

			require.NoError(t, e.AddEntry(entry))
			before := len(v.written)
			require.NoError(t, e.AddEntry(entry))
			require.Equal(t, before, len(v.written))
		})
	}
}

// Changing only the latency of an entry with a random name emits
// exactly one UPDATE_LATENCY action, across a spread of latency values.
func TestAddEntry_SingleDeltaProperty(t *testing.T) {
	for i := 0; i < 25; i++ {
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			e, v := newEngine(protoversion.Minecraft_1_20_2)
			prof := profile.GameProfile{Id: uuid.New(), Name: faker.Username()}

			entry := e.BuildEntry(prof, nil, time.Duration(i)*time.Millisecond, GameModeSurvival, nil, true, 0)
			require.NoError(t, e.AddEntry(entry))

			updated := e.BuildEntry(prof, nil, time.Duration(i+1)*time.Millisecond, GameModeSurvival, nil, true, 0)
			require.NoError(t, e.AddEntry(updated))

			u := v.last()
			require.NotNil(t, u)
			require.Equal(t, []UpsertAction{UpdateLatencyAction}, u.ActionSet)
		})
	}
}

// Concurrent AddEntry calls against distinct profiles must not race
// or corrupt the entries map.
func TestAddEntry_ConcurrentDistinctProfiles(t *testing.T) {
	e, _ := newEngine(protoversion.Minecraft_1_20_2)
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		p := newProfile()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.AddEntry(e.BuildEntry(p, nil, 0, GameModeSurvival, nil, true, 0))
		}()
	}
	wg.Wait()
	require.Len(t, e.GetEntries(), n)
}
