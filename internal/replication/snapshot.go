// Package replication copies per-character combat counters from the
// authoritative server to observers. Only the authority produces snapshots;
// every other process applies them to a read-only Mirror.
package replication

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/gunfire/internal/game/combat"
)

// ErrNotAuthoritative is returned when a non-authoritative Tracker is asked
// to produce snapshots.
var ErrNotAuthoritative = errors.New("replication: not authoritative")

// Snapshot is the replicated subset of a character's CombatState.
type Snapshot struct {
	CharacterID string
	ShotsLeft   int
	AmmoRacks   int
	Health      float64
}

// Source is anything whose combat counters can be replicated.
type Source interface {
	ID() string
	CombatState() *combat.State
}

// Capture reads s's current counters.
func Capture(s Source) Snapshot {
	st := s.CombatState()
	return Snapshot{
		CharacterID: s.ID(),
		ShotsLeft:   st.ShotsLeft(),
		AmmoRacks:   st.AmmoRacks(),
		Health:      st.Health(),
	}
}

// RestoreInto overwrites st's replicated counters with s. A client keeping a
// local proxy character calls it for every snapshot it receives.
func (s Snapshot) RestoreInto(st *combat.State) {
	st.Restore(s.ShotsLeft, s.AmmoRacks, s.Health)
}

// Tracker remembers the last snapshot sent for each character.
type Tracker struct {
	authoritative bool
	last          map[string]Snapshot
	departed      []string
}

// NewTracker returns a Tracker. A non-authoritative Tracker never produces snapshots.
func NewTracker(authoritative bool) *Tracker {
	return &Tracker{authoritative: authoritative, last: make(map[string]Snapshot)}
}

// Authoritative reports whether t may produce snapshots.
func (t *Tracker) Authoritative() bool { return t.authoritative }

// Collect returns the snapshots of sources that changed since the previous
// Collect, in source order. sources is the complete set of live characters;
// characters missing from it are forgotten and reported by Departed.
//
// Postcondition: on error the tracker is unchanged.
func (t *Tracker) Collect(sources []Source) ([]Snapshot, error) {
	if !t.authoritative {
		return nil, ErrNotAuthoritative
	}
	live := make(map[string]bool, len(sources))
	var out []Snapshot
	for _, src := range sources {
		snap := Capture(src)
		live[snap.CharacterID] = true
		if prev, ok := t.last[snap.CharacterID]; ok && prev == snap {
			continue
		}
		t.last[snap.CharacterID] = snap
		out = append(out, snap)
	}
	t.departed = t.departed[:0]
	for id := range t.last {
		if !live[id] {
			delete(t.last, id)
			t.departed = append(t.departed, id)
		}
	}
	sort.Strings(t.departed)
	return out, nil
}

// Departed returns the characters forgotten by the most recent Collect, sorted.
func (t *Tracker) Departed() []string { return t.departed }

// Len returns the number of characters t remembers.
func (t *Tracker) Len() int { return len(t.last) }

// Forget drops the remembered snapshot for id so the next Collect resends it.
// The character stays known, so a departure is still reported.
func (t *Tracker) Forget(id string) {
	if _, ok := t.last[id]; ok {
		t.last[id] = Snapshot{}
	}
}

// Mirror is the read-only replica of remote combat counters. It is safe for
// concurrent use.
type Mirror struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

// NewMirror returns an empty Mirror.
func NewMirror() *Mirror {
	return &Mirror{snaps: make(map[string]Snapshot)}
}

// Apply stores s, replacing any earlier snapshot for the same character.
func (m *Mirror) Apply(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[s.CharacterID] = s
}

// Get returns the snapshot for id.
func (m *Mirror) Get(id string) (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snaps[id]
	return s, ok
}

// All returns every snapshot sorted by character ID.
func (m *Mirror) All() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Snapshot, 0, len(m.snaps))
	for _, s := range m.snaps {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CharacterID < out[j].CharacterID })
	return out
}

// Remove deletes the snapshot for id.
func (m *Mirror) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, id)
}

// Encode serializes s as a protobuf Struct.
func Encode(s Snapshot) ([]byte, error) {
	st, err := structpb.NewStruct(map[string]any{
		"character_id": s.CharacterID,
		"shots_left":   s.ShotsLeft,
		"ammo_racks":   s.AmmoRacks,
		"health":       s.Health,
	})
	if err != nil {
		return nil, fmt.Errorf("replication: encoding %q: %w", s.CharacterID, err)
	}
	b, err := proto.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("replication: encoding %q: %w", s.CharacterID, err)
	}
	return b, nil
}

// Decode is the inverse of Encode.
func Decode(b []byte) (Snapshot, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(b, &st); err != nil {
		return Snapshot{}, fmt.Errorf("replication: decoding: %w", err)
	}
	f := st.GetFields()
	id, ok := f["character_id"].GetKind().(*structpb.Value_StringValue)
	if !ok || id.StringValue == "" {
		return Snapshot{}, errors.New("replication: decoding: missing character_id")
	}
	var missing []string
	num := func(key string) float64 {
		v, ok := f[key].GetKind().(*structpb.Value_NumberValue)
		if !ok {
			missing = append(missing, key)
			return 0
		}
		return v.NumberValue
	}
	s := Snapshot{
		CharacterID: id.StringValue,
		ShotsLeft:   int(num("shots_left")),
		AmmoRacks:   int(num("ammo_racks")),
		Health:      num("health"),
	}
	if len(missing) > 0 {
		return Snapshot{}, fmt.Errorf("replication: decoding %q: missing %v", s.CharacterID, missing)
	}
	return s, nil
}
