package interp

import (
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mddl-lang/mddl/env"
	"github.com/mddl-lang/mddl/note"
	"github.com/mddl-lang/mddl/seq"
)

// SessionSnapshot is the persisted record of one interpreter run:
// which functions had been defined and the contents of every sequence
// literal captured, keyed by the symbol that introduced it. It exists
// for audit/debug replay (mddl run --resume), not for re-binding a
// session's functions or literals back into a fresh one; MDDL itself
// keeps no state beyond the MIDI stream that produced it.
type SessionSnapshot struct {
	ID        uuid.UUID
	SavedAt   time.Time
	Functions []string
	Literals  map[string][]note.Note
}

// Session accumulates a snapshot as an interpreter runs and persists
// it with encoding/gob rather than a JSON or protobuf scheme, because
// nothing in this tree needs the snapshot to be human-editable or
// cross-language, only loadable by another run of this same binary.
type Session struct {
	id uuid.UUID
}

func NewSession() *Session {
	return &Session{id: uuid.New()}
}

// Snapshot walks global's scope tree and the interpreter's captured
// literals into a SessionSnapshot ready to persist.
func (s *Session) Snapshot(global *env.Scope, literals map[string]*seq.Sequence) SessionSnapshot {
	snap := SessionSnapshot{
		ID:        s.id,
		SavedAt:   now(),
		Functions: collectScopeIDs(global),
		Literals:  make(map[string][]note.Note, len(literals)),
	}
	for id, sq := range literals {
		snap.Literals[id] = append([]note.Note(nil), sq.Expanded()...)
	}
	return snap
}

func collectScopeIDs(s *env.Scope) []string {
	ids := make([]string, 0, len(s.Children))
	for _, child := range s.Children {
		ids = append(ids, child.ID)
		ids = append(ids, collectScopeIDs(child)...)
	}
	return ids
}

// Save gob-encodes snap to path.
func Save(path string, snap SessionSnapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("interp: could not create session file %q: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		return fmt.Errorf("interp: could not encode session: %w", err)
	}
	return nil
}

// Load decodes a SessionSnapshot previously written by Save.
func Load(path string) (SessionSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return SessionSnapshot{}, fmt.Errorf("interp: could not open session file %q: %w", path, err)
	}
	defer f.Close()

	var snap SessionSnapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return SessionSnapshot{}, fmt.Errorf("interp: could not decode session: %w", err)
	}
	return snap, nil
}

// now is split out so tests can't be tripped up by wall-clock skew
// across a slow CI run; production always calls through to time.Now.
var now = time.Now
