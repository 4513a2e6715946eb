package interp

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mddl-lang/mddl/env"
	"github.com/mddl-lang/mddl/note"
	"github.com/mddl-lang/mddl/seq"
)

func TestSessionSnapshotCollectsDefinedFunctionIDs(t *testing.T) {
	global := env.NewScope(nil, ":global", env.Body)
	fn := env.NewScope(global, "abc", env.Signature)
	fn.ID = "abc:0"
	global.AddChildScope(fn)

	s := NewSession()
	snap := s.Snapshot(global, nil)

	assert.Contains(t, snap.Functions, "abc:0")
}

func TestSessionSnapshotCollectsLiteralContents(t *testing.T) {
	sq := seq.NewProto(note.Note{Pitch: 60, Velocity: 100}, 1)
	literals := map[string]*seq.Sequence{"x": sq}

	s := NewSession()
	snap := s.Snapshot(env.NewScope(nil, ":global", env.Body), literals)

	assert := assert.New(t)
	assert.Len(snap.Literals["x"], 1)
	assert.Equal(uint8(60), snap.Literals["x"][0].Pitch)
}

func TestSessionSaveLoadRoundTrips(t *testing.T) {
	snap := SessionSnapshot{
		Functions: []string{"abc:1"},
		Literals:  map[string][]note.Note{"x": {{Pitch: 60, Velocity: 90}}},
	}
	snap.ID = NewSession().id

	path := filepath.Join(t.TempDir(), "session.gob")

	assert := assert.New(t)
	assert.NoError(Save(path, snap))

	loaded, err := Load(path)
	assert.NoError(err)
	assert.Equal(snap.Functions, loaded.Functions)
	assert.Equal(snap.Literals, loaded.Literals)
}
