package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestGetDefaultsWhenNoFiles(t *testing.T) {
	l := NewMapMetaLoader(t.TempDir(), zap.NewNop())

	m := l.Get(4)
	assert.Equal(t, DefaultMapWidth, m.Width)
	assert.Equal(t, DefaultMapHeight, m.Height)
	assert.Empty(t, m.Blocked)
	assert.Empty(t, m.Exits)
	assert.True(t, m.InBounds(1, 1))
	assert.True(t, m.InBounds(100, 100))
	assert.False(t, m.InBounds(0, 1))
	assert.False(t, m.InBounds(101, 1))
}

func TestMetadataDimensionsAndEmbeddedBlocked(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "metadata_000.json",
		`[{"m":4,"width":60,"height":40,"blocked":[{"m":4,"x":5,"y":5}]}]`)
	l := NewMapMetaLoader(dir, zap.NewNop())

	m := l.Get(4)
	assert.Equal(t, int32(60), m.Width)
	assert.Equal(t, int32(40), m.Height)
	assert.True(t, m.IsBlocked(5, 5))
	assert.False(t, m.IsBlocked(6, 5))
	assert.False(t, m.InBounds(61, 1))
}

func TestBlockedFileWithExitRecord(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blocked_000.json",
		`[{"m":1,"x":50,"y":51,"t":"exit","to_map":2,"to_x":50,"to_y":99},{"m":1,"x":7,"y":7}]`)
	l := NewMapMetaLoader(dir, zap.NewNop())

	m := l.Get(1)
	// An exit record both blocks and populates the exit index.
	assert.True(t, m.IsBlocked(50, 51))
	dest, ok := m.ExitAt(50, 51)
	require.True(t, ok)
	assert.Equal(t, ExitDest{MapID: 2, X: 50, Y: 99}, dest)

	assert.True(t, m.IsBlocked(7, 7))
	_, ok = m.ExitAt(7, 7)
	assert.False(t, ok)
}

func TestExitRecordMissingFieldStaysBlocked(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blocked_000.json",
		`[{"m":1,"x":50,"y":51,"t":"exit","to_map":2,"to_x":50}]`)
	l := NewMapMetaLoader(dir, zap.NewNop())

	m := l.Get(1)
	assert.True(t, m.IsBlocked(50, 51))
	_, ok := m.ExitAt(50, 51)
	assert.False(t, ok, "incomplete exit record must not become an exit")
}

func TestExitDestinationValidated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "metadata_000.json", `[{"m":2,"width":60,"height":60}]`)
	writeFile(t, dir, "blocked_000.json",
		`[{"m":1,"x":1,"y":1,"t":"exit","to_map":2,"to_x":61,"to_y":10},`+
			`{"m":1,"x":2,"y":1,"t":"exit","to_map":0,"to_x":10,"to_y":10},`+
			`{"m":1,"x":3,"y":1,"t":"exit","to_map":2,"to_x":10,"to_y":10}]`)
	l := NewMapMetaLoader(dir, zap.NewNop())

	m := l.Get(1)
	_, ok := m.ExitAt(1, 1)
	assert.False(t, ok, "destination outside target map bounds")
	_, ok = m.ExitAt(2, 1)
	assert.False(t, ok, "map id below 1")
	_, ok = m.ExitAt(3, 1)
	assert.True(t, ok)

	// All three tiles remain blocked regardless.
	assert.True(t, m.IsBlocked(1, 1))
	assert.True(t, m.IsBlocked(2, 1))
	assert.True(t, m.IsBlocked(3, 1))
}

func TestTransitionsFileAddsExits(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "transitions_000.json",
		`[{"from_map":1,"exits":[{"x":9,"y":9,"to_map":3,"to_x":4,"to_y":4}]}]`)
	l := NewMapMetaLoader(dir, zap.NewNop())

	m := l.Get(1)
	dest, ok := m.ExitAt(9, 9)
	require.True(t, ok)
	assert.Equal(t, ExitDest{MapID: 3, X: 4, Y: 4}, dest)
}

func TestNDJSONFallbackSkipsBadLines(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blocked_000.json",
		"{\"m\":1,\"x\":5,\"y\":5}\nthis line is garbage\n{\"m\":1,\"x\":6,\"y\":6}\n")
	l := NewMapMetaLoader(dir, zap.NewNop())

	m := l.Get(1)
	assert.True(t, m.IsBlocked(5, 5))
	assert.True(t, m.IsBlocked(6, 6))
	assert.Len(t, m.Blocked, 2)
}

func TestCacheHitYieldsIdenticalSets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blocked_000.json",
		`[{"m":1,"x":5,"y":5},{"m":1,"x":50,"y":51,"t":"exit","to_map":2,"to_x":50,"to_y":99}]`)
	l := NewMapMetaLoader(dir, zap.NewNop())

	first := l.Get(1)
	blocked := make(map[Coord]struct{}, len(first.Blocked))
	for c := range first.Blocked {
		blocked[c] = struct{}{}
	}
	exits := make(map[Coord]ExitDest, len(first.Exits))
	for c, d := range first.Exits {
		exits[c] = d
	}

	// Delete the file: a second Get must come from the cache.
	require.NoError(t, os.Remove(filepath.Join(dir, "blocked_000.json")))
	second := l.Get(1)
	assert.Equal(t, blocked, second.Blocked)
	assert.Equal(t, exits, second.Exits)
	assert.Equal(t, 1, l.Count())
}

func TestShardDemultiplexing(t *testing.T) {
	dir := t.TempDir()
	// One shard file carries records for several maps.
	writeFile(t, dir, "blocked_000.json",
		`[{"m":1,"x":5,"y":5},{"m":2,"x":6,"y":6},{"m":99,"x":7,"y":7}]`)
	// Maps 100+ live in the next shard.
	writeFile(t, dir, "blocked_001.json", `[{"m":150,"x":8,"y":8}]`)
	l := NewMapMetaLoader(dir, zap.NewNop())

	assert.True(t, l.Get(1).IsBlocked(5, 5))
	assert.False(t, l.Get(1).IsBlocked(6, 6))
	assert.True(t, l.Get(2).IsBlocked(6, 6))
	assert.True(t, l.Get(99).IsBlocked(7, 7))
	assert.True(t, l.Get(150).IsBlocked(8, 8))
}

func TestMissingShardNegativelyCached(t *testing.T) {
	dir := t.TempDir()
	l := NewMapMetaLoader(dir, zap.NewNop())

	require.Empty(t, l.Get(1).Blocked)

	// Writing the file after the miss changes nothing: the miss is cached.
	writeFile(t, dir, "blocked_000.json", `[{"m":2,"x":5,"y":5}]`)
	assert.Empty(t, l.Get(2).Blocked)
}
