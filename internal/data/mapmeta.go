package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Default dimensions for maps with no metadata record.
const (
	DefaultMapWidth  int32 = 100
	DefaultMapHeight int32 = 100
)

// shardSize is the number of map ids covered by one metadata/blocked/transitions file.
const shardSize = 100

// Coord addresses a tile within a single map. Coordinates are 1-based.
type Coord struct {
	X, Y int32
}

// ExitDest is the destination of an exit tile.
type ExitDest struct {
	MapID int16
	X, Y  int32
}

// MapMeta holds everything static about one map: dimensions, the blocked-tile
// set, and the exit tiles. Built once per map and cached; treated as read-only
// after load.
type MapMeta struct {
	MapID   int16
	Width   int32
	Height  int32
	Blocked map[Coord]struct{}
	Exits   map[Coord]ExitDest
}

// InBounds reports whether (x,y) lies inside the map. Coordinates are 1-based.
func (m *MapMeta) InBounds(x, y int32) bool {
	return x >= 1 && y >= 1 && x <= m.Width && y <= m.Height
}

// IsBlocked reports whether the tile is statically impassable.
func (m *MapMeta) IsBlocked(x, y int32) bool {
	_, ok := m.Blocked[Coord{X: x, Y: y}]
	return ok
}

// ExitAt returns the exit destination for a tile, if any.
func (m *MapMeta) ExitAt(x, y int32) (ExitDest, bool) {
	d, ok := m.Exits[Coord{X: x, Y: y}]
	return d, ok
}

// ── wire records ──

// metaRecord is one entry in a metadata_NNN.json file.
type metaRecord struct {
	MapID   int16           `json:"m"`
	Width   int32           `json:"width"`
	Height  int32           `json:"height"`
	Blocked []blockedRecord `json:"blocked,omitempty"` // optional embedded blocked list
}

// blockedRecord is one entry in a blocked_NNN.json file (or embedded in
// metadata). Type "exit" carries a destination triple and makes the tile both
// impassable and an exit.
type blockedRecord struct {
	MapID int16  `json:"m"`
	X     int32  `json:"x"`
	Y     int32  `json:"y"`
	Type  string `json:"t,omitempty"` // "" / "wall" = plain block, "exit" = exit tile
	ToMap *int16 `json:"to_map,omitempty"`
	ToX   *int32 `json:"to_x,omitempty"`
	ToY   *int32 `json:"to_y,omitempty"`
}

// transitionGroup is one entry in a transitions_NNN.json file: all extra
// exits of a single source map.
type transitionGroup struct {
	FromMap int16              `json:"from_map"`
	Exits   []transitionRecord `json:"exits"`
}

type transitionRecord struct {
	X     int32 `json:"x"`
	Y     int32 `json:"y"`
	ToMap int16 `json:"to_map"`
	ToX   int32 `json:"to_x"`
	ToY   int32 `json:"to_y"`
}

// MapMetaLoader builds MapMeta from sharded files under a base directory:
//
//	metadata_000.json     maps 0-99: {m, width, height, blocked?}
//	blocked_000.json      maps 0-99: {m, x, y, t, to_map?, to_x?, to_y?}
//	transitions_000.json  maps 0-99: {from_map, exits: [{x, y, to_map, to_x, to_y}]}
//
// Each file is read at most once; its records are demultiplexed by map id into
// per-file caches. A missing or unreadable file is remembered so it is not
// retried. Files may be a single JSON array or newline-delimited JSON; in the
// newline form, unparsable lines are skipped so a partially corrupt file still
// yields its good records.
type MapMetaLoader struct {
	dir string
	log *zap.Logger

	mu       sync.Mutex
	metaBy   map[string]map[int16]*metaRecord        // file path → map id → record
	blockBy  map[string]map[int16][]blockedRecord    // file path → map id → records
	transBy  map[string]map[int16][]transitionRecord // file path → map id → records
	maps     map[int16]*MapMeta                      // fully built per-map cache
}

func NewMapMetaLoader(dir string, log *zap.Logger) *MapMetaLoader {
	return &MapMetaLoader{
		dir:     dir,
		log:     log,
		metaBy:  make(map[string]map[int16]*metaRecord),
		blockBy: make(map[string]map[int16][]blockedRecord),
		transBy: make(map[string]map[int16][]transitionRecord),
		maps:    make(map[int16]*MapMeta),
	}
}

// Get returns the metadata for a map, building and caching it on first use.
// Never fails: malformed or missing data degrades to an empty 100×100 map.
func (l *MapMetaLoader) Get(mapID int16) *MapMeta {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getLocked(mapID)
}

// Count returns the number of maps built so far.
func (l *MapMetaLoader) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.maps)
}

func (l *MapMetaLoader) getLocked(mapID int16) *MapMeta {
	if m, ok := l.maps[mapID]; ok {
		return m
	}

	meta := &MapMeta{
		MapID:   mapID,
		Width:   DefaultMapWidth,
		Height:  DefaultMapHeight,
		Blocked: make(map[Coord]struct{}),
		Exits:   make(map[Coord]ExitDest),
	}

	rec := l.metaRecordFor(mapID)
	if rec != nil && rec.Width > 0 && rec.Height > 0 {
		meta.Width = rec.Width
		meta.Height = rec.Height
	}

	// Blocked tiles: embedded list wins; otherwise consult the blocked shard.
	var blocked []blockedRecord
	if rec != nil && len(rec.Blocked) > 0 {
		blocked = rec.Blocked
	} else {
		blocked = l.blockedRecordsFor(mapID)
	}
	for _, b := range blocked {
		c := Coord{X: b.X, Y: b.Y}
		meta.Blocked[c] = struct{}{}
		if b.Type != "exit" {
			continue
		}
		// Exit records missing a field stay plain blocked tiles.
		if b.ToMap == nil || b.ToX == nil || b.ToY == nil {
			l.log.Warn("exit record missing destination, keeping tile blocked",
				zap.Int16("map", mapID), zap.Int32("x", b.X), zap.Int32("y", b.Y))
			continue
		}
		dest := ExitDest{MapID: *b.ToMap, X: *b.ToX, Y: *b.ToY}
		if !l.validDest(dest) {
			l.log.Warn("exit record has invalid destination, dropping",
				zap.Int16("map", mapID), zap.Int32("x", b.X), zap.Int32("y", b.Y),
				zap.Int16("to_map", dest.MapID), zap.Int32("to_x", dest.X), zap.Int32("to_y", dest.Y))
			continue
		}
		meta.Exits[c] = dest
	}

	// Extra exits from the transitions shard.
	for _, t := range l.transitionRecordsFor(mapID) {
		dest := ExitDest{MapID: t.ToMap, X: t.ToX, Y: t.ToY}
		if !l.validDest(dest) {
			l.log.Warn("transition has invalid destination, dropping",
				zap.Int16("map", mapID), zap.Int32("x", t.X), zap.Int32("y", t.Y),
				zap.Int16("to_map", dest.MapID))
			continue
		}
		meta.Exits[Coord{X: t.X, Y: t.Y}] = dest
	}

	l.maps[mapID] = meta
	return meta
}

// validDest checks an exit destination against map-id and coordinate bounds.
// Coordinate bounds come from the destination's metadata record when its shard
// is available, defaults otherwise.
func (l *MapMetaLoader) validDest(d ExitDest) bool {
	if d.MapID < 1 {
		return false
	}
	w, h := DefaultMapWidth, DefaultMapHeight
	if rec := l.metaRecordFor(d.MapID); rec != nil && rec.Width > 0 && rec.Height > 0 {
		w, h = rec.Width, rec.Height
	}
	return d.X >= 1 && d.Y >= 1 && d.X <= w && d.Y <= h
}

func shardPath(dir, prefix string, mapID int16) string {
	lo := (int(mapID) / shardSize) * shardSize
	return filepath.Join(dir, fmt.Sprintf("%s_%03d.json", prefix, lo/shardSize))
}

func (l *MapMetaLoader) metaRecordFor(mapID int16) *metaRecord {
	path := shardPath(l.dir, "metadata", mapID)
	byMap, ok := l.metaBy[path]
	if !ok {
		byMap = make(map[int16]*metaRecord)
		for _, rec := range readShard[metaRecord](path, l.log) {
			r := rec
			byMap[r.MapID] = &r
		}
		l.metaBy[path] = byMap // empty map remembers a missing/bad file
	}
	return byMap[mapID]
}

func (l *MapMetaLoader) blockedRecordsFor(mapID int16) []blockedRecord {
	path := shardPath(l.dir, "blocked", mapID)
	byMap, ok := l.blockBy[path]
	if !ok {
		byMap = make(map[int16][]blockedRecord)
		for _, rec := range readShard[blockedRecord](path, l.log) {
			byMap[rec.MapID] = append(byMap[rec.MapID], rec)
		}
		l.blockBy[path] = byMap
	}
	return byMap[mapID]
}

func (l *MapMetaLoader) transitionRecordsFor(mapID int16) []transitionRecord {
	path := shardPath(l.dir, "transitions", mapID)
	byMap, ok := l.transBy[path]
	if !ok {
		byMap = make(map[int16][]transitionRecord)
		for _, grp := range readShard[transitionGroup](path, l.log) {
			byMap[grp.FromMap] = append(byMap[grp.FromMap], grp.Exits...)
		}
		l.transBy[path] = byMap
	}
	return byMap[mapID]
}

// readShard reads one sharded file as a JSON array of T, falling back to
// newline-delimited JSON (one object per line) when the document as a whole
// does not parse. In the newline form, bad lines are skipped and logged.
func readShard[T any](path string, log *zap.Logger) []T {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("map data file unreadable", zap.String("file", path), zap.Error(err))
		}
		return nil
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err == nil {
		return records
	}

	// Newline-delimited fallback.
	skipped := 0
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var rec T
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		log.Warn("skipped unparsable lines in map data file",
			zap.String("file", path), zap.Int("lines", skipped))
	}
	return records
}
