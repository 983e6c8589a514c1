package world

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/gridrealm/server/internal/data"
)

func newTestManager(t *testing.T, dir string) *Manager {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	loader := data.NewMapMetaLoader(dir, zap.NewNop())
	return NewManager(loader, nil, 3, zap.NewNop())
}

// fakeConn records every send as a compact event string so tests can assert
// exact packet order.
type fakeConn struct {
	events []string
}

func (c *fakeConn) SendChangeMap(mapID int16, x, y int32) {
	c.events = append(c.events, fmt.Sprintf("change_map:%d:%d:%d", mapID, x, y))
}

func (c *fakeConn) SendPosUpdate(x, y int32, heading int16) {
	c.events = append(c.events, fmt.Sprintf("pos_update:%d:%d", x, y))
}

func (c *fakeConn) SendCharacterCreate(p *PlayerInfo) {
	c.events = append(c.events, fmt.Sprintf("char_create:%d", p.UserID))
}

func (c *fakeConn) SendCharacterRemove(userID int32) {
	c.events = append(c.events, fmt.Sprintf("char_remove:%d", userID))
}

func (c *fakeConn) SendCharacterMove(userID int32, x, y int32, heading int16) {
	c.events = append(c.events, fmt.Sprintf("char_move:%d:%d:%d", userID, x, y))
}

func (c *fakeConn) SendNpcCreate(n *NpcInfo) {
	c.events = append(c.events, fmt.Sprintf("npc_create:%d", n.InstanceID))
}

func (c *fakeConn) SendObjectCreate(objectID, gfx int32, mapID int16, x, y int32) {
	c.events = append(c.events, fmt.Sprintf("obj_create:%d", objectID))
}

func (c *fakeConn) SendObjectDelete(objectID int32) {
	c.events = append(c.events, fmt.Sprintf("obj_delete:%d", objectID))
}

func (c *fakeConn) SendBlockPosition(mapID int16, x, y int32, blocked bool) {
	c.events = append(c.events, fmt.Sprintf("block_pos:%d:%d:%t", x, y, blocked))
}

// fakeBroadcaster records map-scoped fan-outs.
type fakeBroadcaster struct {
	events []string
}

func (b *fakeBroadcaster) CharacterCreate(mapID int16, p *PlayerInfo, exclude int32) {
	b.events = append(b.events, fmt.Sprintf("char_create:%d:%d", mapID, p.UserID))
}

func (b *fakeBroadcaster) CharacterRemove(mapID int16, userID int32, exclude int32) {
	b.events = append(b.events, fmt.Sprintf("char_remove:%d:%d", mapID, userID))
}

func (b *fakeBroadcaster) CharacterMove(mapID int16, p *PlayerInfo) {
	b.events = append(b.events, fmt.Sprintf("char_move:%d:%d", mapID, p.UserID))
}

func (b *fakeBroadcaster) NpcCreate(mapID int16, n *NpcInfo) {
	b.events = append(b.events, fmt.Sprintf("npc_create:%d:%d", mapID, n.InstanceID))
}

func (b *fakeBroadcaster) ObjectCreate(mapID int16, objectID, gfx int32, x, y int32) {
	b.events = append(b.events, fmt.Sprintf("obj_create:%d:%d:%d", mapID, objectID, gfx))
}

func (b *fakeBroadcaster) ObjectDelete(mapID int16, objectID int32) {
	b.events = append(b.events, fmt.Sprintf("obj_delete:%d:%d", mapID, objectID))
}

func (b *fakeBroadcaster) BlockPosition(mapID int16, x, y int32, blocked bool) {
	b.events = append(b.events, fmt.Sprintf("block_pos:%d:%d:%d:%t", mapID, x, y, blocked))
}

// fakeDoorStore keeps door records in memory and can fail on demand.
type fakeDoorStore struct {
	records map[string]DoorRecord
	failing bool
	saves   int
}

func newFakeDoorStore() *fakeDoorStore {
	return &fakeDoorStore{records: make(map[string]DoorRecord)}
}

func doorKey(mapID int16, x, y int32) string {
	return fmt.Sprintf("%d:%d:%d", mapID, x, y)
}

func (s *fakeDoorStore) LoadDoorState(_ context.Context, mapID int16, x, y int32) (DoorRecord, bool, error) {
	if s.failing {
		return DoorRecord{}, false, fmt.Errorf("store down")
	}
	rec, ok := s.records[doorKey(mapID, x, y)]
	return rec, ok, nil
}

func (s *fakeDoorStore) SaveDoorState(_ context.Context, mapID int16, x, y int32, rec DoorRecord) error {
	if s.failing {
		return fmt.Errorf("store down")
	}
	s.records[doorKey(mapID, x, y)] = rec
	s.saves++
	return nil
}

// fakeGroundStore serves preloaded items per map and records saves. Setting
// failLoads makes that many load calls fail before it recovers.
type fakeGroundStore struct {
	preloaded map[int16][]*GroundItem
	saved     map[int16][]*GroundItem
	loads     int
	failLoads int
}

func newFakeGroundStore() *fakeGroundStore {
	return &fakeGroundStore{
		preloaded: make(map[int16][]*GroundItem),
		saved:     make(map[int16][]*GroundItem),
	}
}

func (s *fakeGroundStore) LoadGroundItems(_ context.Context, mapID int16) ([]*GroundItem, error) {
	s.loads++
	if s.failLoads > 0 {
		s.failLoads--
		return nil, fmt.Errorf("store down")
	}
	return s.preloaded[mapID], nil
}

func (s *fakeGroundStore) SaveGroundItems(_ context.Context, mapID int16, items []*GroundItem) error {
	s.saved[mapID] = items
	return nil
}

// fakePositionStore records position saves in order.
type fakePositionStore struct {
	saves []string
	err   error
}

func (s *fakePositionStore) SavePosition(_ context.Context, userID int32, mapID int16, x, y int32, heading int16) error {
	if s.err != nil {
		return s.err
	}
	s.saves = append(s.saves, fmt.Sprintf("%d:%d:%d:%d", userID, mapID, x, y))
	return nil
}
