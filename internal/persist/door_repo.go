package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gridrealm/server/internal/world"
)

// DoorRepo persists per-tile door state.
type DoorRepo struct {
	db *DB
}

func NewDoorRepo(db *DB) *DoorRepo {
	return &DoorRepo{db: db}
}

func (r *DoorRepo) LoadDoorState(ctx context.Context, mapID int16, x, y int32) (world.DoorRecord, bool, error) {
	var rec world.DoorRecord
	err := r.db.Pool.QueryRow(ctx,
		`SELECT item_id, closed_gfx, open_gfx, open, key_item_id
		 FROM door_states WHERE map_id = $1 AND x = $2 AND y = $3`,
		mapID, x, y,
	).Scan(&rec.ItemID, &rec.ClosedGfx, &rec.OpenGfx, &rec.Open, &rec.KeyItemID)
	if errors.Is(err, pgx.ErrNoRows) {
		return world.DoorRecord{}, false, nil
	}
	if err != nil {
		return world.DoorRecord{}, false, fmt.Errorf("load door state (%d,%d,%d): %w", mapID, x, y, err)
	}
	return rec, true, nil
}

func (r *DoorRepo) SaveDoorState(ctx context.Context, mapID int16, x, y int32, rec world.DoorRecord) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO door_states (map_id, x, y, item_id, closed_gfx, open_gfx, open, key_item_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (map_id, x, y) DO UPDATE
		 SET item_id = $4, closed_gfx = $5, open_gfx = $6, open = $7,
		     key_item_id = $8, updated_at = now()`,
		mapID, x, y, rec.ItemID, rec.ClosedGfx, rec.OpenGfx, rec.Open, rec.KeyItemID,
	)
	if err != nil {
		return fmt.Errorf("save door state (%d,%d,%d): %w", mapID, x, y, err)
	}
	return nil
}
