package persist

import (
	"context"
	"fmt"

	"github.com/gridrealm/server/internal/world"
)

// GroundRepo persists ground items per map. Saves replace the whole map's
// rows in one transaction so the table always matches a coherent in-memory
// snapshot.
type GroundRepo struct {
	db *DB
}

func NewGroundRepo(db *DB) *GroundRepo {
	return &GroundRepo{db: db}
}

func (r *GroundRepo) LoadGroundItems(ctx context.Context, mapID int16) ([]*world.GroundItem, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT object_id, item_id, count, gfx, name, owner_id, map_id, x, y, dropped_at
		 FROM ground_items WHERE map_id = $1 ORDER BY dropped_at`, mapID,
	)
	if err != nil {
		return nil, fmt.Errorf("load ground items for map %d: %w", mapID, err)
	}
	defer rows.Close()

	var result []*world.GroundItem
	for rows.Next() {
		var it world.GroundItem
		if err := rows.Scan(
			&it.ObjectID, &it.ItemID, &it.Count, &it.Gfx, &it.Name,
			&it.OwnerID, &it.MapID, &it.X, &it.Y, &it.DroppedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &it)
	}
	return result, rows.Err()
}

func (r *GroundRepo) SaveGroundItems(ctx context.Context, mapID int16, items []*world.GroundItem) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin ground save for map %d: %w", mapID, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM ground_items WHERE map_id = $1`, mapID); err != nil {
		return fmt.Errorf("clear ground items for map %d: %w", mapID, err)
	}
	for _, it := range items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO ground_items (object_id, item_id, count, gfx, name, owner_id, map_id, x, y, dropped_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			it.ObjectID, it.ItemID, it.Count, it.Gfx, it.Name,
			it.OwnerID, it.MapID, it.X, it.Y, it.DroppedAt,
		); err != nil {
			return fmt.Errorf("insert ground item %d: %w", it.ObjectID, err)
		}
	}
	return tx.Commit(ctx)
}
