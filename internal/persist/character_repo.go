package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

type CharacterRow struct {
	ID        int32
	Name      string
	MapID     int16
	X         int32
	Y         int32
	Heading   int16
	CreatedAt time.Time
}

type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

// GetOrCreate loads a character by name, creating it at the default spawn
// when it does not exist yet.
func (r *CharacterRepo) GetOrCreate(ctx context.Context, name string) (*CharacterRow, error) {
	c, err := r.LoadByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}

	c = &CharacterRow{Name: name}
	err = r.db.Pool.QueryRow(ctx,
		`INSERT INTO characters (name) VALUES ($1)
		 RETURNING id, map_id, x, y, heading, created_at`, name,
	).Scan(&c.ID, &c.MapID, &c.X, &c.Y, &c.Heading, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create character %q: %w", name, err)
	}
	return c, nil
}

// LoadByName returns a character row, or nil when no such name exists.
func (r *CharacterRepo) LoadByName(ctx context.Context, name string) (*CharacterRow, error) {
	var c CharacterRow
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, map_id, x, y, heading, created_at
		 FROM characters WHERE name = $1`, name,
	).Scan(&c.ID, &c.Name, &c.MapID, &c.X, &c.Y, &c.Heading, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load character %q: %w", name, err)
	}
	return &c, nil
}

// SavePosition persists one character's position.
func (r *CharacterRepo) SavePosition(ctx context.Context, userID int32, mapID int16, x, y int32, heading int16) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE characters
		 SET map_id = $2, x = $3, y = $4, heading = $5, updated_at = now()
		 WHERE id = $1`,
		userID, mapID, x, y, heading,
	)
	if err != nil {
		return fmt.Errorf("save position for %d: %w", userID, err)
	}
	return nil
}
