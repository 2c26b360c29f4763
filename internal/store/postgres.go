package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"floorplan-inventory/internal/models"
)

// PostgresStore persists placements and reservations in PostgreSQL. The schema
// is created by db/migrations (see cmd/testmigrate).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to dsn and checks the connection.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgxpool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

const upsertPlacement = `
	INSERT INTO placements (placement_key, item_id, barcode, x, y, updated_at)
	VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
	ON CONFLICT (placement_key) DO UPDATE
	SET item_id = EXCLUDED.item_id, barcode = EXCLUDED.barcode,
	    x = EXCLUDED.x, y = EXCLUDED.y, updated_at = EXCLUDED.updated_at`

func (s *PostgresStore) SavePlacements(ctx context.Context, placements []Placement) error {
	if len(placements) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range placements {
		var updatedAt *time.Time
		if !p.UpdatedAt.IsZero() {
			updatedAt = &p.UpdatedAt
		}
		batch.Queue(upsertPlacement, p.Key(), p.ItemID, p.Barcode, p.X, p.Y, updatedAt)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin placements tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save placements: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Placements(ctx context.Context) ([]Placement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT item_id, barcode, x, y, updated_at
		FROM placements ORDER BY item_id`)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[Placement])
}

func (s *PostgresStore) AddReservation(ctx context.Context, r models.Reservation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reservations (id, furniture_id, furniture_reference, starts_at, ends_at,
		                          user_name, user_email, user_phone, department, location, purpose, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		r.ID, r.FurnitureID, r.FurnitureReference, r.Start, r.End,
		r.UserName, r.UserEmail, r.UserPhone, r.Department, r.Location, r.Purpose, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (s *PostgresStore) Reservations(ctx context.Context, furnitureID int64) ([]models.Reservation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, furniture_id, furniture_reference, starts_at, ends_at,
		       user_name, user_email, user_phone, department, location, purpose, created_at
		FROM reservations
		WHERE $1::bigint = 0 OR furniture_id = $1
		ORDER BY starts_at`, furnitureID)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Reservation, error) {
		var r models.Reservation
		err := row.Scan(&r.ID, &r.FurnitureID, &r.FurnitureReference, &r.Start, &r.End,
			&r.UserName, &r.UserEmail, &r.UserPhone, &r.Department, &r.Location, &r.Purpose, &r.CreatedAt)
		return r, err
	})
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
