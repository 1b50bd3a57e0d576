package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	cartdom "goaltickets/internal/domain/cart"
)

// PostgreSQL implementation of cart.Repository.
//
// One row per session; items live in a jsonb column so the row behaves like
// the Firestore document (whole-cart read-modify-write, last-write-wins).
//
// DDL:
//
//	CREATE TABLE IF NOT EXISTS carts (
//	  session_id TEXT PRIMARY KEY,
//	  items      JSONB NOT NULL DEFAULT '[]',
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL,
//	  expires_at TIMESTAMPTZ NOT NULL
//	);
type CartRepositoryPG struct {
	DB *sql.DB
}

func NewCartRepositoryPG(db *sql.DB) *CartRepositoryPG {
	return &CartRepositoryPG{DB: db}
}

// Open connects with the lib/pq driver and pings.
func Open(dsn string) (*sql.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("cart_repository_pg: dsn is empty")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("cart_repository_pg: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cart_repository_pg: ping: %w", err)
	}
	return db, nil
}

func (r *CartRepositoryPG) GetBySessionID(ctx context.Context, sessionID string) (*cartdom.Cart, error) {
	if r == nil || r.DB == nil {
		return nil, errors.New("cart_repository_pg: db is nil")
	}

	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return nil, errors.New("cart_repository_pg: sessionID is empty")
	}

	const q = `
SELECT session_id, items, created_at, updated_at, expires_at
FROM carts
WHERE session_id = $1`

	var (
		c        cartdom.Cart
		rawItems []byte
	)
	err := r.DB.QueryRowContext(ctx, q, sid).Scan(
		&c.ID, &rawItems, &c.CreatedAt, &c.UpdatedAt, &c.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart_repository_pg: get: %w", err)
	}

	c.Items = []cartdom.Item{}
	if len(rawItems) > 0 {
		if err := json.Unmarshal(rawItems, &c.Items); err != nil {
			return nil, fmt.Errorf("cart_repository_pg: decode items: %w", err)
		}
	}
	return &c, nil
}

func (r *CartRepositoryPG) Upsert(ctx context.Context, c *cartdom.Cart) error {
	if r == nil || r.DB == nil {
		return errors.New("cart_repository_pg: db is nil")
	}
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return errors.New("cart_repository_pg: cart or cart.ID is empty")
	}

	rawItems, err := json.Marshal(c.CloneItems())
	if err != nil {
		return fmt.Errorf("cart_repository_pg: encode items: %w", err)
	}

	const q = `
INSERT INTO carts (session_id, items, created_at, updated_at, expires_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (session_id) DO UPDATE SET
  items = EXCLUDED.items,
  updated_at = EXCLUDED.updated_at,
  expires_at = EXCLUDED.expires_at`

	_, err = r.DB.ExecContext(ctx, q, c.ID, rawItems, c.CreatedAt, c.UpdatedAt, c.ExpiresAt)
	if err != nil {
		return fmt.Errorf("cart_repository_pg: upsert: %w", err)
	}
	return nil
}

func (r *CartRepositoryPG) DeleteBySessionID(ctx context.Context, sessionID string) error {
	if r == nil || r.DB == nil {
		return errors.New("cart_repository_pg: db is nil")
	}

	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return errors.New("cart_repository_pg: sessionID is empty")
	}

	_, err := r.DB.ExecContext(ctx, `DELETE FROM carts WHERE session_id = $1`, sid)
	if err != nil {
		return fmt.Errorf("cart_repository_pg: delete: %w", err)
	}
	return nil
}
