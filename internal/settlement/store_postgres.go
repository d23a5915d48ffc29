package settlement

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// PostgresStore keeps pending settlements in a single jsonb-payload table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the pending_settlements table if missing.
func (s *PostgresStore) EnsureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS pending_settlements (
		client_key TEXT PRIMARY KEY,
		payload jsonb NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, key string) (PendingSettlement, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM pending_settlements WHERE client_key = $1`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return PendingSettlement{}, ErrNoPending
	}
	if err != nil {
		return PendingSettlement{}, fmt.Errorf("load pending settlement: %w", err)
	}

	var p PendingSettlement
	if err := json.Unmarshal(raw, &p); err != nil {
		return PendingSettlement{}, fmt.Errorf("decode pending settlement: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, p PendingSettlement) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pending settlement: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO pending_settlements (client_key, payload, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_key) DO UPDATE SET payload = EXCLUDED.payload`,
		key, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store pending settlement: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_settlements WHERE client_key = $1`, key); err != nil {
		return fmt.Errorf("delete pending settlement: %w", err)
	}
	return nil
}
