package cart

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresRepository keeps each user's cart as a jsonb map keyed by variant id.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the carts table if missing.
func (r *PostgresRepository) EnsureSchema() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS carts (
		user_id INTEGER PRIMARY KEY,
		items jsonb NOT NULL DEFAULT '{}',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}

func (r *PostgresRepository) AddLine(userID int, line Line) ([]Line, error) {
	items, err := r.load(userID)
	if err != nil {
		return nil, err
	}

	merged := mergeLine(items, line)
	if merged.Quantity <= 0 {
		delete(items, line.VariantID)
	} else {
		items[line.VariantID] = merged
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	_, err = r.db.Exec(`INSERT INTO carts (user_id, items, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET items = EXCLUDED.items, updated_at = now()`,
		userID, payload)
	if err != nil {
		return nil, fmt.Errorf("store cart: %w", err)
	}
	return sortedLines(items), nil
}

func (r *PostgresRepository) GetCart(userID int) ([]Line, error) {
	items, err := r.load(userID)
	if err != nil {
		return nil, err
	}
	return sortedLines(items), nil
}

func (r *PostgresRepository) ClearCart(userID int) error {
	if _, err := r.db.Exec(`DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *PostgresRepository) load(userID int) (map[string]Line, error) {
	var raw []byte
	err := r.db.QueryRow(`SELECT items FROM carts WHERE user_id = $1`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return make(map[string]Line), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	items := make(map[string]Line)
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}
