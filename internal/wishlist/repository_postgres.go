package wishlist

import (
	"database/sql"

	"github.com/lib/pq"
)

// PostgresRepository keeps each user's wishlist as a TEXT[] of product
// handles so ordering is preserved.
type PostgresRepository struct {
	db *sql.DB
}

const (
	getWishlistQuery = `SELECT handles FROM wishlists WHERE user_id = $1`

	addHandleQuery = `
		INSERT INTO wishlists (user_id, handles)
		VALUES ($1, ARRAY[$2]::text[])
		ON CONFLICT (user_id) DO UPDATE
		SET handles = array_append(wishlists.handles, $2)
		WHERE NOT ($2 = ANY(wishlists.handles))
		RETURNING handles
	`
	removeHandleQuery = `
		UPDATE wishlists
		SET handles = array_remove(handles, $2)
		WHERE user_id = $1 AND ($2 = ANY(handles))
		RETURNING handles
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the wishlists table if missing.
func (r *PostgresRepository) EnsureSchema() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS wishlists (
		user_id INTEGER PRIMARY KEY,
		handles TEXT[] NOT NULL DEFAULT '{}'
	)`)
	return err
}

func (r *PostgresRepository) Get(userID int) ([]string, error) {
	var handles pq.StringArray
	err := r.db.QueryRow(getWishlistQuery, userID).Scan(&handles)
	if err == sql.ErrNoRows {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return handles, nil
}

func (r *PostgresRepository) Add(userID int, handle string) ([]string, error) {
	var handles pq.StringArray
	err := r.db.QueryRow(addHandleQuery, userID, handle).Scan(&handles)
	if err == sql.ErrNoRows {
		return nil, ErrAlreadySaved
	}
	if err != nil {
		return nil, err
	}
	return handles, nil
}

func (r *PostgresRepository) Remove(userID int, handle string) ([]string, error) {
	var handles pq.StringArray
	err := r.db.QueryRow(removeHandleQuery, userID, handle).Scan(&handles)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return handles, nil
}
