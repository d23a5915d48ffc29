package address

import (
	"database/sql"
)

// PostgresRepository stores addresses in a dedicated table with a foreign
// key to users.
type PostgresRepository struct {
	db *sql.DB
}

const (
	addressColumns = `address_id, user_id, label, first_name, last_name, address1, address2,
		city, province, zip, country, phone, created_at, updated_at`

	getAddressesQuery = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY address_id`

	insertAddressQuery = `INSERT INTO addresses
		(user_id, label, first_name, last_name, address1, address2, city, province, zip, country, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING address_id`

	updateAddressQuery = `UPDATE addresses
		SET label = $1, first_name = $2, last_name = $3, address1 = $4, address2 = $5,
			city = $6, province = $7, zip = $8, country = $9, phone = $10, updated_at = $11
		WHERE user_id = $12 AND address_id = $13`

	deleteAddressQuery = `DELETE FROM addresses WHERE user_id = $1 AND address_id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the addresses table if missing.
func (r *PostgresRepository) EnsureSchema() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS addresses (
		address_id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL DEFAULT '',
		address1 TEXT NOT NULL,
		address2 TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL,
		province TEXT NOT NULL,
		zip TEXT NOT NULL,
		country TEXT NOT NULL,
		phone TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

func (r *PostgresRepository) GetAddresses(userID int) ([]Address, error) {
	rows, err := r.db.Query(getAddressesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.AddressID, &a.UserID, &a.Label, &a.FirstName, &a.LastName,
			&a.Address1, &a.Address2, &a.City, &a.Province, &a.Zip, &a.Country,
			&a.Phone, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) AddAddress(addr Address) (Address, error) {
	err := r.db.QueryRow(insertAddressQuery,
		addr.UserID, addr.Label, addr.FirstName, addr.LastName, addr.Address1, addr.Address2,
		addr.City, addr.Province, addr.Zip, addr.Country, addr.Phone, addr.CreatedAt, addr.UpdatedAt,
	).Scan(&addr.AddressID)
	if err != nil {
		return Address{}, err
	}
	return addr, nil
}

func (r *PostgresRepository) UpdateAddress(addr Address) (Address, error) {
	res, err := r.db.Exec(updateAddressQuery,
		addr.Label, addr.FirstName, addr.LastName, addr.Address1, addr.Address2,
		addr.City, addr.Province, addr.Zip, addr.Country, addr.Phone, addr.UpdatedAt,
		addr.UserID, addr.AddressID,
	)
	if err != nil {
		return Address{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Address{}, ErrNotFound
	}
	return addr, nil
}

func (r *PostgresRepository) DeleteAddress(userID, addressID int) error {
	res, err := r.db.Exec(deleteAddressQuery, userID, addressID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
