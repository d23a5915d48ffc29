package order

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the settled_orders table if missing.
func (r *PostgresRepository) EnsureSchema() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS settled_orders (
		id SERIAL PRIMARY KEY,
		user_id INT NOT NULL DEFAULT 0,
		commerce_order_id TEXT NOT NULL,
		order_number INT NOT NULL DEFAULT 0,
		confirmation_url TEXT,
		amount_minor BIGINT NOT NULL,
		currency TEXT NOT NULL,
		gateway_payment_id TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`)
	return err
}

func (r *PostgresRepository) Create(rec Record) (Record, error) {
	err := r.db.QueryRow(`INSERT INTO settled_orders
		(user_id, commerce_order_id, order_number, confirmation_url, amount_minor, currency, gateway_payment_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`,
		rec.UserID, rec.CommerceOrderID, rec.OrderNumber, rec.ConfirmationURL,
		rec.AmountMinor, rec.Currency, rec.GatewayPaymentID, rec.CreatedAt).Scan(&rec.ID)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r *PostgresRepository) ListByUser(userID int) ([]Record, error) {
	rows, err := r.db.Query(`SELECT id, user_id, commerce_order_id, order_number, confirmation_url,
		amount_minor, currency, gateway_payment_id, created_at
		FROM settled_orders WHERE user_id = $1 ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var rec Record
		var confirmationURL sql.NullString
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.CommerceOrderID, &rec.OrderNumber,
			&confirmationURL, &rec.AmountMinor, &rec.Currency, &rec.GatewayPaymentID, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.ConfirmationURL = confirmationURL.String
		out = append(out, rec)
	}
	return out, rows.Err()
}
