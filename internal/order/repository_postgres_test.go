package order

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCreate_InsertsRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO settled_orders").
		WithArgs(7, "o-1", 1001, "https://shop/orders/o-1", int64(110000), "INR", "pay_1", "2026-01-01T00:00:00Z").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	rec, err := repo.Create(Record{
		UserID:           7,
		CommerceOrderID:  "o-1",
		OrderNumber:      1001,
		ConfirmationURL:  "https://shop/orders/o-1",
		AmountMinor:      110000,
		Currency:         "INR",
		GatewayPaymentID: "pay_1",
		CreatedAt:        "2026-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != 42 {
		t.Errorf("expected id 42, got %d", rec.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListByUser_Scans(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "commerce_order_id", "order_number", "confirmation_url", "amount_minor", "currency", "gateway_payment_id", "created_at"}).
		AddRow(2, 7, "o-2", 1002, "https://shop/orders/o-2", int64(5000), "INR", "pay_2", "t2").
		AddRow(1, 7, "o-1", 1001, nil, int64(110000), "INR", "pay_1", "t1")
	mock.ExpectQuery("FROM settled_orders").WithArgs(7).WillReturnRows(rows)

	recs, err := repo.ListByUser(7)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[1].ConfirmationURL != "" {
		t.Errorf("expected empty confirmation url for null column")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
