package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexis/campus-services/internal/domain"
)

// PaymentRepository defines persistence access for payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListByInvoice(ctx context.Context, invoiceID int64) ([]*domain.Payment, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository returns a Postgres-backed implementation.
func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	const query = `
        INSERT INTO payments (invoice_id, amount_cents, method, transaction_id, notes)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, payment_date`

	return r.pool.QueryRow(ctx, query,
		payment.InvoiceID,
		payment.AmountCents,
		payment.Method,
		payment.TransactionID,
		payment.Notes,
	).Scan(&payment.ID, &payment.PaymentDate)
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID int64) ([]*domain.Payment, error) {
	const query = `
        SELECT id, invoice_id, amount_cents, method, transaction_id, notes, payment_date
        FROM payments WHERE invoice_id=$1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(
			&p.ID,
			&p.InvoiceID,
			&p.AmountCents,
			&p.Method,
			&p.TransactionID,
			&p.Notes,
			&p.PaymentDate,
		); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}
