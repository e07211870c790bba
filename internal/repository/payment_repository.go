package repository

import (
	"context"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/persistence"
)

// PaymentIntentRepository stores checkouts created with the processor.
type PaymentIntentRepository interface {
	Create(ctx context.Context, intent *domain.PaymentIntent) error
	ListByAccount(ctx context.Context, accountID string) ([]domain.PaymentIntent, error)
}

type paymentIntentRepository struct {
	db persistence.DBTX
}

// NewPaymentIntentRepository constructs repository.
func NewPaymentIntentRepository(db persistence.DBTX) PaymentIntentRepository {
	return &paymentIntentRepository{db: db}
}

func (r *paymentIntentRepository) Create(ctx context.Context, intent *domain.PaymentIntent) error {
	const query = `
        INSERT INTO payment_intents (id, account_id, organizer_name, amount_cents, currency)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	return r.db.QueryRow(ctx, query,
		intent.ID,
		intent.AccountID,
		intent.OrganizerName,
		intent.AmountCents,
		intent.Currency,
	).Scan(&intent.CreatedAt)
}

func (r *paymentIntentRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.PaymentIntent, error) {
	const query = `
        SELECT id, account_id, organizer_name, amount_cents, currency, created_at
        FROM payment_intents WHERE account_id=$1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	intents := []domain.PaymentIntent{}
	for rows.Next() {
		var intent domain.PaymentIntent
		if err := rows.Scan(
			&intent.ID,
			&intent.AccountID,
			&intent.OrganizerName,
			&intent.AmountCents,
			&intent.Currency,
			&intent.CreatedAt,
		); err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}
	return intents, rows.Err()
}
