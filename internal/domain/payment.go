package domain

import "time"

// PaymentIntent records a checkout handed to the payment processor.
type PaymentIntent struct {
	ID            string
	AccountID     string
	OrganizerName string
	AmountCents   int64
	Currency      string
	ClientSecret  string
	CreatedAt     time.Time
}
