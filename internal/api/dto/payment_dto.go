package dto

// PaymentRequest payload for POST /payment. Source names the organizer being paid.
type PaymentRequest struct {
	Amount float64 `json:"amount"`
	Source string  `json:"source"`
}
