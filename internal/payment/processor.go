package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Intent is the processor's handle for a pending charge.
type Intent struct {
	ID           string
	ClientSecret string
}

// Processor creates payment intents with an external payment provider.
type Processor interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (Intent, error)
}

// LocalProcessor mints intents without talking to a provider. It stands in
// for a real processor in development and tests.
type LocalProcessor struct{}

// NewLocalProcessor returns the in-process processor.
func NewLocalProcessor() *LocalProcessor {
	return &LocalProcessor{}
}

func (p *LocalProcessor) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (Intent, error) {
	if err := ctx.Err(); err != nil {
		return Intent{}, err
	}
	if amountCents <= 0 {
		return Intent{}, errors.New("amount must be positive")
	}
	if strings.TrimSpace(currency) == "" {
		return Intent{}, errors.New("currency is required")
	}
	id := "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	return Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
	}, nil
}
