package service

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/payment"
	"github.com/spec-kit/event-ticketing/internal/repository"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util"
)

// PaymentService opens checkouts with the payment processor.
type PaymentService struct {
	processor payment.Processor
	intents   repository.PaymentIntentRepository
	currency  string
	logger    *zap.Logger
}

// NewPaymentService constructs the service.
func NewPaymentService(processor payment.Processor, intents repository.PaymentIntentRepository, currency string, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if currency == "" {
		currency = "USD"
	}
	return &PaymentService{processor: processor, intents: intents, currency: currency, logger: logger}
}

// CreateIntent charges amount (in major units) on behalf of the organizer
// named by source and returns the client secret.
func (s *PaymentService) CreateIntent(ctx context.Context, accountID string, amount float64, source string) (*domain.PaymentIntent, error) {
	source = strings.TrimSpace(source)
	if math.IsNaN(amount) || amount <= 0 || source == "" {
		return nil, apperrors.NewValidationError("Please provide amount and source", nil)
	}
	cents := int64(math.Round(amount * 100))
	if cents <= 0 {
		return nil, apperrors.NewValidationError("Please provide amount and source", nil)
	}

	intent, err := s.processor.CreateIntent(ctx, cents, s.currency, map[string]string{"OrganizerName": source})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	record := &domain.PaymentIntent{
		ID:            intent.ID,
		AccountID:     accountID,
		OrganizerName: source,
		AmountCents:   cents,
		Currency:      s.currency,
		ClientSecret:  intent.ClientSecret,
	}
	if s.intents != nil {
		if err := s.intents.Create(ctx, record); err != nil {
			return nil, apperrors.ToDomainError(err)
		}
	}
	s.logger.Info("payment intent created",
		zap.String("intent_id", record.ID),
		zap.String("organizer", source),
		zap.Int64("amount_cents", cents))
	return record, nil
}
