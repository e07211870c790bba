package service

import (
	"context"
	"strings"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util"
)

// ReportService derives read-only sales views from an organizer's ledger.
type ReportService struct {
	organizers repository.OrganizerRepository
}

// NewReportService constructs the service.
func NewReportService(organizers repository.OrganizerRepository) *ReportService {
	return &ReportService{organizers: organizers}
}

// SalesSummary totals revenue, tickets and redemptions for an organizer.
func (s *ReportService) SalesSummary(ctx context.Context, organizerName string) (*domain.SalesSummary, error) {
	entries, err := s.ledger(ctx, organizerName)
	if err != nil {
		return nil, err
	}
	summary := domain.SummarizeSales(entries)
	return &summary, nil
}

// WeeklySales buckets revenue by ISO week of issuance.
func (s *ReportService) WeeklySales(ctx context.Context, organizerName string) (*domain.WeeklySales, error) {
	entries, err := s.ledger(ctx, organizerName)
	if err != nil {
		return nil, err
	}
	weekly := domain.BucketWeeklySales(entries)
	return &weekly, nil
}

func (s *ReportService) ledger(ctx context.Context, organizerName string) ([]domain.LedgerEntry, error) {
	organizerName = strings.TrimSpace(organizerName)
	if organizerName == "" {
		return nil, apperrors.NewValidationError("Please provide organizerName", nil)
	}
	if _, err := s.organizers.GetByName(ctx, organizerName); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("Organizer", map[string]any{"organizer": organizerName})
		}
		return nil, apperrors.ToDomainError(err)
	}
	entries, err := s.organizers.ListEntries(ctx, organizerName)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return entries, nil
}
