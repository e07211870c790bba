package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-ticketing/internal/domain"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util"
)

func seedAcmeFest(store *memStore) {
	store.seedEntry(domain.LedgerEntry{OrganizerName: "AcmeFest", Code: "T1", Price: "20",
		CreatedAt: time.Date(2024, 12, 30, 18, 0, 0, 0, time.UTC)})
	store.seedEntry(domain.LedgerEntry{OrganizerName: "AcmeFest", Code: "T2", Price: "30", Redeemed: true,
		CreatedAt: time.Date(2024, 12, 20, 9, 0, 0, 0, time.UTC)})
}

func TestReportService_SalesSummary(t *testing.T) {
	store := newMemStore()
	seedAcmeFest(store)
	svc := NewReportService(memOrganizers{store})

	summary, err := svc.SalesSummary(context.Background(), "AcmeFest")
	require.NoError(t, err)
	assert.Equal(t, domain.SalesSummary{TotalSales: 50, TicketCount: 2, RedeemedCount: 1}, *summary)
}

func TestReportService_WeeklySalesMatchesTotal(t *testing.T) {
	store := newMemStore()
	seedAcmeFest(store)
	store.seedEntry(domain.LedgerEntry{OrganizerName: "AcmeFest", Code: "T3", Price: "n/a",
		CreatedAt: time.Date(2024, 12, 31, 9, 0, 0, 0, time.UTC)})
	svc := NewReportService(memOrganizers{store})
	ctx := context.Background()

	weekly, err := svc.WeeklySales(ctx, "AcmeFest")
	require.NoError(t, err)
	assert.Equal(t, 3, weekly.TicketCount)
	assert.Equal(t, map[string]float64{"2025-W1": 20, "2024-W51": 30}, weekly.Weeks)

	summary, err := svc.SalesSummary(ctx, "AcmeFest")
	require.NoError(t, err)
	var sum float64
	for _, v := range weekly.Weeks {
		sum += v
	}
	assert.Equal(t, summary.TotalSales, sum)
}

func TestReportService_UnknownOrganizer(t *testing.T) {
	svc := NewReportService(memOrganizers{newMemStore()})

	_, err := svc.SalesSummary(context.Background(), "Nobody")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	_, err = svc.WeeklySales(context.Background(), "Nobody")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	_, err = svc.WeeklySales(context.Background(), " ")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
