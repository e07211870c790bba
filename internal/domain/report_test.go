package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	cases := map[string]float64{
		"20":    20,
		" 12.5": 12.5,
		"":      0,
		"free":  0,
		"-3":    -3,
	}
	for in, want := range cases {
		assert.InDelta(t, want, ParsePrice(in), 1e-9, "input %q", in)
	}
}

func TestISOWeekKey(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC), "2024-W1"},
		{time.Date(2024, 12, 30, 10, 0, 0, 0, time.UTC), "2025-W1"},
		{time.Date(2021, 1, 1, 10, 0, 0, 0, time.UTC), "2020-W53"},
		{time.Date(2023, 6, 15, 23, 0, 0, 0, time.UTC), "2023-W24"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ISOWeekKey(tc.date), tc.date.String())
	}
}

func TestSummarizeSales(t *testing.T) {
	entries := []LedgerEntry{
		{Code: "T1", Price: "20", Redeemed: false},
		{Code: "T2", Price: "30", Redeemed: true},
	}
	got := SummarizeSales(entries)
	assert.Equal(t, SalesSummary{TotalSales: 50, TicketCount: 2, RedeemedCount: 1}, got)
}

func TestSummarizeSales_LenientPrices(t *testing.T) {
	entries := []LedgerEntry{
		{Code: "A", Price: "10.5"},
		{Code: "B", Price: "n/a"},
		{Code: "C", Price: ""},
	}
	got := SummarizeSales(entries)
	assert.InDelta(t, 10.5, got.TotalSales, 1e-9)
	assert.Equal(t, 3, got.TicketCount)
	assert.Zero(t, got.RedeemedCount)
}

func TestBucketWeeklySales_MatchesTotal(t *testing.T) {
	base := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	entries := []LedgerEntry{
		{Code: "T1", Price: "20", CreatedAt: base},
		{Code: "T2", Price: "30", CreatedAt: base.Add(24 * time.Hour)},
		{Code: "T3", Price: "15.25", CreatedAt: base.Add(8 * 24 * time.Hour)},
		{Code: "T4", Price: "bogus", CreatedAt: base.Add(30 * 24 * time.Hour)},
	}

	weekly := BucketWeeklySales(entries)
	assert.Equal(t, 4, weekly.TicketCount)
	assert.InDelta(t, 50, weekly.Weeks["2024-W10"], 1e-9)
	assert.InDelta(t, 15.25, weekly.Weeks["2024-W11"], 1e-9)
	assert.Contains(t, weekly.Weeks, "2024-W14")

	var sum float64
	for _, v := range weekly.Weeks {
		sum += v
	}
	assert.InDelta(t, SummarizeSales(entries).TotalSales, sum, 1e-9)
}
