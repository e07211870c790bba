package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SalesSummary aggregates an organizer's ledger.
type SalesSummary struct {
	TotalSales    float64 `json:"totalSales"`
	TicketCount   int     `json:"numberOfTickets"`
	RedeemedCount int     `json:"totalScannedTickets"`
}

// WeeklySales buckets ledger revenue by ISO week.
type WeeklySales struct {
	TicketCount int                `json:"numberOfTickets"`
	Weeks       map[string]float64 `json:"weeklySales"`
}

// ParsePrice reads a decimal price. Missing or non-numeric prices count as zero.
func ParsePrice(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ISOWeekKey formats t as "<year>-W<week>" using the ISO 8601 week-numbering year.
func ISOWeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%d", year, week)
}

// SummarizeSales computes totals over a ledger snapshot.
func SummarizeSales(entries []LedgerEntry) SalesSummary {
	summary := SalesSummary{TicketCount: len(entries)}
	for _, e := range entries {
		summary.TotalSales += ParsePrice(e.Price)
		if e.Redeemed {
			summary.RedeemedCount++
		}
	}
	return summary
}

// BucketWeeklySales groups ledger revenue by the ISO week of creation.
func BucketWeeklySales(entries []LedgerEntry) WeeklySales {
	result := WeeklySales{TicketCount: len(entries), Weeks: make(map[string]float64)}
	for _, e := range entries {
		result.Weeks[ISOWeekKey(e.CreatedAt)] += ParsePrice(e.Price)
	}
	return result
}
