package stats

import (
	"context"
	"sync"
	"time"
)

// LeadCounter is the slice of the store the period comparator needs: how many
// active leads a unit registered inside a window.
type LeadCounter interface {
	CountLeadsCreatedBetween(ctx context.Context, unitID uint, start, end time.Time) (int64, error)
}

// PeriodStat is the lead count for a rolling window and its difference
// against the equivalent window one year earlier.
type PeriodStat struct {
	Total      int64 `json:"total"`
	Comparison int64 `json:"comparison"`
}

// LeadsStats holds the four standard windows.
type LeadsStats struct {
	OneMonth     PeriodStat `json:"one_month"`
	ThreeMonths  PeriodStat `json:"three_months"`
	SixMonths    PeriodStat `json:"six_months"`
	TwelveMonths PeriodStat `json:"twelve_months"`
}

// ComparePeriod computes the lead count for the window covering the last
// monthsAgo calendar months (inclusive of the current month) and compares it
// with the same window twelve months earlier.
func ComparePeriod(ctx context.Context, counter LeadCounter, unitID uint, monthsAgo int, now time.Time) (PeriodStat, error) {
	periodStart := startOfMonth(now).AddDate(0, -(monthsAgo - 1), 0)
	periodEnd := endOfMonth(now)

	lastYearStart := startOfMonth(now).AddDate(0, -(monthsAgo + 11), 0)
	lastYearEnd := endOfMonth(startOfMonth(now).AddDate(0, -12, 0))

	var current, lastYear int64
	var currentErr, lastYearErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		current, currentErr = counter.CountLeadsCreatedBetween(ctx, unitID, periodStart, periodEnd)
	}()
	go func() {
		defer wg.Done()
		lastYear, lastYearErr = counter.CountLeadsCreatedBetween(ctx, unitID, lastYearStart, lastYearEnd)
	}()
	wg.Wait()

	if currentErr != nil {
		return PeriodStat{}, currentErr
	}
	if lastYearErr != nil {
		return PeriodStat{}, lastYearErr
	}
	return PeriodStat{Total: current, Comparison: current - lastYear}, nil
}

// CompareAllWindows computes the 1/3/6/12 month windows concurrently. The
// windows are independent read-only counts, so there is no ordering between
// them; the first error wins.
func CompareAllWindows(ctx context.Context, counter LeadCounter, unitID uint, now time.Time) (*LeadsStats, error) {
	windows := []int{1, 3, 6, 12}
	results := make([]PeriodStat, len(windows))
	errs := make([]error, len(windows))

	var wg sync.WaitGroup
	for i, months := range windows {
		wg.Add(1)
		go func(i, months int) {
			defer wg.Done()
			results[i], errs[i] = ComparePeriod(ctx, counter, unitID, months, now)
		}(i, months)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return &LeadsStats{
		OneMonth:     results[0],
		ThreeMonths:  results[1],
		SixMonths:    results[2],
		TwelveMonths: results[3],
	}, nil
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func endOfMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}
