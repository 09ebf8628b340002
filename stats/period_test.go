package stats

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeCounter returns canned counts keyed by window start and records every
// window it was asked about.
type fakeCounter struct {
	mu     sync.Mutex
	counts map[time.Time]int64
	err    error
	calls  []window
}

type window struct {
	start, end time.Time
}

func (f *fakeCounter) CountLeadsCreatedBetween(_ context.Context, _ uint, start, end time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, window{start, end})
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[start], nil
}

func TestComparePeriod(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	currentStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	priorStart := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	counter := &fakeCounter{counts: map[time.Time]int64{
		currentStart: 12,
		priorStart:   9,
	}}

	stat, err := ComparePeriod(context.Background(), counter, 1, 1, now)
	if err != nil {
		t.Fatalf("ComparePeriod: %v", err)
	}
	if stat.Total != 12 {
		t.Errorf("total = %d, want 12", stat.Total)
	}
	if stat.Comparison != 3 {
		t.Errorf("comparison = %d, want 3", stat.Comparison)
	}
}

func TestComparePeriodWindows(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	counter := &fakeCounter{counts: map[time.Time]int64{}}

	if _, err := ComparePeriod(context.Background(), counter, 1, 3, now); err != nil {
		t.Fatalf("ComparePeriod: %v", err)
	}
	if len(counter.calls) != 2 {
		t.Fatalf("counter called %d times, want 2", len(counter.calls))
	}

	// Three months inclusive of March 2024: January through March, and the
	// same span one year earlier.
	wantCurrent := window{
		start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		end:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
	}
	wantPrior := window{
		start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		end:   time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
	}

	seen := map[window]bool{}
	for _, call := range counter.calls {
		seen[call] = true
	}
	if !seen[wantCurrent] {
		t.Errorf("current window not queried: want %v to %v", wantCurrent.start, wantCurrent.end)
	}
	if !seen[wantPrior] {
		t.Errorf("prior-year window not queried: want %v to %v", wantPrior.start, wantPrior.end)
	}
}

func TestComparePeriodPropagatesError(t *testing.T) {
	boom := errors.New("connection reset")
	counter := &fakeCounter{err: boom}

	_, err := ComparePeriod(context.Background(), counter, 1, 1, time.Now())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestCompareAllWindows(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	counts := map[time.Time]int64{}
	for _, months := range []int{1, 3, 6, 12} {
		start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
		counts[start] = int64(months * 10)
		counts[start.AddDate(-1, 0, 0)] = int64(months)
	}
	counter := &fakeCounter{counts: counts}

	stats, err := CompareAllWindows(context.Background(), counter, 1, now)
	if err != nil {
		t.Fatalf("CompareAllWindows: %v", err)
	}

	cases := []struct {
		name string
		got  PeriodStat
		want PeriodStat
	}{
		{"one month", stats.OneMonth, PeriodStat{Total: 10, Comparison: 9}},
		{"three months", stats.ThreeMonths, PeriodStat{Total: 30, Comparison: 27}},
		{"six months", stats.SixMonths, PeriodStat{Total: 60, Comparison: 54}},
		{"twelve months", stats.TwelveMonths, PeriodStat{Total: 120, Comparison: 108}},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s = %+v, want %+v", tc.name, tc.got, tc.want)
		}
	}

	if len(counter.calls) != 8 {
		t.Errorf("counter called %d times, want 8", len(counter.calls))
	}
}

func TestMonthBoundaries(t *testing.T) {
	// End of January lands on the 31st just before midnight; the prior-year
	// window ends on the matching boundary even across the leap year.
	now := time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)
	counter := &fakeCounter{counts: map[time.Time]int64{}}

	if _, err := ComparePeriod(context.Background(), counter, 1, 1, now); err != nil {
		t.Fatalf("ComparePeriod: %v", err)
	}

	wantEnd := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	wantPriorEnd := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)

	var gotEnds []time.Time
	for _, call := range counter.calls {
		gotEnds = append(gotEnds, call.end)
	}
	found := func(want time.Time) bool {
		for _, got := range gotEnds {
			if got.Equal(want) {
				return true
			}
		}
		return false
	}
	if !found(wantEnd) {
		t.Errorf("current window end %v not queried (got %v)", wantEnd, gotEnds)
	}
	if !found(wantPriorEnd) {
		t.Errorf("prior window end %v not queried (got %v)", wantPriorEnd, gotEnds)
	}
}
