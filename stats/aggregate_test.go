package stats

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateEmpty(t *testing.T) {
	totals := Aggregate(nil)
	if totals != (Totals{}) {
		t.Fatalf("aggregate of nothing = %+v, want zero value", totals)
	}
}

func TestAggregateZeroDenominators(t *testing.T) {
	totals := Aggregate([]DailyStat{
		{NewClients: 5},
		{NewClients: 3},
	})
	if totals.NewClients != 8 {
		t.Errorf("new clients = %d, want 8", totals.NewClients)
	}
	if totals.CEConversionRate != 0 || totals.AGConversionRate != 0 || totals.ATConversionRate != 0 {
		t.Errorf("rates with zero denominators = %v/%v/%v, want all 0",
			totals.CEConversionRate, totals.AGConversionRate, totals.ATConversionRate)
	}
}

func TestAggregateSumsBeforeDividing(t *testing.T) {
	// Day one converts 4/10, day two 6/20. The correct pooled rate is
	// 10/30 = 33.33%, not the 35% average of the two daily rates.
	daily := []DailyStat{
		{ContactAttempts: 10, EffectiveContacts: 4},
		{ContactAttempts: 20, EffectiveContacts: 6},
	}

	totals := Aggregate(daily)
	if totals.ContactAttempts != 30 {
		t.Errorf("attempts = %d, want 30", totals.ContactAttempts)
	}
	if totals.EffectiveContacts != 10 {
		t.Errorf("effective = %d, want 10", totals.EffectiveContacts)
	}
	want := 10.0 / 30.0 * 100
	if !almostEqual(totals.CEConversionRate, want) {
		t.Errorf("CE rate = %v, want %v", totals.CEConversionRate, want)
	}
}

func TestAggregateAllRates(t *testing.T) {
	totals := Aggregate([]DailyStat{{
		NewClients:        12,
		ContactAttempts:   40,
		EffectiveContacts: 20,
		ScheduledVisits:   10,
		AwaitingVisits:    8,
		CompletedVisits:   6,
		Enrollments:       3,
	}})

	if !almostEqual(totals.CEConversionRate, 50) {
		t.Errorf("CE = %v, want 50", totals.CEConversionRate)
	}
	if !almostEqual(totals.AGConversionRate, 50) {
		t.Errorf("AG = %v, want 50", totals.AGConversionRate)
	}
	if !almostEqual(totals.ATConversionRate, 75) {
		t.Errorf("AT = %v, want 75", totals.ATConversionRate)
	}
}

func TestAggregateSplitInvariance(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var daily []DailyStat
	for i := 0; i < 10; i++ {
		daily = append(daily, DailyStat{
			Date:              base.AddDate(0, 0, i),
			NewClients:        i,
			ContactAttempts:   i * 3,
			EffectiveContacts: i,
			ScheduledVisits:   i / 2,
			AwaitingVisits:    i / 2,
			CompletedVisits:   i / 3,
			Enrollments:       i / 5,
		})
	}

	whole := Aggregate(daily)

	// Raw counters over any split of the days must sum to the whole.
	first := Aggregate(daily[:4])
	second := Aggregate(daily[4:])
	if first.ContactAttempts+second.ContactAttempts != whole.ContactAttempts {
		t.Errorf("attempts split: %d + %d != %d",
			first.ContactAttempts, second.ContactAttempts, whole.ContactAttempts)
	}
	if first.Enrollments+second.Enrollments != whole.Enrollments {
		t.Errorf("enrollments split: %d + %d != %d",
			first.Enrollments, second.Enrollments, whole.Enrollments)
	}
}
