// Package stats computes the derived dashboard numbers: period totals with
// conversion rates, and rolling-window lead counts compared against the same
// window one year earlier.
package stats

import (
	"time"
)

// DailyStat holds one day's raw counters for a unit.
type DailyStat struct {
	Date              time.Time `json:"date"`
	NewClients        int       `json:"new_clients"`
	ContactAttempts   int       `json:"contact_attempts"`
	EffectiveContacts int       `json:"effective_contacts"`
	ScheduledVisits   int       `json:"scheduled_visits"`
	AwaitingVisits    int       `json:"awaiting_visits"`
	CompletedVisits   int       `json:"completed_visits"`
	Enrollments       int       `json:"enrollments"`
}

// Totals is the aggregation of a sequence of daily stats plus the conversion
// rates derived from the summed counters.
type Totals struct {
	NewClients        int `json:"new_clients"`
	ContactAttempts   int `json:"contact_attempts"`
	EffectiveContacts int `json:"effective_contacts"`
	ScheduledVisits   int `json:"scheduled_visits"`
	AwaitingVisits    int `json:"awaiting_visits"`
	CompletedVisits   int `json:"completed_visits"`
	Enrollments       int `json:"enrollments"`

	// Percentages. Zero when the denominator is zero.
	CEConversionRate float64 `json:"ce_conversion_rate"`
	AGConversionRate float64 `json:"ag_conversion_rate"`
	ATConversionRate float64 `json:"at_conversion_rate"`
}

// Aggregate sums the raw counters across all days, then computes the rates
// from the summed totals. Summing first matters: averaging per-day rates
// would weight low-volume days the same as high-volume ones.
func Aggregate(daily []DailyStat) Totals {
	var t Totals
	for _, day := range daily {
		t.NewClients += day.NewClients
		t.ContactAttempts += day.ContactAttempts
		t.EffectiveContacts += day.EffectiveContacts
		t.ScheduledVisits += day.ScheduledVisits
		t.AwaitingVisits += day.AwaitingVisits
		t.CompletedVisits += day.CompletedVisits
		t.Enrollments += day.Enrollments
	}

	t.CEConversionRate = rate(t.EffectiveContacts, t.ContactAttempts)
	t.AGConversionRate = rate(t.ScheduledVisits, t.EffectiveContacts)
	t.ATConversionRate = rate(t.CompletedVisits, t.AwaitingVisits)
	return t
}

func rate(numerator, denominator int) float64 {
	if denominator <= 0 {
		return 0
	}
	return float64(numerator) / float64(denominator) * 100
}
