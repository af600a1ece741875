package stats

import (
	"strings"
	"testing"
)

func TestMonthlyCountsQuery_BucketsByBookingTime(t *testing.T) {
	if !strings.Contains(monthlyCountsQuery, "EXTRACT(YEAR FROM created_at)") ||
		!strings.Contains(monthlyCountsQuery, "EXTRACT(MONTH FROM created_at)") {
		t.Fatalf("monthly trend must group on created_at:\n%s", monthlyCountsQuery)
	}
	if !strings.Contains(monthlyCountsQuery, "created_at >= $1") {
		t.Fatalf("monthly trend must window on created_at:\n%s", monthlyCountsQuery)
	}
	// Grouping on the visit date would drop future-dated bookings from
	// the series and let rescheduling rewrite past buckets.
	if strings.Contains(monthlyCountsQuery, "appointment_date") {
		t.Fatalf("monthly trend must not reference appointment_date:\n%s", monthlyCountsQuery)
	}
}
