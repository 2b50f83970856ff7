package mealplan

import (
	"testing"
	"time"
)

func TestCurrentWeekStart(t *testing.T) {
	tests := []struct {
		name string
		day  time.Time
		want string
	}{
		{"monday maps to itself", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), "2025-03-10"},
		{"wednesday maps back to monday", time.Date(2025, 3, 12, 23, 59, 0, 0, time.UTC), "2025-03-10"},
		{"sunday maps back six days", time.Date(2025, 3, 16, 0, 0, 1, 0, time.UTC), "2025-03-10"},
		{"year boundary", time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), "2025-12-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentWeekStart(tt.day); got != tt.want {
				t.Fatalf("CurrentWeekStart(%v) = %q, want %q", tt.day, got, tt.want)
			}
		})
	}
}
