package workdays

import (
	"testing"
	"time"
)

func TestPreviousWorkingDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Singapore")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	tests := []struct {
		name string
		date time.Time
		want time.Time
	}{
		{
			name: "monday returns preceding friday",
			date: time.Date(2024, 10, 14, 9, 0, 0, 0, loc), // Monday
			want: time.Date(2024, 10, 11, 0, 0, 0, 0, loc), // Friday
		},
		{
			name: "tuesday returns preceding monday",
			date: time.Date(2024, 10, 15, 0, 0, 0, 0, loc),
			want: time.Date(2024, 10, 14, 0, 0, 0, 0, loc),
		},
		{
			name: "saturday returns preceding friday",
			date: time.Date(2024, 10, 12, 13, 30, 0, 0, loc),
			want: time.Date(2024, 10, 11, 0, 0, 0, 0, loc),
		},
		{
			name: "sunday returns preceding friday",
			date: time.Date(2024, 10, 13, 0, 0, 0, 0, loc),
			want: time.Date(2024, 10, 11, 0, 0, 0, 0, loc),
		},
		{
			name: "wednesday returns tuesday",
			date: time.Date(2024, 10, 16, 23, 59, 0, 0, loc),
			want: time.Date(2024, 10, 15, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PreviousWorkingDay(tt.date, loc)
			if !got.Equal(tt.want) {
				t.Errorf("PreviousWorkingDay(%v) = %v, want %v", tt.date, got, tt.want)
			}
			if got.Hour() != 0 || got.Minute() != 0 {
				t.Errorf("expected midnight, got %v", got)
			}
			wd := got.Weekday()
			if wd == time.Saturday || wd == time.Sunday {
				t.Errorf("result %v lands on a weekend", got)
			}
		})
	}
}
