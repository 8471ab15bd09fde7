package app

import "testing"

func TestPlanPrice(t *testing.T) {
	testCases := []struct {
		name      string
		days      int
		flatCount int
		want      int64
		wantErr   error
	}{
		{
			name:      "90 day plan at 150 paise per flat per day",
			days:      90,
			flatCount: 20,
			want:      20 * 90 * 150,
		},
		{
			name:      "180 day plan at 125 paise per flat per day",
			days:      180,
			flatCount: 12,
			want:      12 * 180 * 125,
		},
		{
			name:      "360 day plan at 100 paise per flat per day",
			days:      360,
			flatCount: 50,
			want:      50 * 360 * 100,
		},
		{
			name:      "540 day plan is a year plus a discounted half year",
			days:      540,
			flatCount: 12,
			want:      12 * (360*100 + 180*75),
		},
		{
			name:      "unsupported duration",
			days:      30,
			flatCount: 12,
			wantErr:   ErrUnsupportedPlan,
		},
		{
			name:      "zero flat count",
			days:      90,
			flatCount: 0,
			wantErr:   ErrUnsupportedPlan,
		},
		{
			name:      "negative flat count",
			days:      90,
			flatCount: -5,
			wantErr:   ErrUnsupportedPlan,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PlanPrice(tc.days, tc.flatCount)
			if tc.wantErr != nil {
				if err != tc.wantErr {
					t.Fatalf("expected error %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected price %d, got %d", tc.want, got)
			}
		})
	}
}

func TestMinFlatCount(t *testing.T) {
	testCases := []struct {
		name            string
		totalProperties int
		want            int
	}{
		{name: "small society is floored", totalProperties: 4, want: 12},
		{name: "zero properties is floored", totalProperties: 0, want: 12},
		{name: "exactly at the floor", totalProperties: 12, want: 12},
		{name: "large society uses its property count", totalProperties: 48, want: 48},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MinFlatCount(tc.totalProperties); got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
