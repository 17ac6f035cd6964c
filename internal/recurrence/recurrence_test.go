package recurrence

import (
	"testing"

	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/stretchr/testify/assert"
)

func d(s string) calendar.Date { return calendar.MustParse(s) }

func keys(dates []calendar.Date) []string {
	out := make([]string, len(dates))
	for i, x := range dates {
		out[i] = x.String()
	}
	return out
}

func TestOccurrencesInWindow(t *testing.T) {
	tests := []struct {
		name        string
		start       string
		freq        calendar.Frequency
		windowStart string
		days        int
		want        []string
	}{
		{
			name: "weekly inside window", start: "2024-03-01", freq: calendar.Weekly,
			windowStart: "2024-03-01", days: 14,
			want: []string{"2024-03-01", "2024-03-08", "2024-03-15"},
		},
		{
			name: "start before window is stepped over", start: "2024-01-05", freq: calendar.Biweekly,
			windowStart: "2024-03-01", days: 30,
			want: []string{"2024-03-01", "2024-03-15", "2024-03-29"},
		},
		{
			name: "start after window", start: "2024-06-01", freq: calendar.Monthly,
			windowStart: "2024-03-01", days: 30,
			want: nil,
		},
		{
			name: "one-time inside window", start: "2024-03-10", freq: calendar.OneTime,
			windowStart: "2024-03-01", days: 30,
			want: []string{"2024-03-10"},
		},
		{
			name: "empty frequency steps monthly", start: "2024-03-10", freq: "",
			windowStart: "2024-03-01", days: 40,
			want: []string{"2024-03-10", "2024-04-10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OccurrencesInWindow(d(tt.start), tt.freq, d(tt.windowStart), tt.days)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, keys(got))
		})
	}
}

// Jan 31 has no February counterpart; stepping clips to the last day of the
// month and the clipped day then carries forward.
func TestOccurrencesInWindowMonthEnd(t *testing.T) {
	got := OccurrencesInWindow(d("2024-01-31"), calendar.Monthly, d("2024-01-01"), 90)
	assert.Equal(t, []string{"2024-01-31", "2024-02-29", "2024-03-29"}, keys(got))
}

func TestOccurrencesInWindowTerminates(t *testing.T) {
	got := OccurrencesInWindow(d("1990-01-01"), calendar.Weekly, d("2024-01-01"), 30)
	assert.Empty(t, got, "a start too far back exhausts the step cap before reaching the window")
}

func TestOccurrencesLieInWindowAndOnCadence(t *testing.T) {
	starts := []string{"2024-01-01", "2024-02-14", "2023-12-31", "2024-03-05"}
	freqs := []calendar.Frequency{calendar.Weekly, calendar.Biweekly, calendar.Monthly, calendar.Quarterly}
	windowStart := d("2024-02-01")
	windowEnd := windowStart.AddDays(60)

	for _, s := range starts {
		for _, f := range freqs {
			for _, occ := range OccurrencesInWindow(d(s), f, windowStart, 60) {
				assert.True(t, occ.Between(windowStart, windowEnd), "%s outside window", occ)

				reached := false
				cur := d(s)
				for i := 0; i < MaxOccurrenceSteps; i++ {
					if cur.Equal(occ) {
						reached = true
						break
					}
					cur = calendar.Next(cur, f)
				}
				assert.True(t, reached, "%s not reachable from %s by %s", occ, s, f)
			}
		}
	}
}

func TestPaydays(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		reference string
		freq      calendar.Frequency
		want      []string
	}{
		{
			name: "reference inside window", start: "2024-03-01", end: "2024-03-31",
			reference: "2024-03-08", freq: calendar.Biweekly,
			want: []string{"2024-03-08", "2024-03-22"},
		},
		{
			name: "reference far in the future", start: "2024-03-01", end: "2024-03-31",
			reference: "2024-09-13", freq: calendar.Biweekly,
			want: []string{"2024-03-01", "2024-03-15", "2024-03-29"},
		},
		{
			name: "reference in the past", start: "2024-03-01", end: "2024-03-20",
			reference: "2024-01-05", freq: calendar.Weekly,
			want: []string{"2024-03-01", "2024-03-08", "2024-03-15"},
		},
		{
			name: "window edges are inclusive", start: "2024-03-01", end: "2024-03-15",
			reference: "2024-03-01", freq: calendar.Biweekly,
			want: []string{"2024-03-01", "2024-03-15"},
		},
		{
			name: "inverted window", start: "2024-03-15", end: "2024-03-01",
			reference: "2024-03-01", freq: calendar.Weekly,
			want: nil,
		},
		{
			name: "month-end reference keeps its day", start: "2024-03-01", end: "2024-05-31",
			reference: "2024-05-31", freq: calendar.Monthly,
			want: []string{"2024-03-31", "2024-04-30", "2024-05-31"},
		},
		{
			name: "no payday between month-end dates", start: "2024-05-30", end: "2024-05-30",
			reference: "2024-05-31", freq: calendar.Monthly,
			want: nil,
		},
		{
			name: "month-end reference before the window", start: "2024-02-01", end: "2024-04-30",
			reference: "2024-01-31", freq: calendar.Monthly,
			want: []string{"2024-02-29", "2024-03-31", "2024-04-30"},
		},
		{
			name: "missing reference", start: "2024-03-01", end: "2024-03-31",
			reference: "", freq: calendar.Weekly,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := calendar.Date{}
			if tt.reference != "" {
				ref = d(tt.reference)
			}
			got := PaydateStrings(d(tt.start), d(tt.end), ref, tt.freq)
			if tt.want == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, len(got), CountPaydays(d(tt.start), d(tt.end), ref, tt.freq))
		})
	}
}

func TestCountMatchesEnumeration(t *testing.T) {
	refs := []string{"2023-11-03", "2024-03-01", "2024-03-17", "2025-01-31"}
	freqs := []calendar.Frequency{calendar.Weekly, calendar.Biweekly, calendar.Monthly, calendar.OneTime}
	windows := [][2]string{
		{"2024-03-01", "2024-03-31"},
		{"2024-02-10", "2024-05-10"},
		{"2024-03-17", "2024-03-17"},
	}

	for _, r := range refs {
		for _, f := range freqs {
			for _, w := range windows {
				n := CountPaydays(d(w[0]), d(w[1]), d(r), f)
				assert.Len(t, PaydateStrings(d(w[0]), d(w[1]), d(r), f), n, "ref %s freq %s window %v", r, f, w)
			}
		}
	}
}
