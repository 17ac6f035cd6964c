package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPreviousRoundTrip(t *testing.T) {
	dates := []string{"2024-01-15", "2024-02-29", "2023-06-30", "2024-12-01", "2025-03-28"}
	freqs := []Frequency{Weekly, Biweekly, Monthly, Quarterly, Annually}

	for _, f := range freqs {
		for _, s := range dates {
			d := MustParse(s)
			if f == Annually && s == "2024-02-29" {
				continue // covered by TestRoundTripClippingIsLossy
			}
			assert.Equal(t, d, Previous(Next(d, f), f), "%s %s", s, f)
		}
	}
}

// Month clipping is lossy by design: the day that was clipped away cannot
// be recovered by stepping back.
func TestRoundTripClippingIsLossy(t *testing.T) {
	jan31 := MustParse("2024-01-31")

	feb := Next(jan31, Monthly)
	assert.Equal(t, "2024-02-29", feb.String())
	assert.Equal(t, "2024-01-29", Previous(feb, Monthly).String())
	assert.Equal(t, "2024-03-29", Next(feb, Monthly).String())

	leap := MustParse("2024-02-29")
	assert.Equal(t, "2025-02-28", Next(leap, Annually).String())
	assert.Equal(t, "2024-02-28", Previous(Next(leap, Annually), Annually).String())
}

func TestNextDefaultsToMonthly(t *testing.T) {
	d := MustParse("2024-04-10")
	assert.Equal(t, "2024-05-10", Next(d, "").String())
	assert.Equal(t, "2024-03-10", Previous(d, "").String())
}

func TestOneTimeDoesNotMove(t *testing.T) {
	d := MustParse("2024-04-10")
	assert.Equal(t, d, Next(d, OneTime))
	assert.Equal(t, d, NextAfter(d, OneTime, MustParse("2025-01-01")))
}

func TestNextAfter(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		freq  Frequency
		today string
		want  string
	}{
		{name: "single step", date: "2024-03-01", freq: Biweekly, today: "2024-03-01", want: "2024-03-15"},
		{name: "future date still advances once", date: "2024-03-20", freq: Weekly, today: "2024-03-01", want: "2024-03-27"},
		{name: "skips stale cycles", date: "2024-01-01", freq: Biweekly, today: "2024-03-01", want: "2024-03-11"},
		{name: "lands exactly on today then skips", date: "2024-02-01", freq: Monthly, today: "2024-03-01", want: "2024-04-01"},
		{name: "month-end anchor survives a short month", date: "2024-01-31", freq: Monthly, today: "2024-03-01", want: "2024-03-31"},
		{name: "one-time does not move", date: "2024-02-01", freq: OneTime, today: "2024-03-01", want: "2024-02-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextAfter(MustParse(tt.date), tt.freq, MustParse(tt.today))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestStepKeepsAnchorDay(t *testing.T) {
	tests := []struct {
		name string
		date string
		freq Frequency
		k    int
		want string
	}{
		{name: "forward past february", date: "2024-01-31", freq: Monthly, k: 2, want: "2024-03-31"},
		{name: "backward past february", date: "2024-05-31", freq: Monthly, k: -3, want: "2024-02-29"},
		{name: "backward to a long month", date: "2024-05-31", freq: Monthly, k: -2, want: "2024-03-31"},
		{name: "quarterly", date: "2023-11-30", freq: Quarterly, k: 1, want: "2024-02-29"},
		{name: "biweekly", date: "2024-03-01", freq: Biweekly, k: -2, want: "2024-02-02"},
		{name: "zero steps", date: "2024-03-01", freq: Weekly, k: 0, want: "2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Step(MustParse(tt.date), tt.freq, tt.k).String())
		})
	}
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency("bi-weekly")
	require.NoError(t, err)
	assert.Equal(t, Biweekly, f)

	f, err = ParseFrequency("")
	require.NoError(t, err)
	assert.Equal(t, Monthly, f)

	_, err = ParseFrequency("hourly")
	assert.Error(t, err)
}

func TestPaychecksPerMonth(t *testing.T) {
	assert.Equal(t, 4, Weekly.PaychecksPerMonth())
	assert.Equal(t, 2, Biweekly.PaychecksPerMonth())
	assert.Equal(t, 1, Monthly.PaychecksPerMonth())
	assert.Equal(t, 1, Frequency("").PaychecksPerMonth())
}
