package recurrence

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func mustGenerate(t *testing.T, anchor time.Time, p *Pattern, b Bound) []time.Time {
	t.Helper()
	dates, err := Generate(anchor, p, b)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return dates
}

func assertDates(t *testing.T, got, want []time.Time) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d dates, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("dates[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestGenerateWeekly(t *testing.T) {
	p := &Pattern{Frequency: FrequencyWeekly, Interval: 1}
	got := mustGenerate(t, date(2026, time.March, 2), p, Bound{MaxCount: 3})
	assertDates(t, got, []time.Time{
		date(2026, time.March, 9),
		date(2026, time.March, 16),
		date(2026, time.March, 23),
	})
}

func TestGenerateBiweekly(t *testing.T) {
	p := &Pattern{Frequency: FrequencyBiweekly, Interval: 1}
	got := mustGenerate(t, date(2026, time.March, 2), p, Bound{MaxCount: 2})
	assertDates(t, got, []time.Time{
		date(2026, time.March, 16),
		date(2026, time.March, 30),
	})
}

func TestGenerateExcludesAnchor(t *testing.T) {
	p := &Pattern{Frequency: FrequencyDaily, Interval: 1}
	anchor := date(2026, time.March, 2)
	for _, d := range mustGenerate(t, anchor, p, Bound{MaxCount: 5}) {
		if d.Equal(anchor) {
			t.Fatal("anchor date appeared in generated series")
		}
	}
}

// A monthly series anchored on Jan 31 clamps to the end of February and the
// following step re-bases from the clamped day, so the series stays on the
// 28th/29th instead of jumping back to the 31st.
func TestGenerateMonthlyClampRebases(t *testing.T) {
	p := &Pattern{Frequency: FrequencyMonthly, Interval: 1}
	got := mustGenerate(t, date(2024, time.January, 31), p, Bound{MaxCount: 3})
	assertDates(t, got, []time.Time{
		date(2024, time.February, 29), // leap year
		date(2024, time.March, 29),
		date(2024, time.April, 29),
	})
}

func TestGenerateMonthlyClampNonLeap(t *testing.T) {
	p := &Pattern{Frequency: FrequencyMonthly, Interval: 1}
	got := mustGenerate(t, date(2026, time.January, 31), p, Bound{MaxCount: 2})
	assertDates(t, got, []time.Time{
		date(2026, time.February, 28),
		date(2026, time.March, 28),
	})
}

func TestGenerateMonthlyPreservesTimeOfDay(t *testing.T) {
	p := &Pattern{Frequency: FrequencyMonthly, Interval: 1}
	got := mustGenerate(t, date(2026, time.March, 15), p, Bound{MaxCount: 1})
	if h, m, _ := got[0].Clock(); h != 10 || m != 30 {
		t.Errorf("time of day = %02d:%02d, want 10:30", h, m)
	}
}

func TestGenerateQuarterly(t *testing.T) {
	p := &Pattern{Frequency: FrequencyQuarterly, Interval: 1}
	got := mustGenerate(t, date(2026, time.January, 15), p, Bound{MaxCount: 4})
	assertDates(t, got, []time.Time{
		date(2026, time.April, 15),
		date(2026, time.July, 15),
		date(2026, time.October, 15),
		date(2027, time.January, 15),
	})
}

func TestGenerateYearlyLeapDayClamps(t *testing.T) {
	p := &Pattern{Frequency: FrequencyYearly, Interval: 1}
	got := mustGenerate(t, date(2024, time.February, 29), p, Bound{MaxCount: 4})
	assertDates(t, got, []time.Time{
		date(2025, time.February, 28),
		date(2026, time.February, 28),
		date(2027, time.February, 28),
		date(2028, time.February, 28), // re-based to the 28th, stays there
	})
}

func TestGenerateRespectsEndDate(t *testing.T) {
	end := date(2026, time.March, 20)
	p := &Pattern{Frequency: FrequencyWeekly, Interval: 1, EndDate: &end}
	got := mustGenerate(t, date(2026, time.March, 2), p, Bound{})
	assertDates(t, got, []time.Time{
		date(2026, time.March, 9),
		date(2026, time.March, 16),
	})
}

func TestGenerateRespectsMaxOccurrences(t *testing.T) {
	max := 2
	p := &Pattern{Frequency: FrequencyDaily, Interval: 1, MaxOccurrences: &max}
	got := mustGenerate(t, date(2026, time.March, 2), p, Bound{})
	if len(got) != 2 {
		t.Fatalf("got %d dates, want 2", len(got))
	}
}

func TestGenerateTightestBoundWins(t *testing.T) {
	max := 10
	until := date(2026, time.March, 10)
	p := &Pattern{Frequency: FrequencyDaily, Interval: 1, MaxOccurrences: &max}
	got := mustGenerate(t, date(2026, time.March, 2), p, Bound{Until: &until, MaxCount: 20})
	if len(got) != 8 {
		t.Fatalf("got %d dates, want 8 (until bound)", len(got))
	}
}

func TestGenerateUnboundedHitsSafetyCap(t *testing.T) {
	p := &Pattern{Frequency: FrequencyDaily, Interval: 1}
	dates, err := Generate(date(2026, time.March, 2), p, Bound{})
	if !errors.Is(err, ErrGenerationCapped) {
		t.Fatalf("err = %v, want ErrGenerationCapped", err)
	}
	if len(dates) != generationCap {
		t.Errorf("got %d dates at cap, want %d", len(dates), generationCap)
	}
	// The partial result is still ordered and strictly increasing.
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			t.Fatalf("dates[%d] %v not after dates[%d] %v", i, dates[i], i-1, dates[i-1])
		}
	}
}

func TestGenerateRejectsUnknownFrequency(t *testing.T) {
	p := &Pattern{Frequency: "fortnightly", Interval: 1}
	if _, err := Generate(date(2026, time.March, 2), p, Bound{MaxCount: 1}); !errors.Is(err, ErrUnknownFrequency) {
		t.Fatalf("err = %v, want ErrUnknownFrequency", err)
	}
}

func TestGenerateRejectsNonPositiveInterval(t *testing.T) {
	p := &Pattern{Frequency: FrequencyWeekly, Interval: 0}
	if _, err := Generate(date(2026, time.March, 2), p, Bound{MaxCount: 1}); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("err = %v, want ErrInvalidInterval", err)
	}
}

func TestAddMonthsClampedAvoidsNormalization(t *testing.T) {
	// time.AddDate would turn Jan 31 + 1 month into Mar 2/3.
	got := addMonthsClamped(date(2026, time.January, 31), 1)
	if got.Month() != time.February || got.Day() != 28 {
		t.Errorf("got %v, want Feb 28", got)
	}

	// December wraps the year.
	got = addMonthsClamped(date(2026, time.December, 15), 2)
	if got.Year() != 2027 || got.Month() != time.February {
		t.Errorf("got %v, want Feb 2027", got)
	}
}
