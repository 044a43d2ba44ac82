package recurrence

import "time"

// generationCap bounds every expansion regardless of caller-supplied limits,
// so a malformed pattern can never loop forever. Hitting it returns the dates
// produced so far together with ErrGenerationCapped; callers log and keep the
// partial result.
const generationCap = 1000

// Bound is the caller's own limit on an expansion, applied on top of the
// pattern's EndDate/MaxOccurrences.
type Bound struct {
	Until    *time.Time
	MaxCount int // 0 means no caller count limit
}

// Generate expands pattern into the ordered, strictly increasing dates that
// follow anchor. The anchor itself is excluded: it is the already-booked
// appointment the series hangs off. Each call recomputes from the anchor.
//
// Monthly and quarterly steps clamp a day-of-month that does not exist in the
// target month (Jan 31 + 1 month → Feb 29 in a leap year), and the next step
// re-bases from the clamped day rather than the original one, so a clamped
// series drifts to the shorter day and stays there. Yearly steps clamp
// Feb 29 to Feb 28 in non-leap years.
func Generate(anchor time.Time, p *Pattern, b Bound) ([]time.Time, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var dates []time.Time
	current := anchor

	for i := 0; ; i++ {
		if i >= generationCap {
			return dates, ErrGenerationCapped
		}

		next := nextDate(current, p)

		if b.Until != nil && next.After(*b.Until) {
			return dates, nil
		}
		if p.EndDate != nil && next.After(*p.EndDate) {
			return dates, nil
		}
		if b.MaxCount > 0 && len(dates) >= b.MaxCount {
			return dates, nil
		}
		if p.MaxOccurrences != nil && len(dates) >= *p.MaxOccurrences {
			return dates, nil
		}

		dates = append(dates, next)
		current = next
	}
}

func nextDate(current time.Time, p *Pattern) time.Time {
	switch p.Frequency {
	case FrequencyDaily:
		return current.AddDate(0, 0, p.Interval)
	case FrequencyWeekly:
		return current.AddDate(0, 0, 7*p.Interval)
	case FrequencyBiweekly:
		return current.AddDate(0, 0, 14*p.Interval)
	case FrequencyMonthly:
		return addMonthsClamped(current, p.Interval)
	case FrequencyQuarterly:
		return addMonthsClamped(current, 3*p.Interval)
	case FrequencyYearly:
		return addYearsClamped(current, p.Interval)
	}
	// Unreachable: Validate rejects unknown frequencies before generation.
	return current
}

// addMonthsClamped adds n months keeping the day-of-month, clamping to the
// last day of the target month when the original day does not exist there.
// time.AddDate is deliberately avoided here: it normalizes Jan 31 + 1 month
// into Mar 2/3 instead of clamping.
func addMonthsClamped(t time.Time, n int) time.Time {
	months := int(t.Month()) - 1 + n
	year := t.Year() + months/12
	month := time.Month(months%12 + 1)

	day := t.Day()
	if last := daysInMonth(year, month); day > last {
		day = last
	}

	h, min, sec := t.Clock()
	return time.Date(year, month, day, h, min, sec, t.Nanosecond(), t.Location())
}

// addYearsClamped adds n years, clamping Feb 29 to Feb 28 in non-leap years.
func addYearsClamped(t time.Time, n int) time.Time {
	year := t.Year() + n
	day := t.Day()
	if t.Month() == time.February && day == 29 && daysInMonth(year, time.February) < 29 {
		day = 28
	}

	h, min, sec := t.Clock()
	return time.Date(year, t.Month(), day, h, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
