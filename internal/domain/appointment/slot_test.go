package appointment

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2026, time.March, 10, hour, min, 0, 0, time.UTC)
}

func TestSlotOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Slot
		want bool
	}{
		{
			name: "identical slots",
			a:    Slot{Start: at(9, 0), DurationMins: 30},
			b:    Slot{Start: at(9, 0), DurationMins: 30},
			want: true,
		},
		{
			name: "partial overlap",
			a:    Slot{Start: at(9, 0), DurationMins: 30},
			b:    Slot{Start: at(9, 15), DurationMins: 30},
			want: true,
		},
		{
			name: "contained slot",
			a:    Slot{Start: at(9, 0), DurationMins: 60},
			b:    Slot{Start: at(9, 15), DurationMins: 15},
			want: true,
		},
		{
			name: "touching endpoints do not overlap",
			a:    Slot{Start: at(9, 0), DurationMins: 30},
			b:    Slot{Start: at(9, 30), DurationMins: 30},
			want: false,
		},
		{
			name: "disjoint",
			a:    Slot{Start: at(9, 0), DurationMins: 30},
			b:    Slot{Start: at(11, 0), DurationMins: 30},
			want: false,
		},
		{
			name: "zero-length never overlaps",
			a:    Slot{Start: at(9, 15), DurationMins: 0},
			b:    Slot{Start: at(9, 0), DurationMins: 30},
			want: false,
		},
		{
			name: "negative duration never overlaps",
			a:    Slot{Start: at(9, 15), DurationMins: -30},
			b:    Slot{Start: at(9, 0), DurationMins: 30},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("a.Overlaps(b) = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("b.Overlaps(a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewSlotRejectsNonPositiveDuration(t *testing.T) {
	for _, mins := range []int{0, -15} {
		if _, err := NewSlot(at(9, 0), mins); err == nil {
			t.Errorf("NewSlot with %d minutes: expected error", mins)
		}
	}
}

func TestSlotDay(t *testing.T) {
	s := Slot{Start: time.Date(2026, time.March, 10, 14, 45, 0, 0, time.UTC), DurationMins: 30}
	want := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	if got := s.Day(); !got.Equal(want) {
		t.Errorf("Day() = %v, want %v", got, want)
	}
}
