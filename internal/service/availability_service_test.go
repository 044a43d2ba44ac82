package service

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/appointment"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func seedAppointment(t *testing.T, repo *fakeAppointmentRepo, providerID uuid.UUID, start time.Time, mins int, status appointment.Status) *appointment.Appointment {
	t.Helper()
	a := &appointment.Appointment{
		Number:       appointment.NewNumber(),
		PatientID:    uuid.New(),
		ProviderID:   providerID,
		ScheduledAt:  start,
		DurationMins: mins,
		Status:       status,
		Priority:     appointment.PriorityNormal,
		CreatedBy:    uuid.New(),
	}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestFindConflict(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := NewAvailabilityService(repo, zap.NewNop())
	provider := uuid.New()
	nine := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	booked := seedAppointment(t, repo, provider, nine, 30, appointment.StatusScheduled)
	seedAppointment(t, repo, provider, nine.Add(2*time.Hour), 30, appointment.StatusCancelled)

	t.Run("overlapping slot conflicts", func(t *testing.T) {
		conflict, err := svc.FindConflict(context.Background(), provider,
			appointment.Slot{Start: nine.Add(15 * time.Minute), DurationMins: 30}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if conflict == nil {
			t.Fatal("expected conflict")
		}
		if !conflict.Start.Equal(nine) {
			t.Errorf("conflict start = %v, want %v", conflict.Start, nine)
		}
	})

	t.Run("touching slot is free", func(t *testing.T) {
		free, err := svc.IsFree(context.Background(), provider, nine.Add(30*time.Minute), 30, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !free {
			t.Error("slot starting at the previous end should be free")
		}
	})

	t.Run("cancelled appointment does not block", func(t *testing.T) {
		free, err := svc.IsFree(context.Background(), provider, nine.Add(2*time.Hour), 30, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !free {
			t.Error("cancelled appointment should not occupy its slot")
		}
	})

	t.Run("other provider is unaffected", func(t *testing.T) {
		free, err := svc.IsFree(context.Background(), uuid.New(), nine, 30, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !free {
			t.Error("another provider's calendar should be free")
		}
	})

	t.Run("excluded appointment does not conflict with itself", func(t *testing.T) {
		free, err := svc.IsFree(context.Background(), provider, nine, 30, &booked.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !free {
			t.Error("appointment should not conflict with itself when excluded")
		}
	})

	t.Run("invalid duration rejected", func(t *testing.T) {
		if _, err := svc.FindConflict(context.Background(), provider, appointment.Slot{Start: nine}, nil); err == nil {
			t.Error("expected error for zero duration")
		}
	})
}

func TestFreeSlots(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := NewAvailabilityService(repo, zap.NewNop())
	provider := uuid.New()
	nine := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	// Booked 09:30-10:00 inside a 09:00-11:00 window of 30-minute slots.
	seedAppointment(t, repo, provider, nine.Add(30*time.Minute), 30, appointment.StatusConfirmed)

	slots, err := svc.FreeSlots(context.Background(), provider, nine, nine.Add(2*time.Hour), 30)
	if err != nil {
		t.Fatal(err)
	}

	want := []time.Time{nine, nine.Add(time.Hour), nine.Add(90 * time.Minute)}
	if len(slots) != len(want) {
		t.Fatalf("got %d free slots, want %d", len(slots), len(want))
	}
	for i, w := range want {
		if !slots[i].Start.Equal(w) {
			t.Errorf("slots[%d].Start = %v, want %v", i, slots[i].Start, w)
		}
	}
}

func TestFreeSlotsEmptyDayFillsWindow(t *testing.T) {
	svc := NewAvailabilityService(newFakeAppointmentRepo(), zap.NewNop())
	nine := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	slots, err := svc.FreeSlots(context.Background(), uuid.New(), nine, nine.Add(time.Hour), 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 {
		t.Fatalf("got %d free slots on an empty day, want 2", len(slots))
	}
}

func TestFreeSlotsRejectsInvertedWindow(t *testing.T) {
	svc := NewAvailabilityService(newFakeAppointmentRepo(), zap.NewNop())
	nine := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	if _, err := svc.FreeSlots(context.Background(), uuid.New(), nine, nine, 30); err == nil {
		t.Error("expected error for empty window")
	}
}
