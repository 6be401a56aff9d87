package scheduling

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
)

// GetAvailableSlots expands the doctor's daily slot templates over [from, to)
// and removes every window blocked by an existing non-cancelled appointment.
// Slots are returned in chronological order.
func (s *Service) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Slot, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: range end must be after range start", ErrValidation)
	}

	doctor, err := s.repo.GetDoctorByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsActive {
		return nil, ErrDoctorNotFound
	}

	offsets := parseTemplates(doctor.SlotTemplates)
	if len(offsets) == 0 {
		return []Slot{}, nil
	}

	// Appointments starting just before the range can still block its first
	// slots, so the lookback extends one slot duration.
	booked, err := s.repo.ListDoctorAppointmentsBetween(ctx, doctorID, from.Add(-s.slotDuration), to)
	if err != nil {
		return nil, fmt.Errorf("load existing appointments: %w", err)
	}

	slots := []Slot{}
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())

	for day.Before(to) {
		for _, off := range offsets {
			start := day.Add(off)
			if start.Before(from) || !start.Before(to) {
				continue
			}
			if overlapsAny(start, s.slotDuration, booked) {
				continue
			}
			slots = append(slots, Slot{
				DoctorID: doctorID,
				Start:    start,
				End:      start.Add(s.slotDuration),
			})
		}
		day = day.AddDate(0, 0, 1)
	}

	return slots, nil
}

// parseTemplates converts "HH:MM" strings into sorted offsets from midnight.
// Malformed entries are skipped so one bad template cannot hide a doctor's
// whole schedule.
func parseTemplates(templates []string) []time.Duration {
	offsets := make([]time.Duration, 0, len(templates))
	for _, tpl := range templates {
		t, err := time.Parse("15:04", tpl)
		if err != nil {
			log.Printf("skipping malformed slot template %q: %v", tpl, err)
			continue
		}
		offsets = append(offsets, time.Duration(t.Hour())*time.Hour+time.Duration(t.Minute())*time.Minute)
	}

	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	return offsets
}

func overlapsAny(start time.Time, d time.Duration, booked []Appointment) bool {
	end := start.Add(d)
	for _, b := range booked {
		bEnd := b.AppointmentDate.Add(d)
		if b.AppointmentDate.Before(end) && bEnd.After(start) {
			return true
		}
	}
	return false
}
