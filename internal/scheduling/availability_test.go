package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGetAvailableSlotsExpandsTemplates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	day := futureAt(0, 0)
	from := day
	to := day.AddDate(0, 0, 1)

	slots, err := f.svc.GetAvailableSlots(ctx, f.doctor.ID, from, to)
	assert.NoError(t, err)

	// doctor has templates 09:00, 09:30, 10:00
	if assert.Len(t, slots, 3) {
		assert.True(t, slots[0].Start.Equal(day.Add(9*time.Hour)))
		assert.True(t, slots[1].Start.Equal(day.Add(9*time.Hour+30*time.Minute)))
		assert.True(t, slots[2].Start.Equal(day.Add(10*time.Hour)))
		for _, s := range slots {
			assert.Equal(t, 30*time.Minute, s.End.Sub(s.Start))
			assert.Equal(t, f.doctor.ID, s.DoctorID)
		}
	}
}

func TestGetAvailableSlotsRemovesBookedWindows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	day := futureAt(0, 0)

	_, err := f.svc.CreateAppointment(ctx, f.user.ID, f.doctor.ID, day.Add(9*time.Hour+30*time.Minute), nil)
	assert.NoError(t, err)

	slots, err := f.svc.GetAvailableSlots(ctx, f.doctor.ID, day, day.AddDate(0, 0, 1))
	assert.NoError(t, err)

	if assert.Len(t, slots, 2) {
		assert.True(t, slots[0].Start.Equal(day.Add(9*time.Hour)))
		assert.True(t, slots[1].Start.Equal(day.Add(10*time.Hour)))
	}
}

func TestGetAvailableSlotsCancelledBookingDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	day := futureAt(0, 0)

	appt, err := f.svc.CreateAppointment(ctx, f.user.ID, f.doctor.ID, day.Add(9*time.Hour), nil)
	assert.NoError(t, err)
	_, err = f.svc.Cancel(ctx, appt.ID)
	assert.NoError(t, err)

	slots, err := f.svc.GetAvailableSlots(ctx, f.doctor.ID, day, day.AddDate(0, 0, 1))
	assert.NoError(t, err)
	assert.Len(t, slots, 3)
}

func TestGetAvailableSlotsMultipleDaysChronological(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	day := futureAt(0, 0)
	slots, err := f.svc.GetAvailableSlots(ctx, f.doctor.ID, day, day.AddDate(0, 0, 3))
	assert.NoError(t, err)

	assert.Len(t, slots, 9)
	for i := 1; i < len(slots); i++ {
		assert.True(t, slots[i-1].Start.Before(slots[i].Start), "slots must be chronological")
	}
}

func TestGetAvailableSlotsErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := futureAt(0, 0)

	_, err := f.svc.GetAvailableSlots(ctx, uuid.New(), day, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	assert.NoError(t, f.dir.DeactivateDoctor(ctx, f.doctor.ID))
	_, err = f.svc.GetAvailableSlots(ctx, f.doctor.ID, day, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	_, err = f.svc.GetAvailableSlots(ctx, f.doctor.ID, day, day)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseTemplatesSkipsMalformed(t *testing.T) {
	offsets := parseTemplates([]string{"10:00", "garbage", "09:00"})
	if assert.Len(t, offsets, 2) {
		assert.Equal(t, 9*time.Hour, offsets[0])
		assert.Equal(t, 10*time.Hour, offsets[1])
	}
}
