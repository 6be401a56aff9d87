package scheduling

import "errors"

var (
	// ErrValidation covers malformed or missing input. Callers wrap it with
	// fmt.Errorf("...: %w", ErrValidation) to carry the specific field.
	ErrValidation = errors.New("validation failed")

	ErrHospitalNotFound    = errors.New("hospital not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotConflict means another non-cancelled appointment already
	// occupies the requested window for that doctor.
	ErrSlotConflict = errors.New("slot already booked for this doctor")

	// ErrSlotBeingBooked is returned when the per-slot lock is held by a
	// concurrent booking attempt; the caller should retry.
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")

	// ErrInvalidState means the requested lifecycle transition is not legal
	// from the appointment's current (status, callStatus) pair.
	ErrInvalidState = errors.New("invalid lifecycle transition")

	// ErrDependency wraps failures of external collaborators such as the
	// conferencing provider.
	ErrDependency = errors.New("external dependency failure")
)
