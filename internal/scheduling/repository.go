package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository contains all store interactions needed by the services.
//
// Every mutation of an appointment's lifecycle goes through a conditional
// update: the store applies the change only if the row is still in the
// expected prior state, and reports ErrAppointmentNotFound when no row
// matched. Concurrent writers therefore cannot both succeed.
type Repository interface {
	// Hospitals
	CreateHospital(ctx context.Context, h *Hospital) (*Hospital, error)
	GetHospitalByID(ctx context.Context, id uuid.UUID) (*Hospital, error)
	ListHospitals(ctx context.Context) ([]Hospital, error)
	UpdateHospital(ctx context.Context, id uuid.UUID, address string, contact *string) (*Hospital, error)

	// Doctors
	CreateDoctor(ctx context.Context, d *Doctor) (*Doctor, error)
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	ListActiveDoctors(ctx context.Context) ([]Doctor, error)
	ListDoctorsByHospital(ctx context.Context, hospitalID uuid.UUID) ([]Doctor, error)
	UpdateDoctor(ctx context.Context, d *Doctor) (*Doctor, error)
	DeactivateDoctor(ctx context.Context, id uuid.UUID) error

	// Users
	CreateUser(ctx context.Context, u *User) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)

	// InsertAppointmentIfFree commits a new scheduled appointment unless a
	// non-cancelled appointment for the same doctor has a start strictly
	// inside (conflictFrom, conflictTo). The check and the insert are a
	// single atomic statement; on overlap it returns ErrSlotConflict.
	InsertAppointmentIfFree(ctx context.Context, appt *Appointment, conflictFrom, conflictTo time.Time) (*Appointment, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error)

	// ListDoctorAppointmentsBetween returns non-cancelled appointments for a
	// doctor with appointment_date in [from, to), ordered ascending. Used by
	// the availability resolver.
	ListDoctorAppointmentsBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error)

	ListAppointmentsByUser(ctx context.Context, userID uuid.UUID) ([]AppointmentDetail, error)
	ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]AppointmentDetail, error)
	ListAllAppointments(ctx context.Context) ([]AppointmentDetail, error)

	// UpdateAppointmentStatus flips status from -> to iff the row still has
	// status=from and no call has started. Once a call is in progress the
	// row only leaves scheduled through FinishCall.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error)

	// BeginCall records the meeting link and start time and moves
	// callStatus to in_progress, iff the row is still (scheduled, not_started).
	BeginCall(ctx context.Context, id uuid.UUID, meetLink string, startedAt time.Time) (*Appointment, error)

	// FinishCall moves callStatus to ended, stamps the end time and
	// finalizes status as completed, iff the row is still
	// (scheduled, in_progress).
	FinishCall(ctx context.Context, id uuid.UUID, endedAt time.Time) (*Appointment, error)

	// FindNoShows returns scheduled appointments whose date is before the
	// cutoff. Used by the sweep worker.
	FindNoShows(ctx context.Context, cutoff time.Time) ([]Appointment, error)

	InsertEvent(ctx context.Context, ev EventLog) error
}
