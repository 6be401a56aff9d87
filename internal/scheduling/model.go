package scheduling

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

type CallStatus string

const (
	CallNotStarted CallStatus = "not_started"
	CallInProgress CallStatus = "in_progress"
	CallEnded      CallStatus = "ended"
)

type UserRole string

const (
	RolePatient  UserRole = "patient"
	RoleDoctor   UserRole = "doctor"
	RolePharmacy UserRole = "pharmacy"
)

func (r UserRole) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RolePharmacy:
		return true
	}
	return false
}

type Hospital struct {
	ID        uuid.UUID
	Name      string
	Address   string
	Contact   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Doctor struct {
	ID             uuid.UUID
	Name           string
	Specialization string
	HospitalID     uuid.UUID
	IsActive       bool
	// SlotTemplates holds daily slot start times as "HH:MM" strings.
	// Each template opens one bookable window of SlotDuration per day.
	SlotTemplates []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type User struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	Role      UserRole
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Appointment struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	DoctorID        uuid.UUID
	AppointmentDate time.Time
	Status          AppointmentStatus
	Notes           *string
	MeetLink        *string
	CallStatus      CallStatus
	CallStartTime   *time.Time
	CallEndTime     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Terminal reports whether no further status transition is allowed.
func (a *Appointment) Terminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled
}

// Slot is a fixed-duration bookable window for a doctor.
type Slot struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// AppointmentDetail is the hydrated read-side projection: the appointment
// plus its user and doctor, with the doctor's hospital expanded for display.
type AppointmentDetail struct {
	Appointment
	User     *User
	Doctor   *Doctor
	Hospital *Hospital
}
