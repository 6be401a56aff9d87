package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/devlohani99/sehat-scheduler/internal/config"
	redisclient "github.com/devlohani99/sehat-scheduler/internal/redis"
)

const (
	EventAppointmentBooked    = "APPOINTMENT_BOOKED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
	EventAppointmentCompleted = "APPOINTMENT_COMPLETED"
	EventAppointmentNoShow    = "APPOINTMENT_NO_SHOW"
	EventCallStarted          = "CALL_STARTED"
	EventCallEnded            = "CALL_ENDED"
)

// Conferencing is the external meeting provider. It is called exclusively by
// StartCall, before any state changes, so a failed request leaves the
// appointment untouched.
type Conferencing interface {
	CreateMeeting(ctx context.Context, appointmentID uuid.UUID, startTime time.Time, duration time.Duration) (joinURL string, err error)
}

// Notifier delivers best-effort booking email. Failures are logged and never
// fail the operation that triggered them.
type Notifier interface {
	BookingConfirmed(ctx context.Context, detail *AppointmentDetail) error
	BookingCancelled(ctx context.Context, detail *AppointmentDetail) error
}

type Service struct {
	repo         Repository
	locker       redisclient.Locker
	meet         Conferencing
	notifier     Notifier
	slotDuration time.Duration
	meetTimeout  time.Duration
	noShowAfter  time.Duration
}

func NewService(repo Repository, locker redisclient.Locker, meet Conferencing, notifier Notifier, cfg config.Config) *Service {
	return &Service{
		repo:         repo,
		locker:       locker,
		meet:         meet,
		notifier:     notifier,
		slotDuration: cfg.SlotDuration,
		meetTimeout:  cfg.MeetTimeout,
		noShowAfter:  cfg.NoShowAfter,
	}
}

// CreateAppointment validates the patient and doctor, then commits a new
// scheduled appointment for the requested time. The slot is re-validated at
// commit time: a per doctor-and-slot lock serializes concurrent attempts, and
// the insert itself refuses to commit over an overlapping non-cancelled
// appointment, so two racing bookings can never both succeed.
func (s *Service) CreateAppointment(ctx context.Context, userID, doctorID uuid.UUID, at time.Time, notes *string) (*Appointment, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if doctorID == uuid.Nil {
		return nil, fmt.Errorf("%w: doctor id is required", ErrValidation)
	}
	if at.IsZero() {
		return nil, fmt.Errorf("%w: appointment date is required", ErrValidation)
	}
	if !at.After(time.Now()) {
		return nil, fmt.Errorf("%w: appointment date must be in the future", ErrValidation)
	}

	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	doctor, err := s.repo.GetDoctorByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if !doctor.IsActive {
		return nil, ErrDoctorNotFound
	}

	var created *Appointment

	err = s.locker.WithSlotLock(ctx, doctorID, at, func(lockCtx context.Context) error {
		appt := &Appointment{
			UserID:          userID,
			DoctorID:        doctorID,
			AppointmentDate: at,
			Notes:           notes,
		}

		// Any non-cancelled appointment starting within one slot duration
		// of the requested time occupies an overlapping window.
		committed, err := s.repo.InsertAppointmentIfFree(lockCtx, appt, at.Add(-s.slotDuration), at.Add(s.slotDuration))
		if err != nil {
			return err
		}

		created = committed

		s.logEvent(lockCtx, committed.ID, EventAppointmentBooked, map[string]any{
			"user_id":          userID.String(),
			"doctor_id":        doctorID.String(),
			"appointment_date": at,
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	s.notifyBooked(ctx, created.ID)

	return created, nil
}

// StartCall requests a meeting link from the conferencing provider and moves
// the appointment into the in-progress call state. The link is obtained first
// and the state flip is a single conditional update, so a provider failure or
// a lost race leaves no partial state.
func (s *Service) StartCall(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if appt.Status != StatusScheduled || appt.CallStatus != CallNotStarted {
		return nil, ErrInvalidState
	}

	meetCtx, cancel := context.WithTimeout(ctx, s.meetTimeout)
	defer cancel()

	joinURL, err := s.meet.CreateMeeting(meetCtx, appt.ID, appt.AppointmentDate, s.slotDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: create meeting: %v", ErrDependency, err)
	}

	updated, err := s.repo.BeginCall(ctx, appt.ID, joinURL, time.Now())
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// A concurrent transition won the conditional update.
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("start call: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventCallStarted, map[string]any{
		"meet_link": joinURL,
	})

	return updated, nil
}

// EndCall moves an in-progress call to ended and finalizes the appointment as
// completed in the same conditional update.
func (s *Service) EndCall(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if appt.CallStatus != CallInProgress {
		return nil, ErrInvalidState
	}

	updated, err := s.repo.FinishCall(ctx, appt.ID, time.Now())
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("end call: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventCallEnded, map[string]any{})

	return updated, nil
}

// UpdateStatus applies a direct transition out of scheduled without a call.
// Only completed and cancelled are accepted.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status AppointmentStatus) (*Appointment, error) {
	if status != StatusCompleted && status != StatusCancelled {
		return nil, fmt.Errorf("%w: status must be completed or cancelled", ErrValidation)
	}

	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Terminal() || appt.CallStatus == CallInProgress {
		return nil, ErrInvalidState
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusScheduled, status)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("update status: %w", err)
	}

	event := EventAppointmentCompleted
	if status == StatusCancelled {
		event = EventAppointmentCancelled
	}
	s.logEvent(ctx, updated.ID, event, map[string]any{})

	if status == StatusCancelled {
		s.notifyCancelled(ctx, updated.ID)
	}

	return updated, nil
}

// Cancel flips a scheduled appointment to cancelled. The record is never
// deleted; history stays queryable. An in-progress call blocks cancellation:
// the call must end first, which completes the appointment.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Terminal() || appt.CallStatus == CallInProgress {
		return nil, ErrInvalidState
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusScheduled, StatusCancelled)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventAppointmentCancelled, map[string]any{})
	s.notifyCancelled(ctx, updated.ID)

	return updated, nil
}

// SweepNoShows cancels scheduled appointments whose date passed the grace
// window without a call ever starting. Intended to be called periodically by
// the sweep worker.
func (s *Service) SweepNoShows(ctx context.Context) error {
	cutoff := time.Now().Add(-s.noShowAfter)

	stale, err := s.repo.FindNoShows(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("find no-show appointments: %w", err)
	}

	for _, appt := range stale {
		_, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusScheduled, StatusCancelled)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			log.Printf("failed to sweep appointment %s: %v", appt.ID, err)
			continue
		}
		s.logEvent(ctx, appt.ID, EventAppointmentNoShow, map[string]any{
			"appointment_date": appt.AppointmentDate,
			"cutoff":           cutoff,
		})
	}

	return nil
}

// GetAppointment retrieves a fully hydrated appointment by ID
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	return s.repo.GetAppointmentDetail(ctx, id)
}

// GetCallState returns the appointment's call sub-state.
func (s *Service) GetCallState(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointmentByID(ctx, id)
}

// ListAppointmentsByUser returns every appointment of a patient, newest first.
func (s *Service) ListAppointmentsByUser(ctx context.Context, userID uuid.UUID) ([]AppointmentDetail, error) {
	return s.repo.ListAppointmentsByUser(ctx, userID)
}

// ListAppointmentsByDoctor returns a doctor's appointments, newest first,
// excluding cancelled ones.
func (s *Service) ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]AppointmentDetail, error) {
	return s.repo.ListAppointmentsByDoctor(ctx, doctorID)
}

// ListAllAppointments returns the dashboard view, newest first.
func (s *Service) ListAllAppointments(ctx context.Context) ([]AppointmentDetail, error) {
	return s.repo.ListAllAppointments(ctx)
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal event payload for %s: %v", eventType, err)
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		log.Printf("failed to insert event log %s for appointment %s: %v", eventType, appointmentID, err)
	}
}

func (s *Service) notifyBooked(ctx context.Context, id uuid.UUID) {
	if s.notifier == nil {
		return
	}
	detail, err := s.repo.GetAppointmentDetail(ctx, id)
	if err != nil {
		log.Printf("failed to load appointment %s for notification: %v", id, err)
		return
	}
	if err := s.notifier.BookingConfirmed(ctx, detail); err != nil {
		log.Printf("failed to send booking confirmation for %s: %v", id, err)
	}
}

func (s *Service) notifyCancelled(ctx context.Context, id uuid.UUID) {
	if s.notifier == nil {
		return
	}
	detail, err := s.repo.GetAppointmentDetail(ctx, id)
	if err != nil {
		log.Printf("failed to load appointment %s for notification: %v", id, err)
		return
	}
	if err := s.notifier.BookingCancelled(ctx, detail); err != nil {
		log.Printf("failed to send cancellation notice for %s: %v", id, err)
	}
}
