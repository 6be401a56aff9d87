package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital

	err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Address,
		&h.Contact,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHospitalNotFound
		}
		return nil, err
	}

	return &h, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor

	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Specialization,
		&d.HospitalID,
		&d.IsActive,
		&d.SlotTemplates,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	return &d, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

const appointmentColumns = `id, user_id, doctor_id, appointment_date, status, notes,
	meet_link, call_status, call_start_time, call_end_time, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.DoctorID,
		&a.AppointmentDate,
		&a.Status,
		&a.Notes,
		&a.MeetLink,
		&a.CallStatus,
		&a.CallStartTime,
		&a.CallEndTime,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func scanAppointmentDetail(row pgx.Row) (*AppointmentDetail, error) {
	var d AppointmentDetail
	var u User
	var doc Doctor
	var h Hospital

	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.DoctorID,
		&d.AppointmentDate,
		&d.Status,
		&d.Notes,
		&d.MeetLink,
		&d.CallStatus,
		&d.CallStartTime,
		&d.CallEndTime,
		&d.CreatedAt,
		&d.UpdatedAt,
		&u.ID, &u.Name, &u.Email, &u.Role,
		&doc.ID, &doc.Name, &doc.Specialization, &doc.HospitalID, &doc.IsActive,
		&h.ID, &h.Name, &h.Address,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	d.User = &u
	d.Doctor = &doc
	d.Hospital = &h
	return &d, nil
}

const appointmentDetailQuery = `
	SELECT a.id, a.user_id, a.doctor_id, a.appointment_date, a.status, a.notes,
	       a.meet_link, a.call_status, a.call_start_time, a.call_end_time,
	       a.created_at, a.updated_at,
	       u.id, u.name, u.email, u.role,
	       d.id, d.name, d.specialization, d.hospital_id, d.is_active,
	       h.id, h.name, h.address
	FROM appointments a
	JOIN users u ON u.id = a.user_id
	JOIN doctors d ON d.id = a.doctor_id
	JOIN hospitals h ON h.id = d.hospital_id
`

func (r *PgRepository) queryDetails(ctx context.Context, where string, args ...any) ([]AppointmentDetail, error) {
	rows, err := r.pool.Query(ctx, appointmentDetailQuery+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AppointmentDetail
	for rows.Next() {
		d, err := scanAppointmentDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Hospitals

func (r *PgRepository) CreateHospital(ctx context.Context, h *Hospital) (*Hospital, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO hospitals (id, name, address, contact, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, name, address, contact, created_at, updated_at
	`, id, h.Name, h.Address, h.Contact)

	return scanHospital(row)
}

func (r *PgRepository) GetHospitalByID(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, address, contact, created_at, updated_at
		FROM hospitals
		WHERE id = $1
	`, id)
	return scanHospital(row)
}

func (r *PgRepository) ListHospitals(ctx context.Context) ([]Hospital, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, address, contact, created_at, updated_at
		FROM hospitals
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *h)
	}

	return result, rows.Err()
}

func (r *PgRepository) UpdateHospital(ctx context.Context, id uuid.UUID, address string, contact *string) (*Hospital, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE hospitals
		SET address = $2,
		    contact = $3,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, name, address, contact, created_at, updated_at
	`, id, address, contact)
	return scanHospital(row)
}

// Doctors

func (r *PgRepository) CreateDoctor(ctx context.Context, d *Doctor) (*Doctor, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO doctors (id, name, specialization, hospital_id, is_active, slot_templates, created_at, updated_at)
		VALUES ($1, $2, $3, $4, true, $5, now(), now())
		RETURNING id, name, specialization, hospital_id, is_active, slot_templates, created_at, updated_at
	`, id, d.Name, d.Specialization, d.HospitalID, d.SlotTemplates)

	return scanDoctor(row)
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialization, hospital_id, is_active, slot_templates, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) listDoctors(ctx context.Context, where string, args ...any) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, specialization, hospital_id, is_active, slot_templates, created_at, updated_at
		FROM doctors
	`+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	return result, rows.Err()
}

func (r *PgRepository) ListActiveDoctors(ctx context.Context) ([]Doctor, error) {
	return r.listDoctors(ctx, `WHERE is_active ORDER BY name`)
}

func (r *PgRepository) ListDoctorsByHospital(ctx context.Context, hospitalID uuid.UUID) ([]Doctor, error) {
	return r.listDoctors(ctx, `WHERE hospital_id = $1 AND is_active ORDER BY name`, hospitalID)
}

func (r *PgRepository) UpdateDoctor(ctx context.Context, d *Doctor) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE doctors
		SET name = $2,
		    specialization = $3,
		    slot_templates = $4,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, name, specialization, hospital_id, is_active, slot_templates, created_at, updated_at
	`, d.ID, d.Name, d.Specialization, d.SlotTemplates)
	return scanDoctor(row)
}

func (r *PgRepository) DeactivateDoctor(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE doctors
		SET is_active = false,
		    updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

// Users

func (r *PgRepository) CreateUser(ctx context.Context, u *User) (*User, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, name, email, role, created_at, updated_at
	`, id, u.Name, u.Email, u.Role)

	return scanUser(row)
}

func (r *PgRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

// Appointments

func (r *PgRepository) InsertAppointmentIfFree(ctx context.Context, appt *Appointment, conflictFrom, conflictTo time.Time) (*Appointment, error) {
	id := uuid.New()

	// The NOT EXISTS subquery and the insert run as one statement, so two
	// concurrent bookings for overlapping windows cannot both commit.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, user_id, doctor_id, appointment_date, status, notes, call_status, created_at, updated_at)
		SELECT $1, $2, $3, $4, 'scheduled', $5, 'not_started', now(), now()
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $3
			  AND status <> 'cancelled'
			  AND appointment_date > $6
			  AND appointment_date < $7
		)
		RETURNING `+appointmentColumns+`
	`, id, appt.UserID, appt.DoctorID, appt.AppointmentDate, appt.Notes, conflictFrom, conflictTo)

	created, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrSlotConflict
		}
		return nil, err
	}

	return created, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	row := r.pool.QueryRow(ctx, appointmentDetailQuery+`WHERE a.id = $1`, id)
	return scanAppointmentDetail(row)
}

func (r *PgRepository) ListDoctorAppointmentsBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		  AND status <> 'cancelled'
		  AND appointment_date >= $2
		  AND appointment_date < $3
		ORDER BY appointment_date
	`, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	return result, rows.Err()
}

func (r *PgRepository) ListAppointmentsByUser(ctx context.Context, userID uuid.UUID) ([]AppointmentDetail, error) {
	return r.queryDetails(ctx, `
		WHERE a.user_id = $1
		ORDER BY a.appointment_date DESC, a.id DESC
	`, userID)
}

func (r *PgRepository) ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]AppointmentDetail, error) {
	return r.queryDetails(ctx, `
		WHERE a.doctor_id = $1 AND a.status <> 'cancelled'
		ORDER BY a.appointment_date DESC, a.id DESC
	`, doctorID)
}

func (r *PgRepository) ListAllAppointments(ctx context.Context) ([]AppointmentDetail, error) {
	return r.queryDetails(ctx, `
		ORDER BY a.appointment_date DESC, a.id DESC
	`)
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		  AND call_status = 'not_started'
		RETURNING `+appointmentColumns+`
	`, id, to, from)

	return scanAppointment(row)
}

func (r *PgRepository) BeginCall(ctx context.Context, id uuid.UUID, meetLink string, startedAt time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET meet_link = $2,
		    call_status = 'in_progress',
		    call_start_time = $3,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'scheduled'
		  AND call_status = 'not_started'
		RETURNING `+appointmentColumns+`
	`, id, meetLink, startedAt)

	return scanAppointment(row)
}

func (r *PgRepository) FinishCall(ctx context.Context, id uuid.UUID, endedAt time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET call_status = 'ended',
		    call_end_time = $2,
		    status = 'completed',
		    updated_at = now()
		WHERE id = $1
		  AND status = 'scheduled'
		  AND call_status = 'in_progress'
		RETURNING `+appointmentColumns+`
	`, id, endedAt)

	return scanAppointment(row)
}

func (r *PgRepository) FindNoShows(ctx context.Context, cutoff time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = 'scheduled'
		  AND call_status = 'not_started'
		  AND appointment_date < $1
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	return result, rows.Err()
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
