package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is a mutex-guarded in-memory Repository used by tests and
// local development. Its conditional updates and the insert-unless-overlap
// commit hold the lock for the whole check-and-write, mirroring the atomicity
// the Postgres statements provide.
type MemoryRepository struct {
	mu           sync.Mutex
	hospitals    map[uuid.UUID]Hospital
	doctors      map[uuid.UUID]Doctor
	users        map[uuid.UUID]User
	appointments map[uuid.UUID]Appointment
	order        map[uuid.UUID]int
	seq          int
	events       []EventLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		hospitals:    make(map[uuid.UUID]Hospital),
		doctors:      make(map[uuid.UUID]Doctor),
		users:        make(map[uuid.UUID]User),
		appointments: make(map[uuid.UUID]Appointment),
		order:        make(map[uuid.UUID]int),
	}
}

func (m *MemoryRepository) CreateHospital(_ context.Context, h *Hospital) (*Hospital, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *h
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	m.hospitals[created.ID] = created
	return &created, nil
}

func (m *MemoryRepository) GetHospitalByID(_ context.Context, id uuid.UUID) (*Hospital, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.hospitals[id]
	if !ok {
		return nil, ErrHospitalNotFound
	}
	return &h, nil
}

func (m *MemoryRepository) ListHospitals(_ context.Context) ([]Hospital, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Hospital, 0, len(m.hospitals))
	for _, h := range m.hospitals {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepository) UpdateHospital(_ context.Context, id uuid.UUID, address string, contact *string) (*Hospital, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.hospitals[id]
	if !ok {
		return nil, ErrHospitalNotFound
	}
	h.Address = address
	h.Contact = contact
	h.UpdatedAt = time.Now()
	m.hospitals[id] = h
	return &h, nil
}

func (m *MemoryRepository) CreateDoctor(_ context.Context, d *Doctor) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *d
	created.ID = uuid.New()
	created.IsActive = true
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	m.doctors[created.ID] = created
	return &created, nil
}

func (m *MemoryRepository) GetDoctorByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &d, nil
}

func (m *MemoryRepository) ListActiveDoctors(_ context.Context) ([]Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Doctor
	for _, d := range m.doctors {
		if d.IsActive {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepository) ListDoctorsByHospital(_ context.Context, hospitalID uuid.UUID) ([]Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Doctor
	for _, d := range m.doctors {
		if d.IsActive && d.HospitalID == hospitalID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepository) UpdateDoctor(_ context.Context, d *Doctor) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.doctors[d.ID]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	existing.Name = d.Name
	existing.Specialization = d.Specialization
	existing.SlotTemplates = d.SlotTemplates
	existing.UpdatedAt = time.Now()
	m.doctors[d.ID] = existing
	return &existing, nil
}

func (m *MemoryRepository) DeactivateDoctor(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.doctors[id]
	if !ok {
		return ErrDoctorNotFound
	}
	d.IsActive = false
	m.doctors[id] = d
	return nil
}

func (m *MemoryRepository) CreateUser(_ context.Context, u *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *u
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	m.users[created.ID] = created
	return &created, nil
}

func (m *MemoryRepository) GetUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *MemoryRepository) InsertAppointmentIfFree(_ context.Context, appt *Appointment, conflictFrom, conflictTo time.Time) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.appointments {
		if existing.DoctorID != appt.DoctorID || existing.Status == StatusCancelled {
			continue
		}
		if existing.AppointmentDate.After(conflictFrom) && existing.AppointmentDate.Before(conflictTo) {
			return nil, ErrSlotConflict
		}
	}

	created := *appt
	created.ID = uuid.New()
	created.Status = StatusScheduled
	created.CallStatus = CallNotStarted
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	m.appointments[created.ID] = created
	m.seq++
	m.order[created.ID] = m.seq
	return &created, nil
}

func (m *MemoryRepository) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (m *MemoryRepository) detailLocked(a Appointment) AppointmentDetail {
	d := AppointmentDetail{Appointment: a}
	if u, ok := m.users[a.UserID]; ok {
		d.User = &u
	}
	if doc, ok := m.doctors[a.DoctorID]; ok {
		d.Doctor = &doc
		if h, ok := m.hospitals[doc.HospitalID]; ok {
			d.Hospital = &h
		}
	}
	return d
}

func (m *MemoryRepository) GetAppointmentDetail(_ context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	d := m.detailLocked(a)
	return &d, nil
}

func (m *MemoryRepository) ListDoctorAppointmentsBetween(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Appointment
	for _, a := range m.appointments {
		if a.DoctorID != doctorID || a.Status == StatusCancelled {
			continue
		}
		if a.AppointmentDate.Before(from) || !a.AppointmentDate.Before(to) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDate.Before(out[j].AppointmentDate) })
	return out, nil
}

func (m *MemoryRepository) listDetails(filter func(Appointment) bool) []AppointmentDetail {
	var out []AppointmentDetail
	for _, a := range m.appointments {
		if filter(a) {
			out = append(out, m.detailLocked(a))
		}
	}
	// Newest first; insertion order breaks date ties
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppointmentDate.Equal(out[j].AppointmentDate) {
			return out[i].AppointmentDate.After(out[j].AppointmentDate)
		}
		return m.order[out[i].ID] > m.order[out[j].ID]
	})
	return out
}

func (m *MemoryRepository) ListAppointmentsByUser(_ context.Context, userID uuid.UUID) ([]AppointmentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listDetails(func(a Appointment) bool { return a.UserID == userID }), nil
}

func (m *MemoryRepository) ListAppointmentsByDoctor(_ context.Context, doctorID uuid.UUID) ([]AppointmentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listDetails(func(a Appointment) bool {
		return a.DoctorID == doctorID && a.Status != StatusCancelled
	}), nil
}

func (m *MemoryRepository) ListAllAppointments(_ context.Context) ([]AppointmentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listDetails(func(Appointment) bool { return true }), nil
}

func (m *MemoryRepository) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok || a.Status != from || a.CallStatus != CallNotStarted {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	m.appointments[id] = a
	return &a, nil
}

func (m *MemoryRepository) BeginCall(_ context.Context, id uuid.UUID, meetLink string, startedAt time.Time) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok || a.Status != StatusScheduled || a.CallStatus != CallNotStarted {
		return nil, ErrAppointmentNotFound
	}
	a.MeetLink = &meetLink
	a.CallStatus = CallInProgress
	a.CallStartTime = &startedAt
	a.UpdatedAt = time.Now()
	m.appointments[id] = a
	return &a, nil
}

func (m *MemoryRepository) FinishCall(_ context.Context, id uuid.UUID, endedAt time.Time) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok || a.Status != StatusScheduled || a.CallStatus != CallInProgress {
		return nil, ErrAppointmentNotFound
	}
	a.CallStatus = CallEnded
	a.CallEndTime = &endedAt
	a.Status = StatusCompleted
	a.UpdatedAt = time.Now()
	m.appointments[id] = a
	return &a, nil
}

func (m *MemoryRepository) FindNoShows(_ context.Context, cutoff time.Time) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Appointment
	for _, a := range m.appointments {
		if a.Status == StatusScheduled && a.CallStatus == CallNotStarted && a.AppointmentDate.Before(cutoff) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryRepository) InsertEvent(_ context.Context, ev EventLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev.ID = int64(len(m.events) + 1)
	m.events = append(m.events, ev)
	return nil
}
