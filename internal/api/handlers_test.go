package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devlohani99/sehat-scheduler/internal/config"
	"github.com/devlohani99/sehat-scheduler/internal/scheduling"
)

type noopLocker struct{}

func (noopLocker) WithSlotLock(ctx context.Context, _ uuid.UUID, _ time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubConferencing struct{ err error }

func (s stubConferencing) CreateMeeting(_ context.Context, appointmentID uuid.UUID, _ time.Time, _ time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://meet.example.com/" + appointmentID.String(), nil
}

type testEnv struct {
	router   http.Handler
	hospital *scheduling.Hospital
	doctor   *scheduling.Doctor
	user     *scheduling.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := scheduling.NewMemoryRepository()
	cfg := config.Config{
		SlotDuration: 30 * time.Minute,
		MeetTimeout:  5 * time.Second,
		NoShowAfter:  24 * time.Hour,
	}
	svc := scheduling.NewService(repo, noopLocker{}, stubConferencing{}, nil, cfg)
	dir := scheduling.NewDirectory(repo)

	ctx := context.Background()
	hospital, err := dir.CreateHospital(ctx, "City General", "12 MG Road, Pune", nil)
	require.NoError(t, err)
	doctor, err := dir.CreateDoctor(ctx, "Asha Rao", "Cardiology", hospital.ID, []string{"09:00", "09:30", "10:00"})
	require.NoError(t, err)
	user, err := dir.CreateUser(ctx, "Priya Nair", nil, scheduling.RolePatient)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Service:   svc,
		Directory: dir,
		Env:       "test",
		Version:   "test",
	})

	return &testEnv{router: router, hospital: hospital, doctor: doctor, user: user}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func testSlot(hour, min int) time.Time {
	d := time.Now().UTC().AddDate(0, 0, 2)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, min, 0, 0, time.UTC)
}

func (e *testEnv) book(t *testing.T, at time.Time) AppointmentResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/appointments", CreateAppointmentRequest{
		UserID:          e.user.ID.String(),
		DoctorID:        e.doctor.ID.String(),
		AppointmentDate: at.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[AppointmentResponse](t, rec)
}

func TestCreateAppointmentEndpoint(t *testing.T) {
	env := newTestEnv(t)

	appt := env.book(t, testSlot(10, 0))
	assert.Equal(t, env.user.ID, appt.UserID)
	assert.Equal(t, env.doctor.ID, appt.DoctorID)
	assert.Equal(t, "scheduled", appt.Status)
	assert.Equal(t, "not_started", appt.CallStatus)
	assert.Nil(t, appt.MeetLink)
}

func TestCreateAppointmentEndpointRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		body     any
		wantCode int
		wantErr  string
	}{
		{
			name:     "malformed json",
			body:     nil,
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_request_body",
		},
		{
			name: "bad user id",
			body: CreateAppointmentRequest{
				UserID:          "not-a-uuid",
				DoctorID:        env.doctor.ID.String(),
				AppointmentDate: testSlot(10, 0).Format(time.RFC3339),
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_user_id",
		},
		{
			name: "bad date",
			body: CreateAppointmentRequest{
				UserID:          env.user.ID.String(),
				DoctorID:        env.doctor.ID.String(),
				AppointmentDate: "next tuesday",
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_appointment_date",
		},
		{
			name: "past date",
			body: CreateAppointmentRequest{
				UserID:          env.user.ID.String(),
				DoctorID:        env.doctor.ID.String(),
				AppointmentDate: time.Now().Add(-time.Hour).Format(time.RFC3339),
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "validation_error",
		},
		{
			name: "unknown doctor",
			body: CreateAppointmentRequest{
				UserID:          env.user.ID.String(),
				DoctorID:        uuid.NewString(),
				AppointmentDate: testSlot(10, 0).Format(time.RFC3339),
			},
			wantCode: http.StatusNotFound,
			wantErr:  "doctor_not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/appointments", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			resp := decodeBody[ErrorResponse](t, rec)
			assert.Equal(t, tt.wantErr, resp.Error)
		})
	}
}

func TestCreateAppointmentEndpointConflict(t *testing.T) {
	env := newTestEnv(t)

	env.book(t, testSlot(10, 0))

	rec := env.do(t, http.MethodPost, "/appointments", CreateAppointmentRequest{
		UserID:          env.user.ID.String(),
		DoctorID:        env.doctor.ID.String(),
		AppointmentDate: testSlot(10, 15).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "slot_conflict", resp.Error)
}

func TestGetAppointmentEndpoint(t *testing.T) {
	env := newTestEnv(t)

	appt := env.book(t, testSlot(9, 30))

	rec := env.do(t, http.MethodGet, "/appointments/"+appt.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeBody[AppointmentDetailResponse](t, rec)
	assert.Equal(t, appt.ID, detail.ID)
	if assert.NotNil(t, detail.User) {
		assert.Equal(t, "Priya Nair", detail.User.Name)
	}
	if assert.NotNil(t, detail.Doctor) {
		assert.Equal(t, "Asha Rao", detail.Doctor.Name)
		if assert.NotNil(t, detail.Doctor.Hospital) {
			assert.Equal(t, "City General", detail.Doctor.Hospital.Name)
		}
	}

	rec = env.do(t, http.MethodGet, "/appointments/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/appointments/nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAppointmentEndpoints(t *testing.T) {
	env := newTestEnv(t)

	first := env.book(t, testSlot(9, 0))
	second := env.book(t, testSlot(10, 0))

	rec := env.do(t, http.MethodGet, "/users/"+env.user.ID.String()+"/appointments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	byUser := decodeBody[[]AppointmentDetailResponse](t, rec)
	if assert.Len(t, byUser, 2) {
		assert.Equal(t, second.ID, byUser[0].ID, "newest first")
		assert.Equal(t, first.ID, byUser[1].ID)
	}

	// cancelled appointments drop off the doctor view but not the user view
	rec = env.do(t, http.MethodPost, "/appointments/"+first.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/doctors/"+env.doctor.ID.String()+"/appointments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	byDoctor := decodeBody[[]AppointmentDetailResponse](t, rec)
	if assert.Len(t, byDoctor, 1) {
		assert.Equal(t, second.ID, byDoctor[0].ID)
	}

	rec = env.do(t, http.MethodGet, "/users/"+env.user.ID.String()+"/appointments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	byUser = decodeBody[[]AppointmentDetailResponse](t, rec)
	assert.Len(t, byUser, 2)

	rec = env.do(t, http.MethodGet, "/appointments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decodeBody[[]AppointmentDetailResponse](t, rec)
	assert.Len(t, all, 2)
}

func TestUpdateStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)

	appt := env.book(t, testSlot(10, 0))

	rec := env.do(t, http.MethodPatch, "/appointments/"+appt.ID.String()+"/status", UpdateStatusRequest{Status: "completed"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[AppointmentResponse](t, rec)
	assert.Equal(t, "completed", updated.Status)

	// terminal rows refuse further transitions
	rec = env.do(t, http.MethodPatch, "/appointments/"+appt.ID.String()+"/status", UpdateStatusRequest{Status: "cancelled"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "invalid_state", resp.Error)

	rec = env.do(t, http.MethodPatch, "/appointments/"+appt.ID.String()+"/status", UpdateStatusRequest{Status: "pending"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp = decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "validation_error", resp.Error)
}

func TestCancelEndpoint(t *testing.T) {
	env := newTestEnv(t)

	appt := env.book(t, testSlot(10, 0))

	rec := env.do(t, http.MethodPost, "/appointments/"+appt.ID.String()+"/cancel", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/appointments/"+appt.ID.String()+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/appointments/"+uuid.NewString()+"/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCallFlowEndpoints(t *testing.T) {
	env := newTestEnv(t)

	appt := env.book(t, testSlot(10, 0))

	rec := env.do(t, http.MethodPost, "/appointments/"+appt.ID.String()+"/call/start", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	started := decodeBody[StartCallResponse](t, rec)
	assert.Equal(t, "https://meet.example.com/"+appt.ID.String(), started.MeetLink)

	rec = env.do(t, http.MethodGet, "/appointments/"+appt.ID.String()+"/call", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeBody[CallStateResponse](t, rec)
	assert.Equal(t, "in_progress", state.CallStatus)
	assert.NotNil(t, state.MeetLink)
	assert.NotNil(t, state.CallStartTime)
	assert.Nil(t, state.CallEndTime)

	// starting twice is a state conflict
	rec = env.do(t, http.MethodPost, "/appointments/"+appt.ID.String()+"/call/start", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/appointments/"+appt.ID.String()+"/call/end", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/appointments/"+appt.ID.String()+"/call", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeBody[CallStateResponse](t, rec)
	assert.Equal(t, "ended", state.CallStatus)
	assert.NotNil(t, state.CallEndTime)

	rec = env.do(t, http.MethodGet, "/appointments/"+appt.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeBody[AppointmentDetailResponse](t, rec)
	assert.Equal(t, "completed", detail.Status)
}

func TestEndCallWithoutStartEndpoint(t *testing.T) {
	env := newTestEnv(t)

	appt := env.book(t, testSlot(10, 0))

	rec := env.do(t, http.MethodPost, "/appointments/"+appt.ID.String()+"/call/end", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "invalid_state", resp.Error)
}

func TestAvailableSlotsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.book(t, testSlot(9, 30))

	day := testSlot(0, 0)
	path := fmt.Sprintf("/doctors/%s/slots?from=%s&to=%s",
		env.doctor.ID,
		day.Format(time.RFC3339),
		day.AddDate(0, 0, 1).Format(time.RFC3339))

	rec := env.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	slots := decodeBody[[]scheduling.Slot](t, rec)
	if assert.Len(t, slots, 2) {
		assert.True(t, slots[0].Start.Equal(testSlot(9, 0)))
		assert.True(t, slots[1].Start.Equal(testSlot(10, 0)))
	}

	rec = env.do(t, http.MethodGet, "/doctors/"+env.doctor.ID.String()+"/slots?from=bogus&to=also-bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDirectoryEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/hospitals", CreateHospitalRequest{
		Name:    "Lakeside Clinic",
		Address: "4 Lake View, Mumbai",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	hospital := decodeBody[HospitalResponse](t, rec)
	assert.Equal(t, "Lakeside Clinic", hospital.Name)

	rec = env.do(t, http.MethodPost, "/hospitals", CreateHospitalRequest{Address: "no name"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/hospitals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hospitals := decodeBody[[]HospitalResponse](t, rec)
	assert.Len(t, hospitals, 2)

	rec = env.do(t, http.MethodPost, "/doctors", CreateDoctorRequest{
		Name:           "Vikram Shetty",
		Specialization: "Dermatology",
		HospitalID:     hospital.ID.String(),
		SlotTemplates:  []string{"14:00", "14:30"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	doctor := decodeBody[DoctorResponse](t, rec)
	assert.True(t, doctor.IsActive)

	rec = env.do(t, http.MethodPost, "/doctors", CreateDoctorRequest{
		Name:           "Bad Templates",
		Specialization: "ENT",
		HospitalID:     hospital.ID.String(),
		SlotTemplates:  []string{"25:99"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/hospitals/"+hospital.ID.String()+"/doctors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doctors := decodeBody[[]DoctorResponse](t, rec)
	if assert.Len(t, doctors, 1) {
		assert.Equal(t, doctor.ID, doctors[0].ID)
	}

	rec = env.do(t, http.MethodDelete, "/doctors/"+doctor.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/hospitals/"+hospital.ID.String()+"/doctors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doctors = decodeBody[[]DoctorResponse](t, rec)
	assert.Len(t, doctors, 0)

	rec = env.do(t, http.MethodPost, "/users", CreateUserRequest{Name: "Rahul Jain", Role: "doctor"})
	require.Equal(t, http.StatusCreated, rec.Code)
	user := decodeBody[UserResponse](t, rec)
	assert.Equal(t, "doctor", user.Role)

	rec = env.do(t, http.MethodPost, "/users", CreateUserRequest{Name: "Bad Role", Role: "superadmin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
