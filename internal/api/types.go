package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/devlohani99/sehat-scheduler/internal/scheduling"
)

type CreateAppointmentRequest struct {
	UserID          string  `json:"user_id"`
	DoctorID        string  `json:"doctor_id"`
	AppointmentDate string  `json:"appointment_date"`
	Notes           *string `json:"notes,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	DoctorID        uuid.UUID  `json:"doctor_id"`
	AppointmentDate time.Time  `json:"appointment_date"`
	Status          string     `json:"status"`
	Notes           *string    `json:"notes,omitempty"`
	MeetLink        *string    `json:"meet_link,omitempty"`
	CallStatus      string     `json:"call_status"`
	CallStartTime   *time.Time `json:"call_start_time,omitempty"`
	CallEndTime     *time.Time `json:"call_end_time,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email *string   `json:"email,omitempty"`
}

type HospitalSummary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
}

type DoctorSummary struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Specialization string           `json:"specialization"`
	Hospital       *HospitalSummary `json:"hospital,omitempty"`
}

type AppointmentDetailResponse struct {
	AppointmentResponse
	User   *UserSummary   `json:"user,omitempty"`
	Doctor *DoctorSummary `json:"doctor,omitempty"`
}

type CallStateResponse struct {
	CallStatus    string     `json:"call_status"`
	MeetLink      *string    `json:"meet_link"`
	CallStartTime *time.Time `json:"call_start_time"`
	CallEndTime   *time.Time `json:"call_end_time"`
}

type StartCallResponse struct {
	MeetLink string `json:"meet_link"`
	Message  string `json:"message"`
}

type CreateHospitalRequest struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Contact *string `json:"contact,omitempty"`
}

type UpdateHospitalRequest struct {
	Address string  `json:"address"`
	Contact *string `json:"contact,omitempty"`
}

type HospitalResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Contact   *string   `json:"contact,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateDoctorRequest struct {
	Name           string   `json:"name"`
	Specialization string   `json:"specialization"`
	HospitalID     string   `json:"hospital_id"`
	SlotTemplates  []string `json:"slot_templates"`
}

type UpdateDoctorRequest struct {
	Name           string   `json:"name"`
	Specialization string   `json:"specialization"`
	SlotTemplates  []string `json:"slot_templates"`
}

type DoctorResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
	HospitalID     uuid.UUID `json:"hospital_id"`
	IsActive       bool      `json:"is_active"`
	SlotTemplates  []string  `json:"slot_templates"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateUserRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Role  string  `json:"role"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toAppointmentResponse(a *scheduling.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		UserID:          a.UserID,
		DoctorID:        a.DoctorID,
		AppointmentDate: a.AppointmentDate,
		Status:          string(a.Status),
		Notes:           a.Notes,
		MeetLink:        a.MeetLink,
		CallStatus:      string(a.CallStatus),
		CallStartTime:   a.CallStartTime,
		CallEndTime:     a.CallEndTime,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toDetailResponse(d *scheduling.AppointmentDetail) AppointmentDetailResponse {
	resp := AppointmentDetailResponse{
		AppointmentResponse: toAppointmentResponse(&d.Appointment),
	}

	if d.User != nil {
		resp.User = &UserSummary{
			ID:    d.User.ID,
			Name:  d.User.Name,
			Email: d.User.Email,
		}
	}

	if d.Doctor != nil {
		resp.Doctor = &DoctorSummary{
			ID:             d.Doctor.ID,
			Name:           d.Doctor.Name,
			Specialization: d.Doctor.Specialization,
		}
		if d.Hospital != nil {
			resp.Doctor.Hospital = &HospitalSummary{
				ID:      d.Hospital.ID,
				Name:    d.Hospital.Name,
				Address: d.Hospital.Address,
			}
		}
	}

	return resp
}

func toDetailResponses(details []scheduling.AppointmentDetail) []AppointmentDetailResponse {
	out := make([]AppointmentDetailResponse, 0, len(details))
	for i := range details {
		out = append(out, toDetailResponse(&details[i]))
	}
	return out
}

func toHospitalResponse(h *scheduling.Hospital) HospitalResponse {
	return HospitalResponse{
		ID:        h.ID,
		Name:      h.Name,
		Address:   h.Address,
		Contact:   h.Contact,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func toDoctorResponse(d *scheduling.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:             d.ID,
		Name:           d.Name,
		Specialization: d.Specialization,
		HospitalID:     d.HospitalID,
		IsActive:       d.IsActive,
		SlotTemplates:  d.SlotTemplates,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func toUserResponse(u *scheduling.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
