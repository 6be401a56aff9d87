package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/devlohani99/sehat-scheduler/internal/scheduling"
)

func createHospitalHandler(dir *scheduling.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateHospitalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		h, err := dir.CreateHospital(r.Context(), req.Name, req.Address, req.Contact)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toHospitalResponse(h))
	}
}

func listHospitalsHandler(dir *scheduling.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hospitals, err := dir.ListHospitals(r.Context())
		if err != nil {
			handleServiceError(w, err)
			return
		}

		out := make([]HospitalResponse, 0, len(hospitals))
		for i := range hospitals {
			out = append(out, toHospitalResponse(&hospitals[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getHospitalHandler(dir *scheduling.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "id")
		if !ok {
			return
		}

		h, err := dir.GetHospital(r.Context(), id)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toHospitalResponse(h))
	}
}

func updateHospitalHandler(dir *scheduling.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "id")
		if !ok {
			return
		}

		var req UpdateHospitalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		h, err := dir.UpdateHospital(r.Context(), id, req.Address, req.Contact)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toHospitalResponse(h))
	}
}

func createDoctorHandler(dir *scheduling.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		hospitalID, err := uuid.Parse(req.HospitalID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_hospital_id", "hospital_id must be a valid UUID")
			return
		}

		d, err := dir.CreateDoctor(r.Context(), req.Name, req.Specialization, hospitalID, req.SlotTemplates)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toDoctorResponse(d))
	}
}

func listDoctorsHandler(dir *scheduling.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := dir.ListDoctors(r.Context())
		if err != nil {
			handleServiceError(w, err)
			return
		}

		out := make([]DoctorResponse, 0, len(doctors))
		for i := range doctors {
			out = append(out, toDoctorResponse(&doctors[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listHospitalDoctorsHandler(dir *scheduling.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "id")
		if !ok {
			return
		}

		doctors, err := dir.ListDoctorsByHospital(r.Context(), id)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		out := make([]DoctorResponse, 0, len(doctors))
		for i := range doctors {
			out = append(out, toDoctorResponse(&doctors[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getDoctorHandler(dir *scheduling.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "id")
		if !ok {
			return
		}

		d, err := dir.GetDoctor(r.Context(), id)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toDoctorResponse(d))
	}
}

func updateDoctorHandler(dir *scheduling.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "id")
		if !ok {
			return
		}

		var req UpdateDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		d, err := dir.UpdateDoctor(r.Context(), id, req.Name, req.Specialization, req.SlotTemplates)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toDoctorResponse(d))
	}
}

func deactivateDoctorHandler(dir *scheduling.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "id")
		if !ok {
			return
		}

		if err := dir.DeactivateDoctor(r.Context(), id); err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"message": "doctor deactivated successfully",
		})
	}
}

func createUserHandler(dir *scheduling.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		u, err := dir.CreateUser(r.Context(), req.Name, req.Email, scheduling.UserRole(req.Role))
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

func getUserHandler(dir *scheduling.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "id")
		if !ok {
			return
		}

		u, err := dir.GetUser(r.Context(), id)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}
