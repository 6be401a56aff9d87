package api

import (
	"net/http"

	"github.com/devlohani99/sehat-scheduler/internal/scheduling"
)

func startCallHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "id")
		if !ok {
			return
		}

		appt, err := svc.StartCall(r.Context(), id)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		link := ""
		if appt.MeetLink != nil {
			link = *appt.MeetLink
		}

		writeJSON(w, http.StatusOK, StartCallResponse{
			MeetLink: link,
			Message:  "video call started successfully",
		})
	}
}

func endCallHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "id")
		if !ok {
			return
		}

		if _, err := svc.EndCall(r.Context(), id); err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"message": "video call ended successfully",
		})
	}
}

func callStateHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "id")
		if !ok {
			return
		}

		appt, err := svc.GetCallState(r.Context(), id)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, CallStateResponse{
			CallStatus:    string(appt.CallStatus),
			MeetLink:      appt.MeetLink,
			CallStartTime: appt.CallStartTime,
			CallEndTime:   appt.CallEndTime,
		})
	}
}
