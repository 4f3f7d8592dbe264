package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"schallwerk/model"
	"schallwerk/service"
)

// adminHandler exposes the back-office endpoints.
type adminHandler struct {
	svc *service.AdminService
}

func newAdminHandler(svc *service.AdminService) *adminHandler {
	return &adminHandler{svc: svc}
}

// ListEvents returns every event with its aggregated approval status.
func (h *adminHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	overviews, err := h.svc.ListEvents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overviews)
}

// ListBookings returns the upcoming SimplyBook reservations.
func (h *adminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.ListBookings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

type createEventRequest struct {
	BookingID string `json:"bookingId" validate:"required"`
	EventType string `json:"eventType" validate:"required"`
}

// CreateEvent imports a booking as a portal event. The response carries the
// teacher access code exactly once; it is not retrievable later.
func (h *adminHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	event, teacherCode, err := h.svc.CreateEventFromBooking(r.Context(), req.BookingID, req.EventType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"event":       event,
		"teacherCode": teacherCode,
	})
}

// ReleaseSchulsong releases the whole-school track for teacher approval.
func (h *adminHandler) ReleaseSchulsong(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ReleaseSchulsong(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// PublishEvent flips the parent-facing published flag.
func (h *adminHandler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.PublishEvent(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type portalStatusRequest struct {
	Status model.PortalStatus `json:"status" validate:"required"`
}

// UpdatePortalStatus advances an event's setup progress.
func (h *adminHandler) UpdatePortalStatus(w http.ResponseWriter, r *http.Request) {
	var req portalStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.UpdatePortalStatus(r.Context(), mux.Vars(r)["id"], req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// RefreshTasks re-batches the open shop orders into supplier tasks.
func (h *adminHandler) RefreshTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.RefreshTasks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CompleteTask closes a task and returns the minted GO-ID.
func (h *adminHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	goID, err := h.svc.CompleteTask(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"goId": goID})
}
