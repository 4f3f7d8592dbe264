package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"schallwerk/service"
)

// staffHandler exposes the recording-day upload endpoints.
type staffHandler struct {
	svc *service.StaffService
}

func newStaffHandler(svc *service.StaffService) *staffHandler {
	return &staffHandler{svc: svc}
}

// ListEvents returns the staff member's assigned events.
func (h *staffHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	events, err := h.svc.ListEvents(r.Context(), sess.SubjectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type presignRawRequest struct {
	ClassID  string `json:"classId" validate:"required"`
	Filename string `json:"filename" validate:"required"`
}

// PresignUpload is phase one of the raw upload: the browser gets a URL to
// PUT the file to directly.
func (h *staffHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req presignRawRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	upload, err := h.svc.PresignRawUpload(r.Context(), sess.SubjectID, mux.Vars(r)["id"], req.ClassID, req.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, upload)
}

type confirmRawRequest struct {
	ClassID  string `json:"classId"`
	Key      string `json:"key" validate:"required"`
	Filename string `json:"filename" validate:"required"`
}

// ConfirmUpload is phase two: the object landed in storage, write the
// metadata record.
func (h *staffHandler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req confirmRawRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	file, err := h.svc.ConfirmRawUpload(r.Context(), sess.SubjectID, mux.Vars(r)["id"], req.ClassID, req.Key, req.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, file)
}

// Progress reports the upload completion state for one event.
func (h *staffHandler) Progress(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	progress, err := h.svc.Progress(r.Context(), sess.SubjectID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
