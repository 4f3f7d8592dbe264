package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"schallwerk/model"
	"schallwerk/service"
)

// engineerHandler exposes the mixing/mastering endpoints.
type engineerHandler struct {
	svc *service.EngineerService
}

func newEngineerHandler(svc *service.EngineerService) *engineerHandler {
	return &engineerHandler{svc: svc}
}

// ListEvents returns the engineer's assigned events.
func (h *engineerHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
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

// EnsureAssignments distributes the event's unassigned songs to the fixed
// engineers. Idempotent.
func (h *engineerHandler) EnsureAssignments(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	songs, err := h.svc.EnsureAssignments(r.Context(), sess.SubjectID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

// ListRawFiles returns signed download URLs for the event's raw recordings.
func (h *engineerHandler) ListRawFiles(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	files, err := h.svc.DownloadRawFiles(r.Context(), sess.SubjectID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

type presignMixRequest struct {
	Type     model.AudioFileType `json:"type" validate:"required,oneof=preview final"`
	Filename string              `json:"filename" validate:"required"`
}

// PresignUpload issues a presigned PUT for a preview or final mix.
func (h *engineerHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req presignMixRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	vars := mux.Vars(r)
	upload, err := h.svc.PresignMixUpload(r.Context(), sess.SubjectID, vars["id"], vars["songId"], req.Type, req.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, upload)
}

type confirmMixRequest struct {
	Type     model.AudioFileType `json:"type" validate:"required,oneof=preview final"`
	Key      string              `json:"key" validate:"required"`
	Filename string              `json:"filename" validate:"required"`
}

// ConfirmUpload records a finished mix upload against the song.
func (h *engineerHandler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req confirmMixRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	vars := mux.Vars(r)
	file, err := h.svc.ConfirmMixUpload(r.Context(), sess.SubjectID, vars["id"], vars["songId"], req.Key, req.Filename, req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, file)
}
