package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"schallwerk/model"
	"schallwerk/service"
)

// teacherHandler exposes the teacher portal. Every endpoint works on the
// event the session is scoped to.
type teacherHandler struct {
	svc *service.TeacherService
}

func newTeacherHandler(svc *service.TeacherService) *teacherHandler {
	return &teacherHandler{svc: svc}
}

// GetEvent returns the session's event.
func (h *teacherHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	event, err := h.svc.EventForSession(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// ListClasses returns the event's roster.
func (h *teacherHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	classes, err := h.svc.ListClasses(r.Context(), sess.EventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

// ListSongs returns the event's songs with their approval state.
func (h *teacherHandler) ListSongs(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	songs, err := h.svc.ListSongs(r.Context(), sess.EventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

type createGroupRequest struct {
	Name     string   `json:"name" validate:"required"`
	ClassIDs []string `json:"classIds" validate:"required,min=2"`
}

// CreateGroup creates a multi-class performance group.
func (h *teacherHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	group, err := h.svc.CreateGroup(r.Context(), sess.EventID, req.Name, req.ClassIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

type approvalRequest struct {
	Status model.ApprovalStatus `json:"status" validate:"required,oneof=approved rejected"`
}

// SetSongApproval records the teacher's verdict on one track.
func (h *teacherHandler) SetSongApproval(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req approvalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	song, err := h.svc.SetSongApproval(r.Context(), sess.EventID, mux.Vars(r)["id"], req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

// ApproveSchulsong signs off the whole-school track.
func (h *teacherHandler) ApproveSchulsong(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	approvedAt, err := h.svc.ApproveSchulsong(r.Context(), sess.EventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"approvedAt": approvedAt})
}

// GetClothingOrder returns the live per-size aggregation and order state.
func (h *teacherHandler) GetClothingOrder(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := h.svc.GetClothingOrder(r.Context(), sess.EventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// SubmitClothingOrder snapshots the aggregation into the event's order record.
func (h *teacherHandler) SubmitClothingOrder(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	order, err := h.svc.SubmitClothingOrder(r.Context(), sess.EventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
