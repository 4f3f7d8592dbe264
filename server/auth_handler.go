package server

import (
	"net/http"

	"schallwerk/core/auth"
	"schallwerk/model"
	"schallwerk/service"
)

// authHandler holds the login and logout endpoints for all five roles.
type authHandler struct {
	jwt     *auth.Manager
	authSvc *service.AuthService
	parents *service.ParentService
}

func newAuthHandler(jwt *auth.Manager, authSvc *service.AuthService, parents *service.ParentService) *authHandler {
	return &authHandler{jwt: jwt, authSvc: authSvc, parents: parents}
}

type accountLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// loginAccount builds the handler for one internal role's login endpoint.
func (h *authHandler) loginAccount(role model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req accountLoginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		account, err := h.authSvc.LoginAccount(r.Context(), role, req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		token, err := h.jwt.GenerateToken(role, account.ID, "", account.Email)
		if err != nil {
			writeError(w, err)
			return
		}
		http.SetCookie(w, h.jwt.SessionCookie(role, token))
		writeJSON(w, http.StatusOK, account)
	}
}

type teacherLoginRequest struct {
	AccessCode string `json:"accessCode" validate:"required"`
}

// LoginTeacher exchanges an event access code for a teacher session scoped
// to that event.
func (h *authHandler) LoginTeacher(w http.ResponseWriter, r *http.Request) {
	var req teacherLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	event, err := h.authSvc.LoginTeacher(r.Context(), req.AccessCode)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := h.jwt.GenerateToken(model.RoleTeacher, event.ID, event.ID, "")
	if err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, h.jwt.SessionCookie(model.RoleTeacher, token))
	writeJSON(w, http.StatusOK, event)
}

type parentRegisterRequest struct {
	EventID string `json:"eventId" validate:"required"`
	ClassID string `json:"classId" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

// RegisterParent creates the parent record and logs the parent straight in.
func (h *authHandler) RegisterParent(w http.ResponseWriter, r *http.Request) {
	var req parentRegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	parent, err := h.parents.Register(r.Context(), req.EventID, req.ClassID, req.Name, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := h.jwt.GenerateToken(model.RoleParent, parent.ID, parent.EventID, parent.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, h.jwt.SessionCookie(model.RoleParent, token))
	writeJSON(w, http.StatusCreated, parent)
}

type parentLoginRequest struct {
	EventID string `json:"eventId" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

// LoginParent resolves an existing registration.
func (h *authHandler) LoginParent(w http.ResponseWriter, r *http.Request) {
	var req parentLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	parent, err := h.parents.Login(r.Context(), req.EventID, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := h.jwt.GenerateToken(model.RoleParent, parent.ID, parent.EventID, parent.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, h.jwt.SessionCookie(model.RoleParent, token))
	writeJSON(w, http.StatusOK, parent)
}

// logout clears the role's session cookie. Always succeeds.
func (h *authHandler) logout(role model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, auth.ClearCookie(role))
		writeJSON(w, http.StatusOK, nil)
	}
}
