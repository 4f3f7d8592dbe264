package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schallwerk/apperr"
	"schallwerk/core/auth"
	"schallwerk/model"
	"schallwerk/service"
)

type stubEventRepo struct {
	event *model.Event
}

func (r *stubEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	if r.event != nil && r.event.ID == id {
		clone := *r.event
		return &clone, nil
	}
	return nil, apperr.E(apperr.KindNotFound, "Event not found")
}

func (r *stubEventRepo) GetBySimplybookID(context.Context, string) (*model.Event, error) {
	return nil, apperr.E(apperr.KindNotFound, "Event not found")
}
func (r *stubEventRepo) List(context.Context) ([]*model.Event, error) { return nil, nil }
func (r *stubEventRepo) ListForStaff(context.Context, string) ([]*model.Event, error) {
	return nil, nil
}
func (r *stubEventRepo) ListForEngineer(context.Context, string) ([]*model.Event, error) {
	return nil, nil
}
func (r *stubEventRepo) Create(context.Context, *model.Event, string) (*model.Event, error) {
	return nil, apperr.E(apperr.KindUnavailable, "not implemented")
}
func (r *stubEventRepo) UpdatePipelineStage(context.Context, string, model.PipelineStage) error {
	return nil
}
func (r *stubEventRepo) UpdatePortalStatus(context.Context, string, model.PortalStatus) error {
	return nil
}
func (r *stubEventRepo) SetPublished(context.Context, string, bool) error { return nil }
func (r *stubEventRepo) GetByTeacherCode(context.Context, string) (*model.Event, error) {
	return nil, apperr.E(apperr.KindNotFound, "Event not found")
}

type stubClassRepo struct {
	classes []*model.Class
}

func (r *stubClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	for _, c := range r.classes {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperr.E(apperr.KindNotFound, "Class not found")
}

func (r *stubClassRepo) ListByEvent(_ context.Context, eventID string) ([]*model.Class, error) {
	out := []*model.Class{}
	for _, c := range r.classes {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubClassRepo) Create(_ context.Context, class *model.Class) (*model.Class, error) {
	r.classes = append(r.classes, class)
	return class, nil
}

type stubGroupRepo struct {
	groups []*model.Group
}

func (r *stubGroupRepo) Create(_ context.Context, group *model.Group) (*model.Group, error) {
	clone := *group
	clone.ID = "grp1"
	r.groups = append(r.groups, &clone)
	return &clone, nil
}

func (r *stubGroupRepo) ListByEvent(context.Context, string) ([]*model.Group, error) {
	return r.groups, nil
}

// newTestRouter builds a router with only the teacher routes backed by stub
// repositories, plus a real JWT manager so the cookie path is exercised
// end to end.
func newTestRouter(t *testing.T, event *model.Event) (http.Handler, *http.Cookie) {
	t.Helper()

	jwt := auth.NewManager(map[model.Role]string{
		model.RoleTeacher: "test-teacher-secret",
	}, time.Hour)

	events := &stubEventRepo{event: event}
	classes := &stubClassRepo{classes: []*model.Class{
		{ID: "cls1", EventID: event.ID, Name: "1a"},
		{ID: "cls2", EventID: event.ID, Name: "1b"},
	}}
	svc := service.NewTeacherService(events, classes, &stubGroupRepo{}, nil, nil,
		nil, "admin@example.com", false)

	router := newRouter(jwt, &handlers{
		teacher: newTeacherHandler(svc),
	})

	token, err := jwt.GenerateToken(model.RoleTeacher, event.ID, event.ID, "")
	require.NoError(t, err)
	return router, jwt.SessionCookie(model.RoleTeacher, token)
}

func TestCreateGroupEndpoint(t *testing.T) {
	router, cookie := newTestRouter(t, &model.Event{
		ID:           "evt1",
		Status:       model.EventUpcoming,
		PortalStatus: model.PortalReady,
	})

	body := `{"name":"Chor 1","classIds":["cls1","cls2"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/teacher/groups", strings.NewReader(body))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Success bool        `json:"success"`
		Data    model.Group `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Chor 1", resp.Data.Name)
	assert.Equal(t, []string{"cls1", "cls2"}, resp.Data.MemberClassIDs)
}

func TestCreateGroupEndpointCompletedEvent(t *testing.T) {
	router, cookie := newTestRouter(t, &model.Event{
		ID:           "evt1",
		Status:       model.EventCompleted,
		PortalStatus: model.PortalReady,
	})

	body := `{"name":"Chor 1","classIds":["cls1","cls2"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/teacher/groups", strings.NewReader(body))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Cannot add groups to completed events", resp.Error)
}

func TestCreateGroupEndpointRequiresSession(t *testing.T) {
	router, _ := newTestRouter(t, &model.Event{
		ID:           "evt1",
		PortalStatus: model.PortalReady,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/teacher/groups",
		strings.NewReader(`{"name":"Chor 1","classIds":["cls1","cls2"]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateGroupEndpointValidation(t *testing.T) {
	router, cookie := newTestRouter(t, &model.Event{
		ID:           "evt1",
		Status:       model.EventUpcoming,
		PortalStatus: model.PortalReady,
	})

	// One class only: rejected by request validation before the service
	// runs.
	req := httptest.NewRequest(http.MethodPost, "/api/teacher/groups",
		strings.NewReader(`{"name":"Solo","classIds":["cls1"]}`))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
