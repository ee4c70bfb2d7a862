package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/student-console/internal/middleware"
	"github.com/noah-isme/student-console/internal/models"
	"github.com/noah-isme/student-console/internal/service"
	"github.com/noah-isme/student-console/internal/session"
	"github.com/noah-isme/student-console/internal/view"
	"github.com/noah-isme/student-console/internal/web"
	"github.com/noah-isme/student-console/pkg/config"
)

type fakeStudentAPI struct {
	mu       sync.Mutex
	students []models.Student
	courses  []models.Course
	listErr  error
	saveErr  error

	listCalls int
	terms     []string
	creates   []models.StudentPayload
	updates   []models.ID
	deletes   []models.ID
}

func (f *fakeStudentAPI) ListStudents(context.Context) ([]models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]models.Student(nil), f.students...), f.listErr
}

func (f *fakeStudentAPI) SearchStudents(_ context.Context, term string) ([]models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terms = append(f.terms, term)
	var out []models.Student
	for _, s := range f.students {
		if strings.Contains(strings.ToLower(s.Name), strings.ToLower(term)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStudentAPI) CreateStudent(_ context.Context, p models.StudentPayload) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, p)
	return nil, f.saveErr
}

func (f *fakeStudentAPI) UpdateStudent(_ context.Context, id models.ID, _ models.StudentPayload) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, id)
	return nil, f.saveErr
}

func (f *fakeStudentAPI) DeleteStudent(_ context.Context, id models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeStudentAPI) ListCourses(context.Context) ([]models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.courses, nil
}

func seededAPI() *fakeStudentAPI {
	return &fakeStudentAPI{
		students: []models.Student{
			{StudentID: "1", StudentNumber: "S-001", Name: "Ada", Surname: "Lovelace", Gender: models.GenderFemale,
				DateOfBirth: models.Date{Year: 1990, Month: time.May, Day: 14}, EmailAddress: "ada@example.com",
				CourseID: "7", Course: &models.CourseSummary{Name: "Mathematics"}},
			{StudentID: "2", StudentNumber: "S-002", Name: "Alan", Surname: "Turing", Gender: models.GenderMale,
				EmailAddress: "alan@example.com", CourseID: "7"},
		},
		courses: []models.Course{{CourseID: "7", Name: "Mathematics"}},
	}
}

// browser is a test client that keeps the session cookie between requests.
type browser struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func newBrowser(t *testing.T, api view.StudentAPI, exports *service.ExportService) *browser {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registry := session.NewRegistry(session.NewMemoryStore(), func(flash *view.Flash) *view.Controller {
		return view.NewController(api, flash, nil, zap.NewNop())
	}, time.Hour, nil, zap.NewNop())

	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	r.Use(middleware.Session(config.SessionConfig{CookieName: "sid", TTL: time.Hour}))
	RegisterRoutes(r, NewConsoleHandler(registry, exports, zap.NewNop()))
	return &browser{t: t, router: r}
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" {
			b.cookie = c
		}
	}
	return rec
}

func (b *browser) state() (view.State, []view.Notice) {
	b.t.Helper()
	rec := b.do(http.MethodGet, "/state", nil)
	require.Equal(b.t, http.StatusOK, rec.Code)
	var envelope struct {
		Data view.State `json:"data"`
		Meta struct {
			Notices []view.Notice `json:"notices"`
		} `json:"meta"`
	}
	require.NoError(b.t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data, envelope.Meta.Notices
}

func TestIndexMountsAndRendersList(t *testing.T) {
	api := seededAPI()
	b := newBrowser(t, api, service.NewExportService())

	rec := b.do(http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "S-001")
	assert.Contains(t, body, "Lovelace")
	assert.Contains(t, body, "Mathematics")
	assert.Contains(t, body, "/students/export?format=pdf")

	b.do(http.MethodGet, "/", nil)
	assert.Equal(t, 1, api.listCalls, "second render reuses the mounted state")
}

func TestIndexShowsFetchFailureOnce(t *testing.T) {
	api := seededAPI()
	api.listErr = errors.New("boom")
	b := newBrowser(t, api, nil)

	first := b.do(http.MethodGet, "/", nil)
	assert.Contains(t, first.Body.String(), view.MsgFetchFailed)
	assert.NotContains(t, first.Body.String(), "/students/export")

	second := b.do(http.MethodGet, "/", nil)
	assert.NotContains(t, second.Body.String(), view.MsgFetchFailed)
}

func TestSearchSendsTermVerbatim(t *testing.T) {
	api := seededAPI()
	b := newBrowser(t, api, nil)
	b.do(http.MethodGet, "/", nil)

	rec := b.do(http.MethodPost, "/search", url.Values{"term": {" Ad "}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, []string{" Ad "}, api.terms)

	st, _ := b.state()
	assert.Equal(t, " Ad ", st.SearchTerm)
}

func TestAddStudentFlow(t *testing.T) {
	api := seededAPI()
	b := newBrowser(t, api, nil)
	b.do(http.MethodGet, "/", nil)

	b.do(http.MethodPost, "/students/new", url.Values{})
	st, _ := b.state()
	require.True(t, st.ModalOpen)
	assert.False(t, st.IsEditing())

	rec := b.do(http.MethodPost, "/modal/submit", url.Values{
		"name":         {"Grace"},
		"surname":      {"Hopper"},
		"gender":       {"Female"},
		"dateOfBirth":  {"1906-12-09"},
		"homeAddress":  {"Arlington"},
		"emailAddress": {"grace@example.com"},
		"courseId":     {"7"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	require.Len(t, api.creates, 1)
	assert.Equal(t, "Grace", api.creates[0].Name)
	assert.Equal(t, models.ID("7"), api.creates[0].CourseID)
	assert.Empty(t, api.updates)
	assert.Equal(t, 2, api.listCalls)

	st, notices := b.state()
	assert.False(t, st.ModalOpen)
	assert.Equal(t, []view.Notice{{Level: view.LevelSuccess, Message: view.MsgStudentAdded}}, notices)

	page := b.do(http.MethodGet, "/", nil)
	assert.Contains(t, page.Body.String(), view.MsgStudentAdded)
}

func TestSubmitInvalidFormKeepsModal(t *testing.T) {
	api := seededAPI()
	b := newBrowser(t, api, nil)
	b.do(http.MethodGet, "/", nil)
	b.do(http.MethodPost, "/students/new", url.Values{})

	b.do(http.MethodPost, "/modal/submit", url.Values{"name": {"Grace"}})

	assert.Empty(t, api.creates)
	st, notices := b.state()
	assert.True(t, st.ModalOpen)
	assert.Equal(t, "Grace", st.Form.Name)
	require.Len(t, notices, 1)
	assert.Equal(t, view.LevelError, notices[0].Level)
}

func TestSubmitAfterCloseIsIgnored(t *testing.T) {
	api := seededAPI()
	b := newBrowser(t, api, nil)
	b.do(http.MethodGet, "/", nil)
	b.do(http.MethodPost, "/students/new", url.Values{})
	b.do(http.MethodPost, "/modal/close", url.Values{})

	rec := b.do(http.MethodPost, "/modal/submit", url.Values{
		"name":         {"Grace"},
		"surname":      {"Hopper"},
		"gender":       {"Female"},
		"dateOfBirth":  {"1906-12-09"},
		"homeAddress":  {"Arlington"},
		"emailAddress": {"grace@example.com"},
		"courseId":     {"7"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, api.creates)
	assert.Equal(t, 1, api.listCalls)
	st, notices := b.state()
	assert.False(t, st.ModalOpen)
	assert.Equal(t, models.FormState{}, st.Form)
	assert.Empty(t, notices)
}

func TestEditStudentFlow(t *testing.T) {
	api := seededAPI()
	b := newBrowser(t, api, nil)
	b.do(http.MethodGet, "/", nil)

	b.do(http.MethodPost, "/students/1/edit", url.Values{})
	st, _ := b.state()
	require.True(t, st.IsEditing())
	assert.Equal(t, "1990-05-14", st.Form.DateOfBirth)

	rec := b.do(http.MethodPost, "/modal/field", url.Values{"name": {"surname"}, "value": {"Byron"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	page := b.do(http.MethodGet, "/", nil)
	assert.Contains(t, page.Body.String(), "Edit Student")
	assert.Contains(t, page.Body.String(), `value="Byron"`)

	b.do(http.MethodPost, "/modal/submit", url.Values{"homeAddress": {"London"}})
	assert.Equal(t, []models.ID{"1"}, api.updates)
	assert.Empty(t, api.creates)
}

func TestEditUnknownStudentNotifies(t *testing.T) {
	b := newBrowser(t, seededAPI(), nil)
	b.do(http.MethodGet, "/", nil)

	b.do(http.MethodPost, "/students/99/edit", url.Values{})
	st, notices := b.state()
	assert.False(t, st.ModalOpen)
	assert.Equal(t, []view.Notice{{Level: view.LevelError, Message: view.MsgStudentNotFound}}, notices)
}

func TestChangeFieldRejectsUnknownName(t *testing.T) {
	b := newBrowser(t, seededAPI(), nil)
	rec := b.do(http.MethodPost, "/modal/field", url.Values{"name": {"studentNumber"}, "value": {"x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"studentNumber"`)
}

func TestCloseModalDiscardsForm(t *testing.T) {
	b := newBrowser(t, seededAPI(), nil)
	b.do(http.MethodGet, "/", nil)
	b.do(http.MethodPost, "/students/1/edit", url.Values{})

	b.do(http.MethodPost, "/modal/close", url.Values{})
	st, _ := b.state()
	assert.False(t, st.ModalOpen)
	assert.Nil(t, st.Editing)
	assert.Equal(t, models.FormState{}, st.Form)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	api := seededAPI()
	b := newBrowser(t, api, nil)
	b.do(http.MethodGet, "/", nil)

	prompt := b.do(http.MethodGet, "/students/2/delete", nil)
	require.Equal(t, http.StatusOK, prompt.Code)
	assert.Contains(t, prompt.Body.String(), view.DeleteConfirmPrompt)
	assert.Contains(t, prompt.Body.String(), "S-002")

	b.do(http.MethodPost, "/students/2/delete", url.Values{"confirm": {"no"}})
	assert.Empty(t, api.deletes)
	assert.Equal(t, 1, api.listCalls)

	rec := b.do(http.MethodPost, "/students/2/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []models.ID{"2"}, api.deletes)
	assert.Equal(t, 2, api.listCalls)

	_, notices := b.state()
	assert.Equal(t, []view.Notice{{Level: view.LevelSuccess, Message: view.MsgStudentDeleted}}, notices)
}

func TestRefreshRefetches(t *testing.T) {
	api := seededAPI()
	b := newBrowser(t, api, nil)
	b.do(http.MethodGet, "/", nil)
	b.do(http.MethodPost, "/refresh", url.Values{})
	assert.Equal(t, 2, api.listCalls)
}

func TestExportDisplayedList(t *testing.T) {
	api := seededAPI()
	b := newBrowser(t, api, service.NewExportService())
	b.do(http.MethodGet, "/", nil)
	b.do(http.MethodPost, "/search", url.Values{"term": {"ada"}})
	calls := api.listCalls

	rec := b.do(http.MethodGet, "/students/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, rec.Body.String(), "S-001")
	assert.NotContains(t, rec.Body.String(), "S-002")
	assert.Equal(t, calls, api.listCalls)
	assert.Len(t, api.terms, 1)

	bad := b.do(http.MethodGet, "/students/export?format=xlsx", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestExportDisabled(t *testing.T) {
	b := newBrowser(t, seededAPI(), nil)
	rec := b.do(http.MethodGet, "/students/export", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
