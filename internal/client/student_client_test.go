package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-console/internal/models"
	appErrors "github.com/noah-isme/student-console/pkg/errors"
	"github.com/noah-isme/student-console/pkg/middleware/requestid"
)

type recordedCall struct {
	Method string
	Path   string
	Query  string
	Body   string
	// RequestID is the forwarded X-Request-ID header.
	RequestID string
}

type fakeAPI struct {
	mu     sync.Mutex
	calls  []recordedCall
	status int
	body   string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Method: r.Method, Path: r.URL.EscapedPath(), Query: r.URL.RawQuery, Body: string(raw), RequestID: r.Header.Get("X-Request-ID")})
	status, body := f.status, f.body
	f.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

type observerMock struct {
	ops      []string
	statuses []int
}

func (o *observerMock) ObserveUpstreamRequest(operation string, status int, _ time.Duration) {
	o.ops = append(o.ops, operation)
	o.statuses = append(o.statuses, status)
}

func newTestClient(t *testing.T, api *fakeAPI) (*StudentClient, *observerMock) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	obs := &observerMock{}
	return NewStudentClient(Options{BaseURL: srv.URL + "/", Metrics: obs}), obs
}

func TestListStudents(t *testing.T) {
	api := &fakeAPI{body: `[{"studentId":1,"studentNumber":"S1","name":"Jane","dateOfBirth":"1990-05-14T00:00:00","courseId":2,"course":{"name":"Math"}}]`}
	c, obs := newTestClient(t, api)

	students, err := c.ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, models.ID("1"), students[0].StudentID)
	assert.Equal(t, "Math", students[0].CourseName())
	assert.Equal(t, []recordedCall{{Method: http.MethodGet, Path: "/api/students"}}, api.calls)
	assert.Equal(t, []string{OpListStudents}, obs.ops)
}

func TestSearchStudentsSendsLiteralTerm(t *testing.T) {
	api := &fakeAPI{body: `[]`}
	c, _ := newTestClient(t, api)

	_, err := c.SearchStudents(context.Background(), "Jane & Co")
	require.NoError(t, err)
	_, err = c.SearchStudents(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, api.calls, 2)
	assert.Equal(t, "/api/students/search", api.calls[0].Path)
	assert.Equal(t, "term=Jane+%26+Co", api.calls[0].Query)
	assert.Equal(t, "term=", api.calls[1].Query)
}

func TestCreateAndUpdateSendPayload(t *testing.T) {
	api := &fakeAPI{body: `{"studentId":9}`}
	c, _ := newTestClient(t, api)
	dob, _ := models.ParseDate("2000-01-02")
	payload := models.StudentPayload{Name: "Jane", Gender: models.GenderFemale, DateOfBirth: dob, CourseID: "4"}

	created, err := c.CreateStudent(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, models.ID("9"), created.StudentID)

	_, err = c.UpdateStudent(context.Background(), "9", payload)
	require.NoError(t, err)

	require.Len(t, api.calls, 2)
	assert.Equal(t, http.MethodPost, api.calls[0].Method)
	assert.Equal(t, "/api/students", api.calls[0].Path)
	assert.Equal(t, http.MethodPut, api.calls[1].Method)
	assert.Equal(t, "/api/students/9", api.calls[1].Path)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(api.calls[1].Body), &sent))
	assert.Equal(t, "2000-01-02", sent["dateOfBirth"])
	assert.Equal(t, float64(4), sent["courseId"])
}

func TestUpdateAcceptsEmptyBody(t *testing.T) {
	api := &fakeAPI{status: http.StatusNoContent}
	c, _ := newTestClient(t, api)

	_, err := c.UpdateStudent(context.Background(), "3", models.StudentPayload{})
	assert.NoError(t, err)
}

func TestDeleteEscapesID(t *testing.T) {
	api := &fakeAPI{status: http.StatusNoContent}
	c, _ := newTestClient(t, api)

	require.NoError(t, c.DeleteStudent(context.Background(), "a/b"))
	assert.Equal(t, http.MethodDelete, api.calls[0].Method)
	assert.Equal(t, "/api/students/a%2Fb", api.calls[0].Path)
}

func TestUpstreamErrorStatus(t *testing.T) {
	api := &fakeAPI{status: http.StatusBadRequest, body: `{"title":"Email already exists"}`}
	c, obs := newTestClient(t, api)

	_, err := c.CreateStudent(context.Background(), models.StudentPayload{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, err.Error(), "Email already exists")
	assert.Equal(t, []int{http.StatusBadRequest}, obs.statuses)
	assert.Equal(t, OpCreateStudent, appErr.Details["operation"])
	assert.Equal(t, http.StatusBadRequest, appErr.Details["upstream_status"])

	api.status = http.StatusInternalServerError
	_, err = c.ListCourses(context.Background())
	assert.Equal(t, http.StatusBadGateway, appErrors.FromError(err).Status)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	obs := &observerMock{}
	c := NewStudentClient(Options{BaseURL: srv.URL, Metrics: obs})

	_, err := c.ListStudents(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))
	assert.Equal(t, []int{0}, obs.statuses)
}

func TestDecodeError(t *testing.T) {
	api := &fakeAPI{body: `{"not":"a list"}`}
	c, _ := newTestClient(t, api)

	_, err := c.ListCourses(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode list_courses response")
}

func TestForwardsRequestID(t *testing.T) {
	api := &fakeAPI{body: `[]`}
	c, _ := newTestClient(t, api)

	ctx := requestid.NewContext(context.Background(), "req-77")
	_, err := c.ListCourses(ctx)
	require.NoError(t, err)
	_, err = c.ListStudents(context.Background())
	require.NoError(t, err)

	require.Len(t, api.calls, 2)
	assert.Equal(t, "req-77", api.calls[0].RequestID)
	assert.Empty(t, api.calls[1].RequestID)
}
