package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-console/internal/models"
	appErrors "github.com/noah-isme/student-console/pkg/errors"
	"github.com/noah-isme/student-console/pkg/middleware/requestid"
)

// Operation labels used for logs and metrics.
const (
	OpListStudents   = "list_students"
	OpSearchStudents = "search_students"
	OpCreateStudent  = "create_student"
	OpUpdateStudent  = "update_student"
	OpDeleteStudent  = "delete_student"
	OpListCourses    = "list_courses"
)

const errorBodyLimit = 512

// Observer receives timing for every remote API call.
type Observer interface {
	ObserveUpstreamRequest(operation string, status int, duration time.Duration)
}

// Options configures a StudentClient.
type Options struct {
	BaseURL string
	// Timeout of zero leaves requests bounded only by their context.
	Timeout            time.Duration
	InsecureSkipVerify bool
	HTTPClient         *http.Client
	Metrics            Observer
	Logger             *zap.Logger
}

// StudentClient talks to the remote student and course API.
type StudentClient struct {
	baseURL string
	http    *http.Client
	metrics Observer
	logger  *zap.Logger
}

// NewStudentClient constructs a client for the API rooted at opts.BaseURL.
func NewStudentClient(opts Options) *StudentClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if opts.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // local dev certificates
		}
		httpClient = &http.Client{Timeout: opts.Timeout, Transport: transport}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// ListStudents fetches every student.
func (c *StudentClient) ListStudents(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := c.do(ctx, OpListStudents, http.MethodGet, "/api/students", nil, nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// SearchStudents asks the server to match term; the term is sent exactly as given.
func (c *StudentClient) SearchStudents(ctx context.Context, term string) ([]models.Student, error) {
	query := url.Values{}
	query.Set("term", term)
	var students []models.Student
	if err := c.do(ctx, OpSearchStudents, http.MethodGet, "/api/students/search", query, nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// CreateStudent posts a new student.
func (c *StudentClient) CreateStudent(ctx context.Context, payload models.StudentPayload) (*models.Student, error) {
	var created models.Student
	if err := c.do(ctx, OpCreateStudent, http.MethodPost, "/api/students", nil, payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateStudent replaces the editable fields of student id.
func (c *StudentClient) UpdateStudent(ctx context.Context, id models.ID, payload models.StudentPayload) (*models.Student, error) {
	var updated models.Student
	if err := c.do(ctx, OpUpdateStudent, http.MethodPut, studentPath(id), nil, payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteStudent removes student id.
func (c *StudentClient) DeleteStudent(ctx context.Context, id models.ID) error {
	return c.do(ctx, OpDeleteStudent, http.MethodDelete, studentPath(id), nil, nil, nil)
}

// ListCourses fetches every course.
func (c *StudentClient) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := c.do(ctx, OpListCourses, http.MethodGet, "/api/courses", nil, nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func studentPath(id models.ID) string {
	return "/api/students/" + url.PathEscape(id.String())
}

func (c *StudentClient) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode "+op+" payload")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build "+op+" request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := requestid.FromContext(ctx)
	if reqID != "" {
		req.Header.Set(requestid.Header, reqID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(op, 0, duration)
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, op+" failed").
			WithDetail("operation", op)
	}
	defer resp.Body.Close()
	c.observe(op, resp.StatusCode, duration)

	c.logger.Debug("remote api call",
		zap.String("operation", op),
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", duration),
		zap.String("request_id", reqID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		cause := fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
		return appErrors.Wrap(cause, appErrors.ErrUpstream.Code, upstreamStatus(resp.StatusCode), op+" failed").
			WithDetail("operation", op).
			WithDetail("upstream_status", resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "read "+op+" response")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "decode "+op+" response")
	}
	return nil
}

// upstreamStatus keeps client errors from the API and maps everything else to 502.
func upstreamStatus(code int) int {
	if code >= 400 && code < 500 {
		return code
	}
	return http.StatusBadGateway
}

func (c *StudentClient) observe(op string, status int, d time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveUpstreamRequest(op, status, d)
	}
}
