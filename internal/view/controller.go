// Package view holds the state and behaviour of the student management screen,
// independent of how it is rendered.
package view

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/student-console/internal/models"
	appErrors "github.com/noah-isme/student-console/pkg/errors"
)

// User facing messages.
const (
	MsgFetchFailed      = "Failed to fetch students"
	MsgSearchFailed     = "Failed to search students"
	MsgSaveFailed       = "Failed to save student"
	MsgDeleteFailed     = "Failed to delete student"
	MsgStudentAdded     = "Student added successfully"
	MsgStudentUpdated   = "Student updated successfully"
	MsgStudentDeleted   = "Student deleted successfully"
	MsgStudentNotFound  = "Student not found"
	DeleteConfirmPrompt = "Are you sure you want to delete this student?"
)

// StudentAPI is the remote backend the screen reads from and writes to.
type StudentAPI interface {
	ListStudents(ctx context.Context) ([]models.Student, error)
	SearchStudents(ctx context.Context, term string) ([]models.Student, error)
	CreateStudent(ctx context.Context, payload models.StudentPayload) (*models.Student, error)
	UpdateStudent(ctx context.Context, id models.ID, payload models.StudentPayload) (*models.Student, error)
	DeleteStudent(ctx context.Context, id models.ID) error
	ListCourses(ctx context.Context) ([]models.Course, error)
}

// Controller owns the screen state and runs user actions against the API.
// Network calls happen outside the lock; list results are applied only when
// they answer the most recently issued list request.
type Controller struct {
	api       StudentAPI
	notifier  Notifier
	validator *validator.Validate
	logger    *zap.Logger

	mu     sync.Mutex
	state  State
	issued uint64
}

// NewController constructs a controller with an empty screen.
func NewController(api StudentAPI, notifier Notifier, validate *validator.Validate, logger *zap.Logger) *Controller {
	if notifier == nil {
		notifier = NotifierFunc(func(Notice) {})
	}
	if validate == nil {
		validate = models.NewFormValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{api: api, notifier: notifier, validator: validate, logger: logger}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Restore replaces the state, e.g. when a session is rehydrated. Loading is
// never restored since no request is in flight for a fresh controller.
func (c *Controller) Restore(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s.clone()
	c.state.Loading = false
}

// Mount loads students and courses in parallel. A course failure is only logged.
func (c *Controller) Mount(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		return c.FetchStudents(ctx)
	})
	g.Go(func() error {
		_ = c.FetchCourses(ctx)
		return nil
	})
	err := g.Wait()

	c.mu.Lock()
	c.state.Mounted = true
	c.mu.Unlock()
	return err
}

// FetchStudents replaces the list with every student.
func (c *Controller) FetchStudents(ctx context.Context) error {
	return c.loadList(ctx, "fetch", MsgFetchFailed, c.api.ListStudents)
}

// Search replaces the list with the server's matches for the current term.
func (c *Controller) Search(ctx context.Context) error {
	c.mu.Lock()
	term := c.state.SearchTerm
	c.mu.Unlock()
	return c.loadList(ctx, "search", MsgSearchFailed, func(ctx context.Context) ([]models.Student, error) {
		return c.api.SearchStudents(ctx, term)
	})
}

func (c *Controller) loadList(ctx context.Context, action, failure string, fetch func(context.Context) ([]models.Student, error)) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.state.Loading = true
	c.mu.Unlock()

	students, err := fetch(ctx)

	c.mu.Lock()
	if seq != c.issued {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded list response",
			zap.String("action", action), zap.Uint64("seq", seq), zap.Error(err))
		return nil
	}
	c.state.Loading = false
	if err == nil {
		if students == nil {
			students = []models.Student{}
		}
		c.state.Students = students
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("student list request failed",
			zap.String("action", action), zap.Uint64("seq", seq), zap.Error(err))
		c.notifier.Notify(Notice{Level: LevelError, Message: failure})
		return err
	}
	return nil
}

// FetchCourses loads the course options. Failures stay silent for the user.
func (c *Controller) FetchCourses(ctx context.Context) error {
	courses, err := c.api.ListCourses(ctx)
	if err != nil {
		c.logger.Warn("course list request failed", zap.Error(err))
		return err
	}
	if courses == nil {
		courses = []models.Course{}
	}
	c.mu.Lock()
	c.state.Courses = courses
	c.mu.Unlock()
	return nil
}

// SetSearchTerm stores the search box text verbatim.
func (c *Controller) SetSearchTerm(term string) {
	c.mu.Lock()
	c.state.SearchTerm = term
	c.mu.Unlock()
}

// OpenAdd opens the modal with an empty form.
func (c *Controller) OpenAdd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Editing = nil
	c.state.Form = models.FormState{}
	c.state.ModalOpen = true
}

// OpenEdit opens the modal with the student's fields.
func (c *Controller) OpenEdit(student models.Student) {
	c.mu.Lock()
	defer c.mu.Unlock()
	editing := student
	c.state.Editing = &editing
	c.state.Form = models.FormFromStudent(student)
	c.state.ModalOpen = true
}

// OpenEditByID opens the modal for a student currently in the list.
func (c *Controller) OpenEditByID(id models.ID) error {
	c.mu.Lock()
	student, ok := models.FindStudent(c.state.Students, id)
	c.mu.Unlock()
	if !ok {
		c.notifier.Notify(Notice{Level: LevelError, Message: MsgStudentNotFound})
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	c.OpenEdit(student)
	return nil
}

// CloseModal hides the modal and discards the form.
func (c *Controller) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeModalLocked()
}

func (c *Controller) closeModalLocked() {
	c.state.ModalOpen = false
	c.state.Editing = nil
	c.state.Form = models.FormState{}
}

// ChangeField updates one form field by name.
func (c *Controller) ChangeField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.state.Form.SetField(name, value); err != nil {
		return appErrors.Wrap(err, appErrors.ErrBadRequest.Code, appErrors.ErrBadRequest.Status, "unknown form field").
			WithDetail("field", name)
	}
	return nil
}

// ErrModalClosed is returned when form input or a submit arrives while no
// modal is open, e.g. a replayed POST.
var ErrModalClosed = errors.New("modal is not open")

// ApplyForm sets several form fields at once. Every name is checked before
// any field changes, so a bad name leaves the form untouched.
func (c *Controller) ApplyForm(values map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.ModalOpen {
		return ErrModalClosed
	}
	for name := range values {
		if _, ok := c.state.Form.Get(name); !ok {
			return appErrors.Clone(appErrors.ErrBadRequest, "unknown form field").WithDetail("field", name)
		}
	}
	for name, value := range values {
		if err := c.state.Form.SetField(name, value); err != nil {
			return appErrors.Wrap(err, appErrors.ErrBadRequest.Code, appErrors.ErrBadRequest.Status, "unknown form field").
				WithDetail("field", name)
		}
	}
	return nil
}

// Submit creates or updates the student from the form. On success the modal
// closes and the list is fetched again; on failure the form is left intact.
// Without an open modal nothing is sent.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.ModalOpen {
		c.mu.Unlock()
		c.logger.Debug("submit ignored, modal is closed")
		return ErrModalClosed
	}
	form := c.state.Form
	var editing *models.Student
	if c.state.Editing != nil {
		e := *c.state.Editing
		editing = &e
	}
	c.mu.Unlock()

	payload, err := form.Payload(c.validator)
	if err != nil {
		c.logger.Debug("student form rejected", zap.Error(err))
		c.notifier.Notify(Notice{Level: LevelError, Message: err.Error()})
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student form")
	}

	success := MsgStudentAdded
	if editing != nil {
		success = MsgStudentUpdated
		_, err = c.api.UpdateStudent(ctx, editing.StudentID, payload)
	} else {
		_, err = c.api.CreateStudent(ctx, payload)
	}
	if err != nil {
		c.logger.Error("saving student failed", zap.Bool("update", editing != nil), zap.Error(err))
		c.notifier.Notify(Notice{Level: LevelError, Message: MsgSaveFailed})
		return err
	}

	c.mu.Lock()
	c.closeModalLocked()
	c.mu.Unlock()
	c.notifier.Notify(Notice{Level: LevelSuccess, Message: success})

	if err := c.FetchStudents(ctx); err != nil {
		c.logger.Debug("refresh after save failed", zap.Error(err))
	}
	return nil
}

// ErrDeleteDeclined is returned when the user does not confirm a delete.
var ErrDeleteDeclined = errors.New("delete not confirmed")

// Delete removes a student after confirmation and fetches the list again.
// A declined prompt makes no request and changes nothing.
func (c *Controller) Delete(ctx context.Context, id models.ID, confirm Confirmer) error {
	if confirm == nil || !confirm.Confirm(ctx, DeleteConfirmPrompt) {
		return ErrDeleteDeclined
	}
	if err := c.api.DeleteStudent(ctx, id); err != nil {
		c.logger.Error("deleting student failed", zap.String("student_id", id.String()), zap.Error(err))
		c.notifier.Notify(Notice{Level: LevelError, Message: MsgDeleteFailed})
		return err
	}
	c.notifier.Notify(Notice{Level: LevelSuccess, Message: MsgStudentDeleted})

	if err := c.FetchStudents(ctx); err != nil {
		c.logger.Debug("refresh after delete failed", zap.Error(err))
	}
	return nil
}
