package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/student-console/internal/middleware"
	"github.com/noah-isme/student-console/internal/models"
	"github.com/noah-isme/student-console/internal/service"
	"github.com/noah-isme/student-console/internal/session"
	"github.com/noah-isme/student-console/internal/view"
	"github.com/noah-isme/student-console/internal/web"
	appErrors "github.com/noah-isme/student-console/pkg/errors"
	"github.com/noah-isme/student-console/pkg/response"
)

// ConsoleHandler drives the student screen of the caller's session.
type ConsoleHandler struct {
	sessions       *session.Registry
	exports        *service.ExportService
	exportsEnabled bool
	logger         *zap.Logger
}

// NewConsoleHandler constructs ConsoleHandler. A nil export service disables downloads.
func NewConsoleHandler(sessions *session.Registry, exports *service.ExportService, logger *zap.Logger) *ConsoleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleHandler{
		sessions:       sessions,
		exports:        exports,
		exportsEnabled: exports != nil,
		logger:         logger,
	}
}

func (h *ConsoleHandler) session(c *gin.Context) *session.Session {
	id := middleware.SessionID(c)
	if id == "" {
		id = session.NewID()
	}
	return h.sessions.Get(c.Request.Context(), id)
}

func (h *ConsoleHandler) persist(ctx context.Context, s *session.Session) {
	if err := h.sessions.Persist(ctx, s); err != nil {
		h.logger.Warn("failed to persist session", zap.String("session_id", s.ID), zap.Error(err))
	}
}

// done persists the session and sends the browser back to the screen.
func (h *ConsoleHandler) done(c *gin.Context, s *session.Session) {
	h.persist(c.Request.Context(), s)
	c.Redirect(http.StatusSeeOther, "/")
}

// record attaches a failed action to the request so the access log reports it.
// The user already got a notice from the controller.
func (h *ConsoleHandler) record(c *gin.Context, action string, err error) {
	if err == nil || errors.Is(err, view.ErrDeleteDeclined) || errors.Is(err, view.ErrModalClosed) {
		return
	}
	_ = c.Error(err)
	h.logger.Debug("console action failed",
		zap.String("action", action),
		zap.Int("status", appErrors.StatusOf(err)),
		zap.Error(err),
	)
}

func (h *ConsoleHandler) mountIfNeeded(c *gin.Context, s *session.Session) {
	if !s.Controller.Snapshot().Mounted {
		h.record(c, "mount", s.Controller.Mount(c.Request.Context()))
	}
}

// Index renders the student screen, loading it on first visit.
func (h *ConsoleHandler) Index(c *gin.Context) {
	s := h.session(c)
	ctx := c.Request.Context()
	h.mountIfNeeded(c, s)

	page := web.IndexPage{
		State:          s.Controller.Snapshot(),
		Notices:        s.Flash.Drain(),
		Genders:        models.Genders,
		ExportsEnabled: h.exportsEnabled,
	}
	h.persist(ctx, s)
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, web.IndexTemplate, page)
}

// Search godoc
// @Summary Search students by term
// @Tags Console
// @Accept x-www-form-urlencoded
// @Param term formData string false "Search term, sent as typed"
// @Success 303
// @Router /search [post]
func (h *ConsoleHandler) Search(c *gin.Context) {
	s := h.session(c)
	s.Controller.SetSearchTerm(c.PostForm("term"))
	h.record(c, "search", s.Controller.Search(c.Request.Context()))
	h.done(c, s)
}

// Refresh godoc
// @Summary Reload the full student list
// @Tags Console
// @Success 303
// @Router /refresh [post]
func (h *ConsoleHandler) Refresh(c *gin.Context) {
	s := h.session(c)
	h.record(c, "refresh", s.Controller.FetchStudents(c.Request.Context()))
	h.done(c, s)
}

// OpenAdd godoc
// @Summary Open the add student modal
// @Tags Console
// @Success 303
// @Router /students/new [post]
func (h *ConsoleHandler) OpenAdd(c *gin.Context) {
	s := h.session(c)
	s.Controller.OpenAdd()
	h.done(c, s)
}

// OpenEdit godoc
// @Summary Open the edit modal for a listed student
// @Tags Console
// @Param id path string true "Student ID"
// @Success 303
// @Router /students/{id}/edit [post]
func (h *ConsoleHandler) OpenEdit(c *gin.Context) {
	s := h.session(c)
	h.record(c, "open_edit", s.Controller.OpenEditByID(models.ID(c.Param("id"))))
	h.done(c, s)
}

// CloseModal godoc
// @Summary Close the modal and discard the form
// @Tags Console
// @Success 303
// @Router /modal/close [post]
func (h *ConsoleHandler) CloseModal(c *gin.Context) {
	s := h.session(c)
	s.Controller.CloseModal()
	h.done(c, s)
}

// ChangeField godoc
// @Summary Update one modal form field
// @Tags Console
// @Accept x-www-form-urlencoded
// @Produce json
// @Param name formData string true "Field name"
// @Param value formData string false "Field value"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /modal/field [post]
func (h *ConsoleHandler) ChangeField(c *gin.Context) {
	s := h.session(c)
	if err := s.Controller.ChangeField(c.PostForm("name"), c.PostForm("value")); err != nil {
		response.Error(c, err)
		return
	}
	h.persist(c.Request.Context(), s)
	c.Status(http.StatusNoContent)
}

// Submit godoc
// @Summary Save the modal form
// @Description Applies every posted form field, then creates or updates the student. Ignored when no modal is open.
// @Tags Console
// @Accept x-www-form-urlencoded
// @Success 303
// @Router /modal/submit [post]
func (h *ConsoleHandler) Submit(c *gin.Context) {
	s := h.session(c)
	posted := make(map[string]string, len(models.FormFields))
	for _, field := range models.FormFields {
		if value, ok := c.GetPostForm(field); ok {
			posted[field] = value
		}
	}
	if err := s.Controller.ApplyForm(posted); err != nil {
		h.record(c, "submit", err)
		h.done(c, s)
		return
	}
	h.record(c, "submit", s.Controller.Submit(c.Request.Context()))
	h.done(c, s)
}

// ConfirmDelete godoc
// @Summary Ask for delete confirmation
// @Tags Console
// @Produce html
// @Param id path string true "Student ID"
// @Success 200
// @Router /students/{id}/delete [get]
func (h *ConsoleHandler) ConfirmDelete(c *gin.Context) {
	s := h.session(c)
	id := models.ID(c.Param("id"))
	student, found := models.FindStudent(s.Controller.Snapshot().Students, id)
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, web.ConfirmTemplate, web.ConfirmPage{
		Prompt:  view.DeleteConfirmPrompt,
		Student: student,
		Found:   found,
		ID:      id.String(),
	})
}

// Delete godoc
// @Summary Delete a student once confirmed
// @Tags Console
// @Accept x-www-form-urlencoded
// @Param id path string true "Student ID"
// @Param confirm formData string true "yes to delete"
// @Success 303
// @Router /students/{id}/delete [post]
func (h *ConsoleHandler) Delete(c *gin.Context) {
	s := h.session(c)
	answer := c.PostForm("confirm")
	confirm := view.ConfirmFunc(func(context.Context, string) bool {
		return answer == "yes"
	})
	h.record(c, "delete", s.Controller.Delete(c.Request.Context(), models.ID(c.Param("id")), confirm))
	h.done(c, s)
}

// State godoc
// @Summary Current view state
// @Description Pending notices are reported in meta and are not consumed.
// @Tags Console
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /state [get]
func (h *ConsoleHandler) State(c *gin.Context) {
	s := h.session(c)
	ctx := c.Request.Context()
	h.mountIfNeeded(c, s)
	h.persist(ctx, s)
	response.JSON(c, http.StatusOK, s.Controller.Snapshot(), map[string]interface{}{
		"notices": s.Flash.Pending(),
	})
}

// Export godoc
// @Summary Download the displayed student list
// @Tags Console
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/export [get]
func (h *ConsoleHandler) Export(c *gin.Context) {
	if !h.exportsEnabled {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	s := h.session(c)
	file, err := h.exports.Students(s.Controller.Snapshot().Students, c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
