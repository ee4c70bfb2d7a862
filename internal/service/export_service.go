package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/student-console/internal/models"
	appErrors "github.com/noah-isme/student-console/pkg/errors"
	"github.com/noah-isme/student-console/pkg/export"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var studentColumns = []string{"Student Number", "Name", "Surname", "Email", "Course"}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the displayed student list as a document.
type ExportService struct {
	renderers map[string]export.Renderer
	now       func() time.Time
}

// NewExportService wires the CSV and PDF renderers.
func NewExportService() *ExportService {
	return &ExportService{
		renderers: map[string]export.Renderer{
			FormatCSV: export.NewCSVExporter(),
			FormatPDF: export.NewPDFExporter(),
		},
		now: time.Now,
	}
}

// Students renders the given students in the requested format.
func (s *ExportService) Students(students []models.Student, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, fmt.Sprintf("unsupported export format %q", format))
	}

	data := export.Dataset{
		Title:   "Student Management",
		Headers: studentColumns,
		Rows:    make([][]string, 0, len(students)),
	}
	for _, st := range students {
		data.Rows = append(data.Rows, []string{st.StudentNumber, st.Name, st.Surname, st.EmailAddress, st.CourseName()})
	}

	body, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("students-%s.%s", s.now().UTC().Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}
