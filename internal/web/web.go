// Package web embeds the console's HTML templates.
package web

import (
	"embed"
	"html/template"

	"github.com/noah-isme/student-console/internal/models"
	"github.com/noah-isme/student-console/internal/view"
)

//go:embed templates/*.html
var files embed.FS

// Template names.
const (
	IndexTemplate   = "index.html"
	ConfirmTemplate = "confirm.html"
)

// IndexPage is the data behind the student management screen.
type IndexPage struct {
	State          view.State
	Notices        []view.Notice
	Genders        []models.Gender
	ExportsEnabled bool
}

// ConfirmPage is the data behind the delete prompt.
type ConfirmPage struct {
	Prompt  string
	Student models.Student
	Found   bool
	ID      string
}

var funcs = template.FuncMap{
	"alertClass": func(level view.Level) string {
		if level == view.LevelSuccess {
			return "alert-success"
		}
		return "alert-danger"
	},
}

// Templates parses the embedded templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(files, "templates/*.html"))
}
