package view

import "github.com/noah-isme/student-console/internal/models"

// State is everything the student screen renders from.
type State struct {
	Students   []models.Student `json:"students"`
	Courses    []models.Course  `json:"courses"`
	Loading    bool             `json:"loading"`
	SearchTerm string           `json:"searchTerm"`
	ModalOpen  bool             `json:"modalOpen"`
	Editing    *models.Student  `json:"editing,omitempty"`
	Form       models.FormState `json:"form"`
	Mounted    bool             `json:"mounted"`
}

// IsEditing reports whether the modal targets an existing student.
func (s State) IsEditing() bool { return s.Editing != nil }

func (s State) clone() State {
	out := s
	out.Students = append([]models.Student(nil), s.Students...)
	out.Courses = append([]models.Course(nil), s.Courses...)
	if s.Editing != nil {
		editing := *s.Editing
		out.Editing = &editing
	}
	return out
}
