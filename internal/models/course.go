package models

// Course is a programme a student is enrolled in. The console never edits it.
type Course struct {
	CourseID ID     `json:"courseId"`
	Name     string `json:"name"`
}

// CourseSummary is the embedded course shape returned alongside a student.
type CourseSummary struct {
	Name string `json:"name"`
}
