package models

// Student is a student record as returned by the remote API.
type Student struct {
	StudentID     ID             `json:"studentId"`
	StudentNumber string         `json:"studentNumber"`
	Name          string         `json:"name"`
	Surname       string         `json:"surname"`
	Gender        Gender         `json:"gender"`
	DateOfBirth   Date           `json:"dateOfBirth"`
	HomeAddress   string         `json:"homeAddress"`
	EmailAddress  string         `json:"emailAddress"`
	PhoneNumber   *string        `json:"phoneNumber"`
	CourseID      ID             `json:"courseId"`
	Course        *CourseSummary `json:"course,omitempty"`
}

// CourseName returns the embedded course name, or "" when the API did not load it.
func (s Student) CourseName() string {
	if s.Course == nil {
		return ""
	}
	return s.Course.Name
}

// Phone returns the phone number, or "" when absent.
func (s Student) Phone() string {
	if s.PhoneNumber == nil {
		return ""
	}
	return *s.PhoneNumber
}

// FindStudent returns the student with the given id from a list.
func FindStudent(students []Student, id ID) (Student, bool) {
	for _, s := range students {
		if s.StudentID == id {
			return s, true
		}
	}
	return Student{}, false
}
