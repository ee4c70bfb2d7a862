package models

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form field names as posted by the student modal.
const (
	FieldName         = "name"
	FieldSurname      = "surname"
	FieldGender       = "gender"
	FieldDateOfBirth  = "dateOfBirth"
	FieldHomeAddress  = "homeAddress"
	FieldEmailAddress = "emailAddress"
	FieldPhoneNumber  = "phoneNumber"
	FieldCourseID     = "courseId"
)

// FormFields lists every editable field in modal order.
var FormFields = []string{
	FieldName, FieldSurname, FieldGender, FieldDateOfBirth,
	FieldHomeAddress, FieldEmailAddress, FieldPhoneNumber, FieldCourseID,
}

// FormState stages the editable fields of a student while the modal is open.
type FormState struct {
	Name         string `json:"name" validate:"required"`
	Surname      string `json:"surname" validate:"required"`
	Gender       string `json:"gender" validate:"required,oneof=Male Female Other"`
	DateOfBirth  string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	HomeAddress  string `json:"homeAddress" validate:"required"`
	EmailAddress string `json:"emailAddress" validate:"required,email"`
	PhoneNumber  string `json:"phoneNumber"`
	CourseID     string `json:"courseId" validate:"required"`
}

// StudentPayload is the create/update request body.
type StudentPayload struct {
	Name         string `json:"name"`
	Surname      string `json:"surname"`
	Gender       Gender `json:"gender"`
	DateOfBirth  Date   `json:"dateOfBirth"`
	HomeAddress  string `json:"homeAddress"`
	EmailAddress string `json:"emailAddress"`
	PhoneNumber  string `json:"phoneNumber"`
	CourseID     ID     `json:"courseId"`
}

// FormFromStudent copies a student into form fields for editing.
func FormFromStudent(s Student) FormState {
	return FormState{
		Name:         s.Name,
		Surname:      s.Surname,
		Gender:       s.Gender.String(),
		DateOfBirth:  s.DateOfBirth.String(),
		HomeAddress:  s.HomeAddress,
		EmailAddress: s.EmailAddress,
		PhoneNumber:  s.Phone(),
		CourseID:     s.CourseID.String(),
	}
}

// Get returns the value of a field by its form name.
func (f FormState) Get(name string) (string, bool) {
	switch name {
	case FieldName:
		return f.Name, true
	case FieldSurname:
		return f.Surname, true
	case FieldGender:
		return f.Gender, true
	case FieldDateOfBirth:
		return f.DateOfBirth, true
	case FieldHomeAddress:
		return f.HomeAddress, true
	case FieldEmailAddress:
		return f.EmailAddress, true
	case FieldPhoneNumber:
		return f.PhoneNumber, true
	case FieldCourseID:
		return f.CourseID, true
	}
	return "", false
}

// SetField updates one field by its form name and leaves the rest untouched.
func (f *FormState) SetField(name, value string) error {
	switch name {
	case FieldName:
		f.Name = value
	case FieldSurname:
		f.Surname = value
	case FieldGender:
		f.Gender = value
	case FieldDateOfBirth:
		f.DateOfBirth = value
	case FieldHomeAddress:
		f.HomeAddress = value
	case FieldEmailAddress:
		f.EmailAddress = value
	case FieldPhoneNumber:
		f.PhoneNumber = value
	case FieldCourseID:
		f.CourseID = value
	default:
		return fmt.Errorf("unknown form field %q", name)
	}
	return nil
}

// NewFormValidator returns a validator that reports fields by their form names.
func NewFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Payload validates the form and converts it into a request body.
func (f FormState) Payload(v *validator.Validate) (StudentPayload, error) {
	if v == nil {
		v = NewFormValidator()
	}
	if err := v.Struct(f); err != nil {
		return StudentPayload{}, &FormError{Problems: describe(err)}
	}
	gender, err := ParseGender(f.Gender)
	if err != nil {
		return StudentPayload{}, &FormError{Problems: []string{err.Error()}}
	}
	dob, err := ParseDate(f.DateOfBirth)
	if err != nil {
		return StudentPayload{}, &FormError{Problems: []string{err.Error()}}
	}
	return StudentPayload{
		Name:         f.Name,
		Surname:      f.Surname,
		Gender:       gender,
		DateOfBirth:  dob,
		HomeAddress:  f.HomeAddress,
		EmailAddress: f.EmailAddress,
		PhoneNumber:  f.PhoneNumber,
		CourseID:     ID(f.CourseID),
	}, nil
}

// FormError lists the problems that kept a form from being submitted.
type FormError struct {
	Problems []string
}

func (e *FormError) Error() string {
	return strings.Join(e.Problems, "; ")
}

func describe(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out = append(out, fe.Field()+" is required")
		case "email":
			out = append(out, fe.Field()+" must be a valid email address")
		case "datetime":
			out = append(out, fe.Field()+" must be a date (YYYY-MM-DD)")
		case "oneof":
			out = append(out, fe.Field()+" must be one of "+fe.Param())
		default:
			out = append(out, fe.Field()+" is invalid")
		}
	}
	return out
}
