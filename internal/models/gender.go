package models

import (
	"encoding/json"
	"fmt"
)

// Gender is the closed set of values the student form offers.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Genders lists the selectable values in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// ParseGender validates raw form input.
func ParseGender(raw string) (Gender, error) {
	for _, g := range Genders {
		if string(g) == raw {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown gender %q", raw)
}

func (g Gender) String() string { return string(g) }

// UnmarshalJSON maps values outside the enumeration to the zero Gender so one
// odd record does not fail a whole list.
func (g *Gender) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*g = ""
		return nil
	}
	parsed, err := ParseGender(raw)
	if err != nil {
		*g = ""
		return nil
	}
	*g = parsed
	return nil
}
