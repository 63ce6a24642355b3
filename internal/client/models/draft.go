package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// isoLayout matches the millisecond ISO-8601 form used in persisted drafts.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// WizardStep is a step of the onboarding wizard.
type WizardStep int

const (
	StepBasicInfo WizardStep = iota
	StepBirthInfo
	StepPassword
	StepCompleted
)

// WizardSteps is the number of input steps.
const WizardSteps = 3

func (s WizardStep) String() string {
	switch s {
	case StepBasicInfo:
		return "basic_info"
	case StepBirthInfo:
		return "birth_info"
	case StepPassword:
		return "password"
	case StepCompleted:
		return "completed"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Gender values accepted by the basic info step.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// ProfileDraft is the in-progress profile collected by the wizard.
type ProfileDraft struct {
	Email           string
	Name            string     `validate:"notblank"`
	Gender          string     `validate:"oneof=male female other"`
	DateOfBirth     *time.Time `validate:"required"`
	TimeOfBirth     *time.Time `validate:"required"`
	PlaceOfBirth    string     `validate:"notblank"`
	Password        string     `validate:"min=8"`
	ConfirmPassword string     `validate:"eqfield=Password"`
}

// StepFields lists the draft fields validated by each step.
var StepFields = map[WizardStep][]string{
	StepBasicInfo: {"Name", "Gender"},
	StepBirthInfo: {"DateOfBirth", "TimeOfBirth", "PlaceOfBirth"},
	StepPassword:  {"Password", "ConfirmPassword"},
}

// draftRecord is the persisted form of ProfileDraft.
type draftRecord struct {
	Email           string  `json:"email"`
	Name            string  `json:"name"`
	Gender          string  `json:"gender"`
	DateOfBirth     *string `json:"dateOfBirth,omitempty"`
	TimeOfBirth     *string `json:"timeOfBirth,omitempty"`
	PlaceOfBirth    string  `json:"placeOfBirth"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirmPassword"`
}

func (d ProfileDraft) MarshalJSON() ([]byte, error) {
	return json.Marshal(draftRecord{
		Email:           d.Email,
		Name:            d.Name,
		Gender:          d.Gender,
		DateOfBirth:     formatISO(d.DateOfBirth),
		TimeOfBirth:     formatISO(d.TimeOfBirth),
		PlaceOfBirth:    d.PlaceOfBirth,
		Password:        d.Password,
		ConfirmPassword: d.ConfirmPassword,
	})
}

func (d *ProfileDraft) UnmarshalJSON(b []byte) error {
	var r draftRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	dob, err := parseISO(r.DateOfBirth)
	if err != nil {
		return fmt.Errorf("dateOfBirth: %w", err)
	}
	tob, err := parseISO(r.TimeOfBirth)
	if err != nil {
		return fmt.Errorf("timeOfBirth: %w", err)
	}
	*d = ProfileDraft{
		Email:           r.Email,
		Name:            r.Name,
		Gender:          r.Gender,
		DateOfBirth:     dob,
		TimeOfBirth:     tob,
		PlaceOfBirth:    r.PlaceOfBirth,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
	}
	return nil
}

func formatISO(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(isoLayout)
	return &s
}

func parseISO(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
