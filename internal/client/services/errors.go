package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/consultbook/internal/client/models"
)

var (
	ErrBusy = errors.New("operation already in progress")

	ErrInvalidEmailFormat     = errors.New("invalid email format")
	ErrOtpIssueFailed         = errors.New("could not send verification code")
	ErrUnexpectedGateResponse = errors.New("unexpected email check response")
	ErrGateUnreachable        = errors.New("email check unavailable")

	ErrIncompleteCode  = errors.New("verification code is incomplete")
	ErrInvalidDigit    = errors.New("only single digits are accepted")
	ErrSlotOutOfRange  = errors.New("code slot out of range")
	ErrResendCooldown  = errors.New("resend is not allowed yet")
	ErrOtpResendFailed = errors.New("could not resend verification code")
	ErrDetached        = errors.New("challenge is closed")

	ErrEmptyPassword           = errors.New("password is empty")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidOtp              = errors.New("invalid verification code")
	ErrVerificationUnreachable = errors.New("verification unavailable")

	ErrNoSession      = errors.New("no session")
	ErrInvalidSession = errors.New("invalid session")

	ErrStepInvalid              = errors.New("step is not valid")
	ErrBackDisabled             = errors.New("already on the first step")
	ErrFinalStep                = errors.New("last step is completed with Finish")
	ErrNotOnFinalStep           = errors.New("profile can only be submitted from the last step")
	ErrWizardCompleted          = errors.New("onboarding is already completed")
	ErrMissingUserID            = errors.New("session has no user id")
	ErrProfileUpdateFailed      = errors.New("profile update rejected")
	ErrProfileUpdateUnreachable = errors.New("profile update unavailable")
)

// ValidationError lists the draft fields that failed a wizard step.
type ValidationError struct {
	Step   models.WizardStep
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s", e.Step, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrStepInvalid
}

// withMessage attaches the collaborator's message to err, if there is one.
func withMessage(err error, msg string) error {
	if msg == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, msg)
}
