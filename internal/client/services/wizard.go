package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/consultbook/internal/client/client"
	"github.com/dmitrijs2005/consultbook/internal/client/models"
	"github.com/dmitrijs2005/consultbook/internal/client/policy"
	"github.com/dmitrijs2005/consultbook/internal/client/validation"
	"github.com/dmitrijs2005/consultbook/internal/logging"
	"github.com/go-playground/validator/v10"
)

const (
	dateOfBirthLayout = "2006-01-02"
	timeOfBirthLayout = "3:04 PM"
)

// OnboardingWizard collects the profile of a freshly verified user in
// three steps and submits it.
type OnboardingWizard struct {
	api      client.Client
	geocoder client.Geocoder
	sessions *SessionStore
	drafts   *DraftStore
	validate *validator.Validate
	log      logging.Logger

	mu    sync.Mutex
	step  models.WizardStep
	draft models.ProfileDraft
	busy  bool
}

// NewOnboardingWizard starts on the first step with the saved draft, or
// with an empty draft carrying the remembered email. A saved draft made
// for a different email is deleted.
func NewOnboardingWizard(ctx context.Context, api client.Client, geocoder client.Geocoder, sessions *SessionStore, drafts *DraftStore, log logging.Logger) *OnboardingWizard {
	if log == nil {
		log = logging.Nop()
	}
	w := &OnboardingWizard{
		api:      api,
		geocoder: geocoder,
		sessions: sessions,
		drafts:   drafts,
		validate: validation.New(),
		log:      log,
		step:     models.StepBasicInfo,
	}

	email, err := sessions.Email(ctx)
	if err != nil {
		log.Warn(ctx, "cannot read remembered email", "error", err)
	}

	saved, err := drafts.Load(ctx)
	if err != nil {
		log.Warn(ctx, "cannot load saved draft", "error", err)
	}
	if saved != nil && saved.Email != "" && email != "" && !strings.EqualFold(saved.Email, email) {
		log.Info(ctx, "discarding draft of another account")
		if err := drafts.Delete(ctx); err != nil {
			log.Warn(ctx, "cannot delete draft", "error", err)
		}
		saved = nil
	}
	if saved != nil {
		w.draft = *saved
		if w.draft.Email == "" {
			w.draft.Email = email
		}
		log.Debug(ctx, "draft restored")
		return w
	}

	w.draft.Email = email
	return w
}

func (w *OnboardingWizard) Step() models.WizardStep {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Draft returns a copy of the in-memory draft.
func (w *OnboardingWizard) Draft() models.ProfileDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyDraft(w.draft)
}

// Edit changes the in-memory draft. Nothing is saved until Next.
func (w *OnboardingWizard) Edit(fn func(d *models.ProfileDraft)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == models.StepCompleted {
		return ErrWizardCompleted
	}
	fn(&w.draft)
	return nil
}

// Validate checks the fields of the current step.
func (w *OnboardingWizard) Validate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.validateLocked()
}

func (w *OnboardingWizard) CanNext() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step < models.StepPassword && !w.busy && w.validateLocked() == nil
}

func (w *OnboardingWizard) CanBack() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step > models.StepBasicInfo && w.step < models.StepCompleted && !w.busy
}

// Next validates the current step, saves the draft and advances.
func (w *OnboardingWizard) Next(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.step == models.StepCompleted:
		return ErrWizardCompleted
	case w.step == models.StepPassword:
		return ErrFinalStep
	case w.busy:
		return ErrBusy
	}
	if err := w.validateLocked(); err != nil {
		return err
	}
	if err := w.drafts.Save(ctx, w.draft); err != nil {
		w.log.Warn(ctx, "cannot save draft", "error", err)
	}
	w.step++
	return nil
}

// Back returns to the previous step. The draft is kept as is.
func (w *OnboardingWizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.step == models.StepCompleted:
		return ErrWizardCompleted
	case w.step == models.StepBasicInfo:
		return ErrBackDisabled
	case w.busy:
		return ErrBusy
	}
	w.step--
	return nil
}

// SuggestPlaces looks query up in the geocoder. Lookup failures only mean
// there are no suggestions.
func (w *OnboardingWizard) SuggestPlaces(ctx context.Context, query string) []models.Place {
	query = strings.TrimSpace(query)
	if query == "" || w.geocoder == nil {
		return nil
	}
	places, err := w.geocoder.SearchPlaces(ctx, query)
	if err != nil {
		w.log.Warn(ctx, "place lookup failed", "error", err)
		return nil
	}
	return places
}

// Finish submits the profile from the last step. On success the draft is
// removed, the session is stored again with the role the backend reports
// and the step becomes Completed. On any failure the draft is kept.
func (w *OnboardingWizard) Finish(ctx context.Context) (models.Destination, error) {
	w.mu.Lock()
	switch {
	case w.step == models.StepCompleted:
		w.mu.Unlock()
		return "", ErrWizardCompleted
	case w.step != models.StepPassword:
		w.mu.Unlock()
		return "", ErrNotOnFinalStep
	case w.busy:
		w.mu.Unlock()
		return "", ErrBusy
	}
	if err := w.validateLocked(); err != nil {
		w.mu.Unlock()
		return "", err
	}
	draft := copyDraft(w.draft)
	w.busy = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.busy = false
		w.mu.Unlock()
	}()

	if err := w.drafts.Save(ctx, draft); err != nil {
		w.log.Warn(ctx, "cannot save draft", "error", err)
	}

	sess, err := w.sessions.Read(ctx)
	if errors.Is(err, ErrNoSession) {
		return models.DestinationSignIn, ErrNoSession
	}
	if err != nil {
		return "", err
	}
	if sess.UserID == "" {
		return models.DestinationSignIn, ErrMissingUserID
	}

	email := draft.Email
	if email == "" {
		email = sess.Email
	}
	resp, err := w.api.UpdateUser(ctx, sess.Token, sess.UserID, client.ProfileUpdate{
		Email:        email,
		Name:         strings.TrimSpace(draft.Name),
		Gender:       draft.Gender,
		DateOfBirth:  draft.DateOfBirth.UTC().Format(dateOfBirthLayout),
		TimeOfBirth:  FormatTimeOfBirth(*draft.TimeOfBirth),
		PlaceOfBirth: strings.TrimSpace(draft.PlaceOfBirth),
		Password:     draft.Password,
	})
	if err != nil {
		w.log.Warn(ctx, "profile update failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrProfileUpdateUnreachable, err)
	}
	if resp.Status != http.StatusOK {
		w.log.Info(ctx, "profile update rejected", "status", resp.Status)
		return "", withMessage(ErrProfileUpdateFailed, resp.Message)
	}

	if err := w.drafts.Delete(ctx); err != nil {
		w.log.Warn(ctx, "cannot delete draft", "error", err)
	}

	if policy.HasRoleIndicator(resp.Data) {
		sess.Role = policy.ResolveRole(resp.Data)
	}
	if err := w.sessions.Commit(ctx, sess); err != nil {
		w.log.Warn(ctx, "cannot store session after onboarding", "error", err)
	}

	w.mu.Lock()
	w.step = models.StepCompleted
	w.mu.Unlock()

	w.log.Info(ctx, "onboarding completed", "role", sess.Role)
	return policy.Redirect(sess.Role, true, true), nil
}

func (w *OnboardingWizard) validateLocked() error {
	fields, ok := models.StepFields[w.step]
	if !ok {
		return nil
	}
	err := w.validate.StructPartial(w.draft, fields...)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return &ValidationError{Step: w.step, Fields: validation.Fields(verrs)}
}

// FormatTimeOfBirth renders t as a 12-hour clock time, e.g. "3:04 PM".
func FormatTimeOfBirth(t time.Time) string {
	return t.UTC().Format(timeOfBirthLayout)
}

func copyDraft(d models.ProfileDraft) models.ProfileDraft {
	if d.DateOfBirth != nil {
		t := *d.DateOfBirth
		d.DateOfBirth = &t
	}
	if d.TimeOfBirth != nil {
		t := *d.TimeOfBirth
		d.TimeOfBirth = &t
	}
	return d
}
