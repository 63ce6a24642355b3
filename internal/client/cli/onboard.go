package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/consultbook/internal/client/models"
	"github.com/dmitrijs2005/consultbook/internal/client/services"
	"github.com/dmitrijs2005/consultbook/internal/common"
)

const (
	cmdBack   = "back"
	cmdCancel = "cancel"

	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	maxSuggestions = 5
)

var (
	errBack      = errors.New("back")
	errCancelled = errors.New("cancelled")
)

// Onboard runs the profile wizard from the first step, starting from the
// saved draft if there is one.
func (a *App) Onboard(ctx context.Context) error {
	w := services.NewOnboardingWizard(ctx, a.api, a.geocoder, a.sessions, a.drafts, a.log.With("component", "wizard"))
	a.location = models.DestinationOnboarding
	return a.runWizard(ctx, w)
}

// Resume reopens an interrupted profile setup.
func (a *App) Resume(ctx context.Context) error {
	saved, err := a.drafts.Load(ctx)
	if err != nil {
		return err
	}
	if saved == nil {
		printlnFn("No profile setup to resume")
		return nil
	}
	who := strings.TrimSpace(saved.Name)
	if who == "" {
		who = saved.Email
	}
	printlnFn(fmt.Sprintf("Resuming profile setup for %s", who))
	return a.Onboard(ctx)
}

func (a *App) runWizard(ctx context.Context, w *services.OnboardingWizard) error {
	for {
		step := w.Step()
		printlnFn(fmt.Sprintf("Step %d of %d: %s (type '%s' or '%s' at any prompt)",
			int(step)+1, models.WizardSteps, stepTitle(step), cmdBack, cmdCancel))

		var err error
		switch step {
		case models.StepBasicInfo:
			err = a.askBasicInfo(w)
		case models.StepBirthInfo:
			err = a.askBirthInfo(ctx, w)
		case models.StepPassword:
			err = a.askPassword(w)
		default:
			return nil
		}

		switch {
		case errors.Is(err, errCancelled):
			printlnFn("Profile setup paused, type 'resume' to continue")
			return nil
		case errors.Is(err, errBack):
			if err := w.Back(); err != nil {
				printlnFn("Error:", err)
			}
			continue
		case err != nil:
			return err
		}

		if step != models.StepPassword {
			if err := w.Next(ctx); err != nil {
				printlnFn("Error:", err)
			}
			continue
		}

		dest, err := w.Finish(ctx)
		if errors.Is(err, services.ErrNoSession) || errors.Is(err, services.ErrMissingUserID) {
			printlnFn("Your profile is saved on this device.")
			_ = a.arrive(ctx, models.DestinationSignIn)
			return err
		}
		if err != nil {
			printlnFn("Error:", err)
			continue
		}
		printlnFn("Profile saved.")
		return a.arrive(ctx, dest)
	}
}

func (a *App) askBasicInfo(w *services.OnboardingWizard) error {
	d := w.Draft()
	name, err := a.ask("Full name", d.Name)
	if err != nil {
		return err
	}
	gender, err := a.ask("Gender (male/female/other)", d.Gender)
	if err != nil {
		return err
	}
	return w.Edit(func(d *models.ProfileDraft) {
		d.Name = name
		d.Gender = strings.ToLower(gender)
	})
}

func (a *App) askBirthInfo(ctx context.Context, w *services.OnboardingWizard) error {
	d := w.Draft()
	dob, err := a.askTime("Date of birth (YYYY-MM-DD)", dateLayout, d.DateOfBirth)
	if err != nil {
		return err
	}
	tob, err := a.askTime("Time of birth (HH:MM, 24h)", timeLayout, d.TimeOfBirth)
	if err != nil {
		return err
	}
	place, err := a.ask("Place of birth", d.PlaceOfBirth)
	if err != nil {
		return err
	}
	if place != d.PlaceOfBirth {
		if place, err = a.pickPlace(ctx, w, place); err != nil {
			return err
		}
	}
	return w.Edit(func(d *models.ProfileDraft) {
		d.DateOfBirth = dob
		d.TimeOfBirth = tob
		d.PlaceOfBirth = place
	})
}

// pickPlace offers geocoder suggestions for typed. Without suggestions
// the typed text is used as is.
func (a *App) pickPlace(ctx context.Context, w *services.OnboardingWizard, typed string) (string, error) {
	places := w.SuggestPlaces(ctx, typed)
	if len(places) == 0 {
		return typed, nil
	}
	if len(places) > maxSuggestions {
		places = places[:maxSuggestions]
	}
	for i, p := range places {
		printlnFn(fmt.Sprintf("  %d) %s", i+1, p.DisplayName))
	}
	for {
		choice, err := a.ask("Pick a number, or press Enter to keep what you typed", "")
		if err != nil {
			return "", err
		}
		if choice == "" {
			return typed, nil
		}
		n, err := strconv.Atoi(choice)
		if err == nil && n >= 1 && n <= len(places) {
			return places[n-1].DisplayName, nil
		}
		printlnFn("Error: no such suggestion")
	}
}

func (a *App) askPassword(w *services.OnboardingWizard) error {
	password, err := getPassword(a.reader, "Choose a password (at least 8 characters)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	switch string(password) {
	case cmdBack:
		return errBack
	case cmdCancel:
		return errCancelled
	}

	confirm, err := getPassword(a.reader, "Repeat the password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	return w.Edit(func(d *models.ProfileDraft) {
		d.Password = string(password)
		d.ConfirmPassword = string(confirm)
	})
}

// ask reads one value. An empty answer keeps current.
func (a *App) ask(label, current string) (string, error) {
	prompt := label
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]", label, current)
	}
	v, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	switch v {
	case cmdBack:
		return "", errBack
	case cmdCancel:
		return "", errCancelled
	case "":
		return current, nil
	}
	return v, nil
}

// askTime reads a value in layout until it parses. Values are taken as
// UTC wall-clock readings.
func (a *App) askTime(label, layout string, current *time.Time) (*time.Time, error) {
	cur := ""
	if current != nil {
		cur = current.UTC().Format(layout)
	}
	for {
		v, err := a.ask(label, cur)
		if err != nil {
			return nil, err
		}
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse(layout, v)
		if err == nil {
			return &t, nil
		}
		printlnFn(fmt.Sprintf("Error: cannot read %q", v))
	}
}

func stepTitle(s models.WizardStep) string {
	switch s {
	case models.StepBasicInfo:
		return "About you"
	case models.StepBirthInfo:
		return "Birth details"
	case models.StepPassword:
		return "Password"
	default:
		return "Done"
	}
}
