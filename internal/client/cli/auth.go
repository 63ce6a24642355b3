package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/consultbook/internal/client/models"
	"github.com/dmitrijs2005/consultbook/internal/client/services"
	"github.com/dmitrijs2005/consultbook/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login asks for an email and continues with a password for existing
// accounts or with an emailed code for new ones.
func (a *App) Login(ctx context.Context) error {
	return a.login(ctx, false)
}

// LoginWithOtp is Login that always uses an emailed code.
func (a *App) LoginWithOtp(ctx context.Context) error {
	return a.login(ctx, true)
}

func (a *App) login(ctx context.Context, wantsOtp bool) error {
	if a.isLoggedIn(ctx) {
		printlnFn("Already signed in, type 'logout' first")
		return nil
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	res, err := a.gate.Check(ctx, email, wantsOtp)
	if err != nil {
		return err
	}

	switch res.State {
	case services.GatePassword:
		return a.passwordLogin(ctx, res.Email)
	case services.GateAwaitingOtp:
		printlnFn(fmt.Sprintf("We sent a 6-digit code to %s", res.Email))
		return a.otpLogin(ctx, res)
	}
	return nil
}

func (a *App) passwordLogin(ctx context.Context, email string) error {
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	out, err := a.verifier.Verify(ctx, models.Credential{
		Kind:   models.CredentialPassword,
		Email:  email,
		Secret: string(password),
	})
	if err != nil {
		return err
	}
	return a.arrive(ctx, out.Destination)
}

// otpLogin reads the code until it verifies or the user cancels. Wrong
// codes and resend problems are reported without leaving the prompt.
func (a *App) otpLogin(ctx context.Context, res *services.GateResult) error {
	c := services.NewOtpChallenge(res.Email, res.ExistingAccount, a.api, a.verifier,
		a.config.ResendCooldown, a.log.With("component", "otp"))
	c.Start(ctx)
	defer c.Close()

	for {
		line, err := getSimpleText(a.reader, otpPrompt(c.State()), a.out)
		if err != nil {
			return err
		}

		switch line {
		case "cancel":
			printlnFn("Cancelled")
			return nil
		case "resend":
			if err := c.Resend(ctx); err != nil {
				if errors.Is(err, services.ErrResendCooldown) {
					printlnFn(fmt.Sprintf("You can request a new code in %ds", c.State().SecondsUntilResendAllowed))
				} else {
					printlnFn("Error:", err)
				}
				continue
			}
			printlnFn("A new code is on its way")
			continue
		}

		if err := enterDigits(c, line); err != nil {
			printlnFn("Error:", err)
			continue
		}
		if !c.CanSubmit() {
			continue
		}

		out, err := c.Submit(ctx)
		if err != nil {
			printlnFn("Error:", err)
			continue
		}
		return a.arrive(ctx, out.Destination)
	}
}

// enterDigits applies one input line to c. A full code is pasted; anything
// shorter is typed from the focused slot on, with "-" erasing.
func enterDigits(c *services.OtpChallenge, line string) error {
	if len(line) == models.OtpLength && c.Paste(line) == nil {
		return nil
	}
	for _, r := range line {
		focus := c.State().Focus
		if r == '-' {
			if err := c.Backspace(focus); err != nil {
				return err
			}
			continue
		}
		if err := c.Type(focus, string(r)); err != nil {
			return err
		}
	}
	return nil
}

func otpPrompt(st models.OtpState) string {
	slots := make([]string, models.OtpLength)
	for i, d := range st.Digits {
		if d == "" {
			d = "_"
		}
		slots[i] = d
	}
	resend := "resend"
	if st.SecondsUntilResendAllowed > 0 {
		resend = fmt.Sprintf("resend in %ds", st.SecondsUntilResendAllowed)
	}
	return fmt.Sprintf("Code [%s] (digits, '-' to erase, %s, cancel)", strings.Join(slots, " "), resend)
}

// arrive moves the CLI to dest.
func (a *App) arrive(ctx context.Context, dest models.Destination) error {
	a.location = dest
	switch dest {
	case models.DestinationAdminHome:
		printlnFn("Signed in. Opening the admin dashboard.")
	case models.DestinationUserHome:
		printlnFn("Signed in. Opening your consultations.")
	case models.DestinationOnboarding:
		printlnFn("Let's set up your profile.")
		return a.Onboard(ctx)
	case models.DestinationSignIn:
		printlnFn("Please sign in again.")
	}
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	sess, err := a.sessions.Read(ctx)
	if errors.Is(err, services.ErrNoSession) {
		if role, _ := a.sessions.Role(ctx); role != "" {
			printlnFn(fmt.Sprintf("Verified as %s, profile not completed", role))
			return nil
		}
		printlnFn("Not signed in")
		return nil
	}
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("%s (%s) id=%s", sess.Email, sess.Role, sess.UserID))
	return nil
}

// Logout forgets the session. A profile draft in progress is kept.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	a.location = models.DestinationSignIn
	printlnFn("Signed out")
	return nil
}

func (a *App) getStatus() string {
	sess, err := a.sessions.Read(context.Background())
	if err != nil {
		if a.location == models.DestinationOnboarding {
			return "(setting up profile)"
		}
		return "(signed out)"
	}
	return fmt.Sprintf("(%s %s)", sess.Email, sess.Role)
}
