package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrijs2005/consultbook/internal/client/client"
	"github.com/dmitrijs2005/consultbook/internal/client/models"
	"github.com/dmitrijs2005/consultbook/internal/client/policy"
	"github.com/dmitrijs2005/consultbook/internal/client/validation"
	"github.com/dmitrijs2005/consultbook/internal/logging"
	"github.com/go-playground/validator/v10"
)

// GateState is where the email gate leaves the user.
type GateState int

const (
	GateEmail GateState = iota
	GatePassword
	GateAwaitingOtp
)

func (s GateState) String() string {
	switch s {
	case GatePassword:
		return "password"
	case GateAwaitingOtp:
		return "awaiting_otp"
	default:
		return "email"
	}
}

// GateResult is the outcome of a successful email check.
type GateResult struct {
	State GateState
	Email string
	Check models.EmailCheckResult
	// ExistingAccount is set when a code was sent to an account that
	// already exists.
	ExistingAccount bool
}

// EmailGate decides whether an address continues with a password or with
// a one-time code.
type EmailGate struct {
	api      client.Client
	sessions *SessionStore
	validate *validator.Validate
	log      logging.Logger

	mu   sync.Mutex
	busy bool
}

func NewEmailGate(api client.Client, sessions *SessionStore, log logging.Logger) *EmailGate {
	if log == nil {
		log = logging.Nop()
	}
	return &EmailGate{api: api, sessions: sessions, validate: validation.New(), log: log}
}

// Check classifies email and, for new accounts or when wantsOtpLogin is
// set, asks the backend to send a code. Malformed addresses never reach
// the network.
func (g *EmailGate) Check(ctx context.Context, email string, wantsOtpLogin bool) (*GateResult, error) {
	email = strings.TrimSpace(email)
	if err := g.validate.VarCtx(ctx, email, "emailformat"); err != nil {
		return nil, ErrInvalidEmailFormat
	}

	if !g.acquire() {
		return nil, ErrBusy
	}
	defer g.release()

	resp, err := g.api.CheckEmail(ctx, email)
	if err != nil {
		g.log.Warn(ctx, "check email failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrGateUnreachable, err)
	}

	check := policy.ClassifyEmailCheck(resp.Status, resp.IsRegistered, resp.Message)
	g.log.Debug(ctx, "email checked", "outcome", check.Outcome, "status", check.RawStatus)

	switch check.Outcome {
	case models.EmailOutcomeError:
		return nil, withMessage(ErrUnexpectedGateResponse, check.Message)
	case models.EmailOutcomeExistingUser:
		if !wantsOtpLogin {
			return &GateResult{State: GatePassword, Email: email, Check: check}, nil
		}
	}

	if err := g.issueOtp(ctx, email); err != nil {
		return nil, err
	}

	if err := g.sessions.RememberEmail(ctx, email); err != nil {
		g.log.Warn(ctx, "cannot remember email", "error", err)
	}

	return &GateResult{
		State:           GateAwaitingOtp,
		Email:           email,
		Check:           check,
		ExistingAccount: check.Outcome == models.EmailOutcomeExistingUser,
	}, nil
}

func (g *EmailGate) issueOtp(ctx context.Context, email string) error {
	resp, err := g.api.ResendOTP(ctx, email)
	if err != nil {
		g.log.Warn(ctx, "issue otp failed", "error", err)
		return fmt.Errorf("%w: %w", ErrOtpIssueFailed, err)
	}
	if resp.Status != http.StatusOK && resp.Status != http.StatusCreated {
		return withMessage(ErrOtpIssueFailed, resp.Message)
	}
	return nil
}

func (g *EmailGate) acquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return false
	}
	g.busy = true
	return true
}

func (g *EmailGate) release() {
	g.mu.Lock()
	g.busy = false
	g.mu.Unlock()
}
