package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/consultbook/internal/client/client"
	"github.com/dmitrijs2005/consultbook/internal/client/models"
	"github.com/dmitrijs2005/consultbook/internal/common"
	"github.com/dmitrijs2005/consultbook/internal/logging"
)

// Exchanger is the part of CredentialVerifier the OTP challenge needs.
type Exchanger interface {
	Exchange(ctx context.Context, cred models.Credential) (*Grant, error)
	Establish(ctx context.Context, g *Grant) (*Outcome, error)
}

// Ticker is the cooldown clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

func newStdTicker(d time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(d)}
}

// OtpChallenge holds the six code slots and the resend cooldown for one
// email address. It is safe for concurrent use.
type OtpChallenge struct {
	email    string
	existing bool
	api      client.Client
	verifier Exchanger
	log      logging.Logger
	cooldown int

	// NewTicker is replaced in tests.
	NewTicker func(time.Duration) Ticker

	mu        sync.Mutex
	state     models.OtpState
	closed    bool
	watch     chan struct{}
	timerStop chan struct{}
	timerDone chan struct{}
}

// NewOtpChallenge prepares a challenge for email. existing marks the
// account as already set up. cooldown <= 0 selects the default.
func NewOtpChallenge(email string, existing bool, api client.Client, verifier Exchanger, cooldown time.Duration, log logging.Logger) *OtpChallenge {
	if log == nil {
		log = logging.Nop()
	}
	secs := int(cooldown / time.Second)
	if secs <= 0 {
		secs = common.ResendCooldownSeconds
	}
	return &OtpChallenge{
		email:     email,
		existing:  existing,
		api:       api,
		verifier:  verifier,
		log:       log,
		cooldown:  secs,
		NewTicker: newStdTicker,
	}
}

func (c *OtpChallenge) Email() string {
	return c.email
}

// Start resets the slots and the cooldown and starts the countdown. The
// countdown stops on Close or when ctx is done.
func (c *OtpChallenge) Start(ctx context.Context) {
	c.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = false
	c.resetLocked()

	watch := make(chan struct{})
	c.watch = watch
	go func() {
		select {
		case <-ctx.Done():
			c.closeIf(watch)
		case <-watch:
		}
	}()
	c.startTimerLocked()
}

// Close stops the countdown and detaches any call still in flight.
func (c *OtpChallenge) Close() {
	c.closeIf(nil)
}

// closeIf closes the challenge when watch is nil or still the current
// watcher, so a stale context cannot close a restarted challenge.
func (c *OtpChallenge) closeIf(watch chan struct{}) {
	c.mu.Lock()
	if c.closed || (watch != nil && watch != c.watch) {
		c.mu.Unlock()
		return
	}
	c.closed = true
	stop, done := c.timerStop, c.timerDone
	c.timerStop, c.timerDone = nil, nil
	if c.watch != nil {
		close(c.watch)
		c.watch = nil
	}
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// State returns a copy of the current state.
func (c *OtpChallenge) State() models.OtpState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Type puts digit into slot i and moves focus to the next slot.
func (c *OtpChallenge) Type(i int, digit string) error {
	if len(digit) != 1 || digit[0] < '0' || digit[0] > '9' {
		return ErrInvalidDigit
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.slotLocked(i); err != nil {
		return err
	}
	c.state.Digits[i] = digit
	if i < models.OtpLength-1 {
		c.state.Focus = i + 1
	} else {
		c.state.Focus = i
	}
	return nil
}

// Backspace clears slot i, or moves focus back when it is already empty.
func (c *OtpChallenge) Backspace(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.slotLocked(i); err != nil {
		return err
	}
	switch {
	case c.state.Digits[i] != "":
		c.state.Digits[i] = ""
		c.state.Focus = i
	case i > 0:
		c.state.Focus = i - 1
	default:
		c.state.Focus = 0
	}
	return nil
}

// Paste fills every slot from a full code.
func (c *OtpChallenge) Paste(code string) error {
	if len(code) != models.OtpLength {
		return ErrInvalidDigit
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return ErrInvalidDigit
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrDetached
	}
	for i := 0; i < models.OtpLength; i++ {
		c.state.Digits[i] = code[i : i+1]
	}
	c.state.Focus = models.OtpLength - 1
	return nil
}

func (c *OtpChallenge) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.state.Complete() && !c.inFlightLocked()
}

func (c *OtpChallenge) CanResend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.state.SecondsUntilResendAllowed == 0 && !c.inFlightLocked()
}

// Submit verifies the entered code. On failure the digits are kept and
// the challenge goes back to entering. A result that arrives after Close
// is dropped and ErrDetached returned.
func (c *OtpChallenge) Submit(ctx context.Context) (*Outcome, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrDetached
	}
	if !c.state.Complete() {
		c.mu.Unlock()
		return nil, ErrIncompleteCode
	}
	if c.inFlightLocked() {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.state.Phase = models.OtpSubmitting
	cred := models.Credential{
		Kind:            models.CredentialOtp,
		Email:           c.email,
		Secret:          c.state.Code(),
		ExistingAccount: c.existing,
	}
	c.mu.Unlock()

	g, err := c.verifier.Exchange(ctx, cred)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Debug(ctx, "otp result dropped after close")
		return nil, ErrDetached
	}
	if err != nil {
		c.state.Phase = models.OtpEntering
		c.mu.Unlock()
		return nil, err
	}
	c.mu.Unlock()

	out, err := c.verifier.Establish(ctx, g)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state.Phase = models.OtpEntering
		return nil, err
	}
	c.state.Phase = models.OtpVerified
	return out, nil
}

// Resend asks for a new code once the cooldown is over. Success clears the
// slots and restarts the cooldown; failure changes nothing.
func (c *OtpChallenge) Resend(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrDetached
	}
	if c.state.SecondsUntilResendAllowed > 0 {
		c.mu.Unlock()
		return ErrResendCooldown
	}
	if c.inFlightLocked() {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.Resending = true
	c.mu.Unlock()

	resp, err := c.api.ResendOTP(ctx, c.email)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Resending = false
	if c.closed {
		return ErrDetached
	}
	if err != nil {
		c.log.Warn(ctx, "resend otp failed", "error", err)
		return fmt.Errorf("%w: %w", ErrOtpResendFailed, err)
	}
	if resp.Status != http.StatusOK && resp.Status != http.StatusCreated {
		return withMessage(ErrOtpResendFailed, resp.Message)
	}

	c.resetLocked()
	c.startTimerLocked()
	return nil
}

func (c *OtpChallenge) resetLocked() {
	c.state = models.OtpState{SecondsUntilResendAllowed: c.cooldown}
}

func (c *OtpChallenge) inFlightLocked() bool {
	return c.state.Phase == models.OtpSubmitting || c.state.Resending
}

func (c *OtpChallenge) slotLocked(i int) error {
	if c.closed {
		return ErrDetached
	}
	if i < 0 || i >= models.OtpLength {
		return ErrSlotOutOfRange
	}
	return nil
}

// startTimerLocked runs the countdown until it reaches zero. It is a no-op
// when a countdown is already running.
func (c *OtpChallenge) startTimerLocked() {
	if c.closed || c.timerStop != nil {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	c.timerStop, c.timerDone = stop, done

	t := c.NewTicker(time.Second)
	go func() {
		defer close(done)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C():
				if !c.tick(stop) {
					return
				}
			}
		}
	}()
}

// tick decrements the cooldown and reports whether the countdown goes on.
func (c *OtpChallenge) tick(stop chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timerStop != stop {
		return false
	}
	if c.state.SecondsUntilResendAllowed > 0 {
		c.state.SecondsUntilResendAllowed--
	}
	if c.state.SecondsUntilResendAllowed == 0 {
		c.timerStop, c.timerDone = nil, nil
		return false
	}
	return true
}
