// Package otp issues one-time sign-in codes and delivers them by email.
package otp

import (
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/consultbook/internal/common"
)

const (
	// CodeLength is the number of digits in a code.
	CodeLength = 6
	// MaxAttempts is how many wrong guesses burn a code.
	MaxAttempts = 5
)

var (
	ErrInvalidCode = errors.New("invalid or expired code")
	ErrNoCode      = errors.New("no code issued")
)

type entry struct {
	hash     []byte
	expires  time.Time
	attempts int
}

// Store keeps the bcrypt hash of the latest code per email. Issuing a new
// code replaces the previous one.
type Store struct {
	mu       sync.Mutex
	codes    map[string]*entry
	validity time.Duration
	now      func() time.Time
	generate func(n int) (string, error)
}

func NewStore(validity time.Duration) *Store {
	return &Store{
		codes:    make(map[string]*entry),
		validity: validity,
		now:      time.Now,
		generate: common.GenerateDigits,
	}
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Issue creates a code for email and returns it in clear text.
func (s *Store) Issue(email string) (string, error) {
	code, err := s.generate(CodeLength)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[key(email)] = &entry{hash: hash, expires: s.now().Add(s.validity)}
	return code, nil
}

// Verify consumes the code for email when it matches. Expired codes and
// codes with too many wrong guesses are dropped.
func (s *Store) Verify(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(email)
	e, ok := s.codes[k]
	if !ok {
		return ErrNoCode
	}
	if s.now().After(e.expires) {
		delete(s.codes, k)
		return ErrInvalidCode
	}
	if bcrypt.CompareHashAndPassword(e.hash, []byte(code)) != nil {
		e.attempts++
		if e.attempts >= MaxAttempts {
			delete(s.codes, k)
		}
		return ErrInvalidCode
	}
	delete(s.codes, k)
	return nil
}
