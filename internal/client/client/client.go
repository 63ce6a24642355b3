package client

import (
	"context"

	"github.com/dmitrijs2005/consultbook/internal/client/models"
)

// Client is the booking backend as seen by the auth and onboarding flows.
//
// Each call returns the HTTP status of the response together with whatever
// the body carried; a non-2xx status is not an error at this level. Errors
// are reserved for responses that never arrived (ErrUnavailable) or could
// not be decoded (ErrMalformedResponse).
type Client interface {
	CheckEmail(ctx context.Context, email string) (*EmailCheckResponse, error)
	SignIn(ctx context.Context, email, password string) (*AuthResponse, error)
	ResendOTP(ctx context.Context, email string) (*StatusResponse, error)
	VerifyOTP(ctx context.Context, email, code string) (*AuthResponse, error)
	UpdateUser(ctx context.Context, token, userID string, p ProfileUpdate) (*ProfileResponse, error)
}

// Geocoder looks up places by free text.
type Geocoder interface {
	SearchPlaces(ctx context.Context, query string) ([]models.Place, error)
}

type EmailCheckResponse struct {
	Status       int
	IsRegistered bool
	Message      string
}

type StatusResponse struct {
	Status  int
	Message string
}

// AuthResponse is the result of signIn and verifyOTP. Token is empty when
// the backend did not issue one.
type AuthResponse struct {
	Status  int
	Message string
	Token   string
	User    models.UserRecord
}

type ProfileResponse struct {
	Status  int
	Message string
	Data    models.UserRecord
}

// ProfileUpdate is the body of the profile finalize call. Dates are already
// formatted for the backend.
type ProfileUpdate struct {
	Email        string `json:"email,omitempty"`
	Name         string `json:"name"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"dateOfBirth"`
	TimeOfBirth  string `json:"timeOfBirth"`
	PlaceOfBirth string `json:"placeOfBirth"`
	Password     string `json:"password,omitempty"`
}
