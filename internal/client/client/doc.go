// Package client contains the outward-facing building blocks of the
// ConsultBook client.
//
// # Overview
//
// The package provides:
//  1. The backend contract (see the Client interface): checkEmail, signIn,
//     resendOTP, verifyOTP and the profile update call.
//  2. An HTTP-JSON implementation (see HTTPClient) that stamps every request
//     with an X-Request-ID, attaches bearer tokens, and reports the HTTP
//     status alongside the decoded body.
//  3. A place search (see Geocoder, NominatimGeocoder) used as advisory
//     autocomplete by the onboarding wizard.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) that opens
//     the SQLite file and applies the embedded goose migrations.
//
// # Error Handling
//
// A response with any HTTP status is returned as data; callers classify it.
// Only a missing response is an error: ErrUnavailable for transport
// failures and ErrMalformedResponse for bodies that cannot be decoded.
// Match them with errors.Is.
//
// Concurrency & Contexts
//
// HTTPClient and NominatimGeocoder are safe for concurrent use. All calls
// honour context cancellation.
package client
