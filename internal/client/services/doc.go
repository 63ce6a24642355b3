// Package services implements the client's sign-in and onboarding flows on
// top of the backend client and the local metadata store.
package services
