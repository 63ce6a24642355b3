package policy

import (
	"net/http"

	"github.com/dmitrijs2005/consultbook/internal/client/models"
)

// ClassifyEmailCheck turns a checkEmail status into an outcome. 201, or 200
// with isRegistered, is an existing account; any other 200 or a 202 is a
// new one.
func ClassifyEmailCheck(status int, isRegistered bool, message string) models.EmailCheckResult {
	r := models.EmailCheckResult{RawStatus: status, Message: message}
	switch {
	case status == http.StatusCreated, status == http.StatusOK && isRegistered:
		r.Outcome = models.EmailOutcomeExistingUser
	case status == http.StatusOK, status == http.StatusAccepted:
		r.Outcome = models.EmailOutcomeNewUser
	default:
		r.Outcome = models.EmailOutcomeError
	}
	return r
}
