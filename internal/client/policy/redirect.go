package policy

import "github.com/dmitrijs2005/consultbook/internal/client/models"

// Redirect picks the destination after authentication or onboarding.
// Accounts known to exist, or that already have a name, go to the home of
// their role; everyone else goes through onboarding.
func Redirect(role models.Role, isExistingUser, hasName bool) models.Destination {
	if !isExistingUser && !hasName {
		return models.DestinationOnboarding
	}
	if role == models.RoleAdmin {
		return models.DestinationAdminHome
	}
	return models.DestinationUserHome
}
