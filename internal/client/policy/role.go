// Package policy holds the pure decisions of the auth flow: which role a
// backend user record carries and where the client goes next.
package policy

import "github.com/dmitrijs2005/consultbook/internal/client/models"

// adminStrings are the keys whose value "admin" marks an administrator.
var adminStrings = []string{"role", "user_type", "userType", "type"}

// adminFlags are the keys whose boolean true marks an administrator.
var adminFlags = []string{"is_admin", "isAdmin"}

// ResolveRole returns RoleAdmin when any admin indicator is set on record
// and RoleUser otherwise. Keys match case-sensitively; nil and unknown
// shapes resolve to RoleUser.
func ResolveRole(record models.UserRecord) models.Role {
	for _, key := range adminStrings {
		if s, ok := record[key].(string); ok && s == string(models.RoleAdmin) {
			return models.RoleAdmin
		}
	}
	for _, key := range adminFlags {
		if b, ok := record[key].(bool); ok && b {
			return models.RoleAdmin
		}
	}
	return models.RoleUser
}

// HasRoleIndicator reports whether record carries any of the keys
// ResolveRole looks at.
func HasRoleIndicator(record models.UserRecord) bool {
	for _, keys := range [][]string{adminStrings, adminFlags} {
		for _, key := range keys {
			if _, ok := record[key]; ok {
				return true
			}
		}
	}
	return false
}
