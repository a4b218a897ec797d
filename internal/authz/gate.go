// Package authz decides trainee vs. administrator from a static allow-list.
package authz

import (
	"strings"

	"github.com/akt-prep/backend/internal/models"
)

// Gate maps an authenticated identity's email to a role by exact membership
// in the configured administrator set. Comparison is on the trimmed,
// lower-cased email; there is no hierarchy and no claim inspection.
type Gate struct {
	admins map[string]struct{}
}

func NewGate(adminEmails []string) *Gate {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = normalize(email)
		if email != "" {
			admins[email] = struct{}{}
		}
	}
	return &Gate{admins: admins}
}

func (g *Gate) IsAdmin(email string) bool {
	_, ok := g.admins[normalize(email)]
	return ok
}

func (g *Gate) Role(email string) models.Role {
	if g.IsAdmin(email) {
		return models.RoleAdmin
	}
	return models.RoleTrainee
}

func normalize(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
