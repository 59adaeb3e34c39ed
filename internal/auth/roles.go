package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser     Role = "user"
	RoleReviewer Role = "reviewer"
	RoleAdmin    Role = "admin"
)

// Capability names an action gated by role.
type Capability int

const (
	// ModerateReviews allows editing or soft-deleting other users' reviews.
	ModerateReviews Capability = iota
	// HardDelete allows permanently removing records.
	HardDelete
	// ManageCatalog allows writing artists and albums.
	ManageCatalog
	// PublishNews allows writing news articles.
	PublishNews
	// ManageUsers allows changing other accounts and their roles.
	ManageUsers
)

var capabilities = map[Role]map[Capability]bool{
	RoleUser: {},
	RoleReviewer: {
		ModerateReviews: true,
		ManageCatalog:   true,
		PublishNews:     true,
	},
	RoleAdmin: {
		ModerateReviews: true,
		HardDelete:      true,
		ManageCatalog:   true,
		PublishNews:     true,
		ManageUsers:     true,
	},
}

// ParseRole validates a role name.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := capabilities[role]; !ok {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

// Can reports whether the role grants c.
func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}
