package domain

import "fmt"

// RoleName is a closed enumeration of authorization roles. New roles are
// added here, never as free-form strings.
type RoleName string

const (
	RoleUser  RoleName = "ROLE_USER"
	RoleAdmin RoleName = "ROLE_ADMIN"
)

// Authority returns the string stored and matched during authorization checks.
func (r RoleName) Authority() string {
	return string(r)
}

// Valid reports whether the role belongs to the closed set.
func (r RoleName) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts a stored authority string back into a RoleName.
func ParseRole(authority string) (RoleName, error) {
	role := RoleName(authority)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", authority)
	}
	return role, nil
}

// HasRole reports whether any element of roles matches one of wanted.
func HasRole(roles []RoleName, wanted ...RoleName) bool {
	for _, have := range roles {
		for _, want := range wanted {
			if have == want {
				return true
			}
		}
	}
	return false
}
