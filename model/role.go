package model

import (
	"fmt"
	"strings"
)

// Role is the trust domain a principal belongs to.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleDoctor, RolePatient}

// ParseRole converts a claim value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// TokenHeader is the request header each console sends its token in.
func (r Role) TokenHeader() string {
	switch r {
	case RoleAdmin:
		return "atoken"
	case RoleDoctor:
		return "dtoken"
	default:
		return "token"
	}
}

// Principal is the verified caller of a request.
type Principal struct {
	Role      Role   `json:"role" example:"doctor"`
	SubjectID uint   `json:"subject_id" example:"12"`
	Email     string `json:"email" example:"doctor@example.com"`
	SessionID string `json:"session_id,omitempty"`
}

// Key identifies the principal across roles, e.g. "doctor:12".
func (p Principal) Key() string {
	return fmt.Sprintf("%s:%d", p.Role, p.SubjectID)
}
