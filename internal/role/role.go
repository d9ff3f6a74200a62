// AngelaMos | 2026
// role.go

package role

import (
	"fmt"
	"strings"
)

// Role is one of a closed set of membership roles.
type Role string

const (
	SuperAdmin     Role = "SUPER_ADMIN"
	NationalAdmin  Role = "NATIONAL_ADMIN"
	StateAmeer     Role = "STATE_AMEER"
	StateSecretary Role = "STATE_SECRETARY"
	MCLOAmeer      Role = "MCLO_AMEER"
	Member         Role = "MEMBER"
)

// All lists every role from most to least privileged.
var All = []Role{
	SuperAdmin,
	NationalAdmin,
	StateAmeer,
	StateSecretary,
	MCLOAmeer,
	Member,
}

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	for _, known := range All {
		if r == known {
			return true
		}
	}
	return false
}

// DisplayName renders the role for humans: STATE_SECRETARY -> STATE SECRETARY.
func (r Role) DisplayName() string {
	return strings.ReplaceAll(string(r), "_", " ")
}

func Parse(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func Strings(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}
