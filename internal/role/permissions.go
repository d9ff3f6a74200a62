// AngelaMos | 2026
// permissions.go

package role

// Capability names one flag of a PermissionSet.
type Capability string

const (
	CreateUsers      Capability = "create_users"
	EditUsers        Capability = "edit_users"
	DeleteUsers      Capability = "delete_users"
	ManageProperties Capability = "manage_properties"
	ManagePayments   Capability = "manage_payments"
	ViewAnalytics    Capability = "view_analytics"
	ManageSystem     Capability = "manage_system"
	AccessAllStates  Capability = "access_all_states"
)

// PermissionSet is the advisory capability record a client uses to decide
// which controls to show.
type PermissionSet struct {
	CreateUsers      bool `json:"create_users"`
	EditUsers        bool `json:"edit_users"`
	DeleteUsers      bool `json:"delete_users"`
	ManageProperties bool `json:"manage_properties"`
	ManagePayments   bool `json:"manage_payments"`
	ViewAnalytics    bool `json:"view_analytics"`
	ManageSystem     bool `json:"manage_system"`
	AccessAllStates  bool `json:"access_all_states"`
}

// Has reports whether the set grants c. Unknown capabilities are never granted.
func (p PermissionSet) Has(c Capability) bool {
	switch c {
	case CreateUsers:
		return p.CreateUsers
	case EditUsers:
		return p.EditUsers
	case DeleteUsers:
		return p.DeleteUsers
	case ManageProperties:
		return p.ManageProperties
	case ManagePayments:
		return p.ManagePayments
	case ViewAnalytics:
		return p.ViewAnalytics
	case ManageSystem:
		return p.ManageSystem
	case AccessAllStates:
		return p.AccessAllStates
	}
	return false
}

// Table maps every role to its PermissionSet. It is built once and never
// mutated; accessors hand out copies.
type Table struct {
	sets map[Role]PermissionSet
}

func DefaultTable() *Table {
	return NewTable(map[Role]PermissionSet{
		SuperAdmin: {
			CreateUsers:      true,
			EditUsers:        true,
			DeleteUsers:      true,
			ManageProperties: true,
			ManagePayments:   true,
			ViewAnalytics:    true,
			ManageSystem:     true,
			AccessAllStates:  true,
		},
		NationalAdmin: {
			CreateUsers:      true,
			EditUsers:        true,
			ManageProperties: true,
			ManagePayments:   true,
			ViewAnalytics:    true,
			AccessAllStates:  true,
		},
		StateAmeer: {
			CreateUsers:      true,
			EditUsers:        true,
			ManageProperties: true,
			ViewAnalytics:    true,
		},
		StateSecretary: {
			CreateUsers:      true,
			EditUsers:        true,
			ManageProperties: true,
			ViewAnalytics:    true,
		},
		MCLOAmeer: {},
		Member:    {},
	})
}

// NewTable copies sets and fills any missing role with an empty set so the
// table stays total.
func NewTable(sets map[Role]PermissionSet) *Table {
	t := &Table{sets: make(map[Role]PermissionSet, len(All))}
	for _, r := range All {
		t.sets[r] = sets[r]
	}
	return t
}

func (t *Table) Permissions(r Role) PermissionSet {
	return t.sets[r]
}

func (t *Table) Can(r Role, c Capability) bool {
	return t.sets[r].Has(c)
}

// AllowList returns, in canonical role order, every role granted c.
func (t *Table) AllowList(c Capability) []Role {
	var roles []Role
	for _, r := range All {
		if t.sets[r].Has(c) {
			roles = append(roles, r)
		}
	}
	return roles
}

func (t *Table) All() map[Role]PermissionSet {
	out := make(map[Role]PermissionSet, len(t.sets))
	for r, p := range t.sets {
		out[r] = p
	}
	return out
}
