package domain

// Capability identifies one of the per-workspace permission flags a Role can
// grant. Flags are independent booleans, not a hierarchy: holding GiveRoles
// does not imply Read.
type Capability string

const (
	CapCreate      Capability = "create"
	CapRead        Capability = "read"
	CapUpdate      Capability = "update"
	CapDelete      Capability = "deletable"
	CapSeeLogs     Capability = "see_logs"
	CapGiveRoles   Capability = "give_roles"
	CapAddUsers    Capability = "add_users"
	CapAdminRights Capability = "admin_rights"
)

// String returns the string representation of the Capability
func (c Capability) String() string {
	return string(c)
}

// CapabilitySet is the effective permission set a user holds in one workspace,
// computed as the union of the flags across every role bound to the user there.
type CapabilitySet struct {
	Create      bool `json:"create"`
	Read        bool `json:"read"`
	Update      bool `json:"update"`
	Delete      bool `json:"deletable"`
	SeeLogs     bool `json:"see_logs"`
	GiveRoles   bool `json:"give_roles"`
	AddUsers    bool `json:"add_users"`
	AdminRights bool `json:"admin_rights"`
}

// Has reports whether the set grants the given capability.
func (s CapabilitySet) Has(c Capability) bool {
	switch c {
	case CapCreate:
		return s.Create
	case CapRead:
		return s.Read
	case CapUpdate:
		return s.Update
	case CapDelete:
		return s.Delete
	case CapSeeLogs:
		return s.SeeLogs
	case CapGiveRoles:
		return s.GiveRoles
	case CapAddUsers:
		return s.AddUsers
	case CapAdminRights:
		return s.AdminRights
	default:
		return false
	}
}

// Union merges another set into this one with a logical OR per flag.
// Any role granting a flag grants it for the whole set.
func (s CapabilitySet) Union(other CapabilitySet) CapabilitySet {
	return CapabilitySet{
		Create:      s.Create || other.Create,
		Read:        s.Read || other.Read,
		Update:      s.Update || other.Update,
		Delete:      s.Delete || other.Delete,
		SeeLogs:     s.SeeLogs || other.SeeLogs,
		GiveRoles:   s.GiveRoles || other.GiveRoles,
		AddUsers:    s.AddUsers || other.AddUsers,
		AdminRights: s.AdminRights || other.AdminRights,
	}
}

// IsEmpty reports whether no capability is granted.
func (s CapabilitySet) IsEmpty() bool {
	return s == CapabilitySet{}
}

// FullCapabilitySet returns a set with all eight flags granted. This is the
// set the workspace creator receives through the full_control bootstrap role.
func FullCapabilitySet() CapabilitySet {
	return CapabilitySet{
		Create:      true,
		Read:        true,
		Update:      true,
		Delete:      true,
		SeeLogs:     true,
		GiveRoles:   true,
		AddUsers:    true,
		AdminRights: true,
	}
}
