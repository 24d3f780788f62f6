package roles

// Role is the organization-level permission of a user.
type Role string

const (
	SelfService Role = "SELF_SERVICE"
	Base        Role = "BASE"
	Admin       Role = "ADMIN"
	Owner       Role = "OWNER"
)

type HierarchyLevel int

const (
	UnknownLevel     HierarchyLevel = 0
	SelfServiceLevel HierarchyLevel = 1
	BaseLevel        HierarchyLevel = 2
	AdminLevel       HierarchyLevel = 3
	OwnerLevel       HierarchyLevel = 4
)

func (r Role) GetHierarchyLevel() HierarchyLevel {
	switch r {
	case SelfService:
		return SelfServiceLevel
	case Base:
		return BaseLevel
	case Admin:
		return AdminLevel
	case Owner:
		return OwnerLevel
	default:
		return UnknownLevel
	}
}

// HasPermission reports whether r is at least requiredRole. Unknown roles never pass.
func (r Role) HasPermission(requiredRole Role) bool {
	if !r.IsValid() || !requiredRole.IsValid() {
		return false
	}
	return r.GetHierarchyLevel() >= requiredRole.GetHierarchyLevel()
}

func (r Role) IsValid() bool {
	switch r {
	case SelfService, Base, Admin, Owner:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
