package roles

import "github.com/tatame/tatame-backend/pkg/enums"

// IsHigherRole reports whether the role has gym-wide authority.
func IsHigherRole(role enums.Role) bool {
	switch role {
	case enums.RoleManager:
		return true
	case enums.RoleInstructor, enums.RoleStudent:
		return false
	default:
		return false
	}
}

// IsMediumRole reports whether the role may teach classes.
func IsMediumRole(role enums.Role) bool {
	switch role {
	case enums.RoleManager, enums.RoleInstructor:
		return true
	case enums.RoleStudent:
		return false
	default:
		return false
	}
}

// IsLowerRole reports whether the role is a plain student.
func IsLowerRole(role enums.Role) bool {
	switch role {
	case enums.RoleStudent:
		return true
	case enums.RoleManager, enums.RoleInstructor:
		return false
	default:
		return false
	}
}
