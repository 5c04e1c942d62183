package enums

import "fmt"

// Role is the marketplace-wide role attached to every user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCustomer  Role = "customer"
	RoleShopOwner Role = "shop_owner"
	RoleSeller    Role = "seller"
	RoleRider     Role = "rider"
)

var validRoles = []Role{
	RoleAdmin,
	RoleCustomer,
	RoleShopOwner,
	RoleSeller,
	RoleRider,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// SelfRegistrable reports whether the role may be chosen at sign-up.
func (r Role) SelfRegistrable() bool {
	return r.IsValid() && r != RoleAdmin
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
