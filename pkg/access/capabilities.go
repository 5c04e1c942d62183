// Package access maps marketplace roles to the capabilities they grant.
package access

import "github.com/agromart/agromart-backend/pkg/enums"

// Capability is a single permission checked by handlers and services.
type Capability uint8

// Every capability guards at least one route; add one only together with the
// route that checks it.
const (
	CapabilityManageCart Capability = iota + 1
	CapabilityManageAddresses
	CapabilityPlaceOrders
	CapabilityManageProducts
	CapabilityManageOrders
	CapabilityManageUsers
	CapabilitySendNotifications

	firstCapability = CapabilityManageCart
	lastCapability  = CapabilitySendNotifications
)

var capabilityNames = map[Capability]string{
	CapabilityManageCart:        "manage_cart",
	CapabilityManageAddresses:   "manage_addresses",
	CapabilityPlaceOrders:       "place_orders",
	CapabilityManageProducts:    "manage_products",
	CapabilityManageOrders:      "manage_orders",
	CapabilityManageUsers:       "manage_users",
	CapabilitySendNotifications: "send_notifications",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return "unknown"
}

// CapabilitySet is a bitset of capabilities.
type CapabilitySet uint32

func setOf(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s |= 1 << c
	}
	return s
}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	return s&(1<<c) != 0
}

// List returns the capabilities in the set in declaration order.
func (s CapabilitySet) List() []Capability {
	var out []Capability
	for c := firstCapability; c <= lastCapability; c++ {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

var buyer = setOf(
	CapabilityManageCart,
	CapabilityManageAddresses,
	CapabilityPlaceOrders,
)

// Capabilities returns the fixed capability set for role. Unknown roles get none.
func Capabilities(role enums.Role) CapabilitySet {
	switch role {
	case enums.RoleAdmin:
		return setOf(
			CapabilityManageAddresses,
			CapabilityManageProducts,
			CapabilityManageOrders,
			CapabilityManageUsers,
			CapabilitySendNotifications,
		)
	case enums.RoleCustomer:
		return buyer
	case enums.RoleShopOwner:
		return buyer | setOf(
			CapabilityManageProducts,
			CapabilityManageOrders,
		)
	case enums.RoleSeller:
		return setOf(
			CapabilityManageAddresses,
			CapabilityManageProducts,
			CapabilityManageOrders,
		)
	case enums.RoleRider:
		return setOf(CapabilityManageAddresses)
	default:
		return 0
	}
}

// Can is shorthand for Capabilities(role).Has(c).
func Can(role enums.Role, c Capability) bool {
	return Capabilities(role).Has(c)
}
