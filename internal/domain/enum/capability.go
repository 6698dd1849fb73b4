package enum

// Capability is a single permission granted to a user within a store.
// The vocabulary is closed: the auth layer hands the core a set of these
// plus the current store id, nothing more.
type Capability string

const (
	CapViewPLStore    Capability = "view_pl_store"
	CapViewPLMulti    Capability = "view_pl_multi"
	CapViewDetails    Capability = "view_details"
	CapOperateOrders  Capability = "operate_orders"
	CapManageMaster   Capability = "manage_master"
	CapUserManage     Capability = "user_manage"
	CapStationView    Capability = "station_view"
	CapStationOperate Capability = "station_operate"
	CapCastOrderSelf  Capability = "cast_order_self"
)

// Role is a named bundle of capabilities
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	RoleCast    Role = "cast"
)

// Caps returns the deterministic capability set for a role
func (r Role) Caps() []Capability {
	switch r {
	case RoleOwner:
		return []Capability{
			CapViewPLStore, CapViewPLMulti, CapViewDetails, CapOperateOrders,
			CapManageMaster, CapUserManage, CapStationView, CapStationOperate,
		}
	case RoleManager:
		return []Capability{
			CapViewPLStore, CapViewDetails, CapOperateOrders,
			CapManageMaster, CapStationView, CapStationOperate,
		}
	case RoleStaff:
		return []Capability{
			CapOperateOrders, CapStationView, CapStationOperate,
		}
	case RoleCast:
		return []Capability{
			CapStationView, CapCastOrderSelf,
		}
	}
	return nil
}

// HasCap reports whether the capability is present in the set
func HasCap(caps []Capability, want Capability) bool {
	for _, c := range caps {
		if c == want {
			return true
		}
	}
	return false
}

// CapStrings converts a capability set to plain strings (for JWT claims)
func CapStrings(caps []Capability) []string {
	out := make([]string, 0, len(caps))
	for _, c := range caps {
		out = append(out, string(c))
	}
	return out
}

// Valid reports whether the role is known
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleStaff, RoleCast:
		return true
	}
	return false
}
