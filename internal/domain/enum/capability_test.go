package enum

import "testing"

func TestRoleCaps(t *testing.T) {
	cases := []struct {
		role  Role
		has   []Capability
		lacks []Capability
	}{
		{RoleOwner,
			[]Capability{CapViewPLMulti, CapUserManage, CapManageMaster},
			[]Capability{CapCastOrderSelf}},
		{RoleManager,
			[]Capability{CapViewPLStore, CapManageMaster, CapOperateOrders},
			[]Capability{CapViewPLMulti, CapUserManage}},
		{RoleStaff,
			[]Capability{CapOperateOrders, CapStationView},
			[]Capability{CapViewPLStore, CapManageMaster, CapUserManage}},
		{RoleCast,
			[]Capability{CapStationView, CapCastOrderSelf},
			[]Capability{CapOperateOrders, CapViewPLStore}},
	}

	for _, tc := range cases {
		caps := tc.role.Caps()
		for _, want := range tc.has {
			if !HasCap(caps, want) {
				t.Errorf("%s should have %s", tc.role, want)
			}
		}
		for _, deny := range tc.lacks {
			if HasCap(caps, deny) {
				t.Errorf("%s should not have %s", tc.role, deny)
			}
		}
	}

	if caps := Role("intern").Caps(); caps != nil {
		t.Errorf("unknown role should grant nothing, got %v", caps)
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleOwner, RoleManager, RoleStaff, RoleCast} {
		if !r.Valid() {
			t.Errorf("%s should be valid", r)
		}
	}
	if Role("admin").Valid() {
		t.Error("admin is not a known role")
	}
}

func TestStayTypeRateKey(t *testing.T) {
	cases := map[StayType]string{
		StayFree:    "free",
		StayNom:     "nomination",
		StayInHouse: "inhouse",
		StayDohan:   "dohan",
		"":          "",
	}
	for stay, want := range cases {
		if got := stay.RateKey(); got != want {
			t.Errorf("RateKey(%q) = %q, want %q", stay, got, want)
		}
	}
}
