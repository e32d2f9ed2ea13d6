package domain

// Permission keys known to the system. Seeded at startup; uniqueness is
// enforced by the store.
const (
	PermMenuRead       = "menu.read"
	PermMenuWrite      = "menu.write"
	PermBookingRead    = "booking.read"
	PermBookingWrite   = "booking.write"
	PermOrderRead      = "order.read"
	PermOrderWrite     = "order.write"
	PermInventoryRead  = "inventory.read"
	PermInventoryWrite = "inventory.write"
	PermStaffRead      = "staff.read"
	PermStaffWrite     = "staff.write"
)

// Role names seeded at startup.
const (
	RoleCustomer       = "Customer"
	RoleWaiter         = "Waiter"
	RoleChef           = "Chef"
	RoleShiftManager   = "Shift Manager"
	RoleGeneralManager = "General Manager"
	RoleAdminOwner     = "Admin/Owner"
	RoleAccountant     = "Accountant/Analyst"
)

// MFARequiredRoles lists the privileged roles whose holders must have MFA
// active before a session is issued, regardless of the account's own flag.
// Evaluated against the live role assignment at login time.
var MFARequiredRoles = []string{RoleShiftManager, RoleGeneralManager, RoleAdminOwner}

// StaffRoles lists every non-customer role.
var StaffRoles = []string{RoleWaiter, RoleChef, RoleShiftManager, RoleGeneralManager, RoleAdminOwner}

// RequiresMFAByRole reports whether any of the given role names is in the
// MFA-required set.
func RequiresMFAByRole(roles []string) bool {
	for _, r := range roles {
		for _, required := range MFARequiredRoles {
			if r == required {
				return true
			}
		}
	}
	return false
}
