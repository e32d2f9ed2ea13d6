package service

import (
	"context"
	"errors"
	"time"

	"github.com/guachince/guachince/internal/auth/domain"
	"github.com/guachince/guachince/internal/auth/store"
	"github.com/guachince/guachince/pkg/idx"
)

type roleSeed struct {
	name        string
	description string
	grants      []string
}

var allPermissions = []domain.Permission{
	{Key: domain.PermMenuRead, Description: "View menus and pricing."},
	{Key: domain.PermMenuWrite, Description: "Create and update menu items."},
	{Key: domain.PermBookingRead, Description: "View bookings."},
	{Key: domain.PermBookingWrite, Description: "Create and update bookings."},
	{Key: domain.PermOrderRead, Description: "View orders."},
	{Key: domain.PermOrderWrite, Description: "Update order status."},
	{Key: domain.PermInventoryRead, Description: "View inventory levels."},
	{Key: domain.PermInventoryWrite, Description: "Adjust inventory levels."},
	{Key: domain.PermStaffRead, Description: "View staff schedules."},
	{Key: domain.PermStaffWrite, Description: "Manage staff schedules."},
}

var roleSeeds = []roleSeed{
	{
		name:        domain.RoleCustomer,
		description: "Customer ordering and loyalty access.",
		grants:      []string{domain.PermMenuRead, domain.PermBookingRead, domain.PermBookingWrite, domain.PermOrderRead},
	},
	{
		name:        domain.RoleWaiter,
		description: "Front-of-house service operations.",
		grants: []string{
			domain.PermMenuRead, domain.PermBookingRead, domain.PermBookingWrite,
			domain.PermOrderRead, domain.PermOrderWrite, domain.PermStaffRead,
		},
	},
	{
		name:        domain.RoleChef,
		description: "Kitchen operations and ticket management.",
		grants: []string{
			domain.PermMenuRead, domain.PermOrderRead, domain.PermOrderWrite,
			domain.PermInventoryRead, domain.PermInventoryWrite,
		},
	},
	{
		name:        domain.RoleShiftManager,
		description: "Shift oversight and staff coordination.",
		grants: []string{
			domain.PermMenuRead, domain.PermBookingRead, domain.PermBookingWrite,
			domain.PermOrderRead, domain.PermOrderWrite, domain.PermInventoryRead,
			domain.PermStaffRead, domain.PermStaffWrite,
		},
	},
	{
		name:        domain.RoleGeneralManager,
		description: "Restaurant operations and reporting.",
		grants: []string{
			domain.PermMenuRead, domain.PermMenuWrite, domain.PermBookingRead,
			domain.PermBookingWrite, domain.PermOrderRead, domain.PermOrderWrite,
			domain.PermInventoryRead, domain.PermInventoryWrite,
			domain.PermStaffRead, domain.PermStaffWrite,
		},
	},
	{
		name:        domain.RoleAdminOwner,
		description: "Full system administration.",
		grants: []string{
			domain.PermMenuRead, domain.PermMenuWrite, domain.PermBookingRead,
			domain.PermBookingWrite, domain.PermOrderRead, domain.PermOrderWrite,
			domain.PermInventoryRead, domain.PermInventoryWrite,
			domain.PermStaffRead, domain.PermStaffWrite,
		},
	},
	{
		name:        domain.RoleAccountant,
		description: "Read-only access to metrics and exports.",
		grants: []string{
			domain.PermMenuRead, domain.PermBookingRead, domain.PermOrderRead,
			domain.PermInventoryRead, domain.PermStaffRead,
		},
	},
}

// SeedService installs the fixed role and permission catalogue. Idempotent:
// existing rows are left alone, missing grants are added, so it runs on
// every startup.
type SeedService struct {
	Store store.Store
}

func (s *SeedService) Ensure(ctx context.Context) error {
	now := time.Now().UTC()
	roles := s.Store.Roles()

	for _, p := range allPermissions {
		err := roles.CreatePermission(ctx, domain.Permission{
			ID:          idx.New().String(),
			Key:         p.Key,
			Description: p.Description,
		})
		if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
			return err
		}
	}

	for _, seed := range roleSeeds {
		err := roles.CreateRole(ctx, domain.Role{
			ID:          idx.New().String(),
			Name:        seed.name,
			Description: seed.description,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
			return err
		}

		role, err := roles.GetRoleByName(ctx, seed.name)
		if err != nil {
			return err
		}

		for _, key := range seed.grants {
			perm, err := roles.GetPermissionByKey(ctx, key)
			if err != nil {
				return err
			}
			if err := roles.GrantPermission(ctx, role.ID, perm.ID); err != nil {
				return err
			}
		}
	}

	return nil
}
