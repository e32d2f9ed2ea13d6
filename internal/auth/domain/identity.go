package domain

// Identity is the resolved per-request view of an authenticated user: role
// names plus the effective permission set. It never carries the password
// hash or MFA secret and is safe to serialise to clients.
type Identity struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Phone       *string  `json:"phone,omitempty"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	MFAEnabled  bool     `json:"mfaEnabled"`
}

// NewIdentity computes the identity for a user from its loaded role graph.
// The permission set is the deduplicated union across all assigned roles;
// order follows first appearance and carries no meaning.
func NewIdentity(u User) Identity {
	roles := make([]string, 0, len(u.Roles))
	perms := make([]string, 0)
	seen := make(map[string]struct{})

	for _, role := range u.Roles {
		roles = append(roles, role.Name)
		for _, p := range role.Permissions {
			if _, ok := seen[p.Key]; ok {
				continue
			}
			seen[p.Key] = struct{}{}
			perms = append(perms, p.Key)
		}
	}

	return Identity{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		Roles:       roles,
		Permissions: perms,
		MFAEnabled:  u.MFAEnabled,
	}
}

// MissingPermissions returns the required keys absent from the identity's
// effective set, preserving the order they were requested in.
func (id Identity) MissingPermissions(required []string) []string {
	have := make(map[string]struct{}, len(id.Permissions))
	for _, p := range id.Permissions {
		have[p] = struct{}{}
	}

	var missing []string
	for _, req := range required {
		if _, ok := have[req]; !ok {
			missing = append(missing, req)
		}
	}
	return missing
}

// HasAnyRole reports whether the identity holds at least one of the roles.
func (id Identity) HasAnyRole(roles []string) bool {
	for _, want := range roles {
		for _, have := range id.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
