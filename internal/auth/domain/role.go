package domain

import "time"

// Role is a named capability bundle. Roles are referenced by users, never
// owned; they only change through administrative seeding.
type Role struct {
	ID          string
	Name        string
	Description string
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission grants a single "resource.action" capability. Keys are unique.
type Permission struct {
	ID          string
	Key         string
	Description string
}
