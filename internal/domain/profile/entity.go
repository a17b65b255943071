package profile

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Manages users and everything else
	RoleEmployee Role = "employee" // Records farm operations
	RoleViewer   Role = "viewer"   // Read-only
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleViewer:
		return true
	}
	return false
}

type Profile struct {
	ID          string          `json:"id"`
	FullName    string          `json:"full_name"`
	Role        Role            `json:"role"`
	AvatarURL   *string         `json:"avatar_url"`
	Permissions map[string]bool `json:"permissions"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsAdmin checks if the profile has the admin role
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// IsEmployee checks if the profile has the employee role
func (p *Profile) IsEmployee() bool {
	return p != nil && p.Role == RoleEmployee
}

// CanEdit checks if the profile may create or modify farm records
func (p *Profile) CanEdit() bool {
	return p.IsAdmin() || p.IsEmployee()
}

// Can resolves a permission, letting per-profile overrides win over the role defaults.
func (p *Profile) Can(permission Permission) bool {
	if p == nil {
		return false
	}
	if allowed, ok := p.Permissions[string(permission)]; ok {
		return allowed
	}
	return HasPermission(p.Role, permission)
}
