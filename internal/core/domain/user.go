package domain

import (
	"net/mail"
	"strings"
	"time"

	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
)

const (
	MaxFullNameLength = 255
	MaxEmailLength    = 255
)

// Role is the coarse access level assigned by an administrator.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "tecnico"
	RoleUser       Role = "usuario"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleUser:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", apperrors.ErrInvalidRole
	}
	return r, nil
}

// Permission codes checked by the authorization service.
const (
	PermReportsRead    = "reports:read"
	PermAssetsRead     = "assets:read"
	PermAssetsWrite    = "assets:write"
	PermTicketsRead    = "tickets:read"
	PermTicketsWrite   = "tickets:write"
	PermTicketsResolve = "tickets:resolve"
	PermTicketsDelete  = "tickets:delete"
	PermUsersManage    = "users:manage"
)

var rolePermissions = map[Role][]string{
	RoleAdmin: {
		PermReportsRead, PermAssetsRead, PermAssetsWrite,
		PermTicketsRead, PermTicketsWrite, PermTicketsResolve, PermTicketsDelete,
		PermUsersManage,
	},
	RoleTechnician: {
		PermReportsRead, PermAssetsRead, PermAssetsWrite,
		PermTicketsRead, PermTicketsWrite, PermTicketsResolve, PermTicketsDelete,
	},
	RoleUser: {
		PermAssetsRead, PermTicketsRead, PermTicketsWrite,
	},
}

// Permissions returns a copy of the permission codes granted to the role.
func (r Role) Permissions() []string {
	perms := rolePermissions[r]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// Identity is the verified caller of a request.
type Identity struct {
	UserID string
	Role   Role
}

// User is a profile kept alongside the external identity provider.
type User struct {
	ID        string
	FullName  string
	Email     string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// UserParams holds the fields for provisioning a user profile.
type UserParams struct {
	ID       string
	FullName string
	Email    string
	Role     Role
}

// NewUser validates params. Users default to the usuario role.
func NewUser(params UserParams, now time.Time) (*User, error) {
	errs := apperrors.NewValidationErrors()

	if strings.TrimSpace(params.ID) == "" {
		errs.Add("id", "id is required")
	}

	name := strings.TrimSpace(params.FullName)
	if len(name) > MaxFullNameLength {
		errs.Add("fullName", "full name exceeds maximum length")
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" {
		errs.Add("email", "email is required")
	} else if len(email) > MaxEmailLength {
		errs.Add("email", "email exceeds maximum length")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "email format is invalid")
	}

	role := params.Role
	if role == "" {
		role = RoleUser
	}
	if !role.IsValid() {
		errs.Add("role", apperrors.ErrInvalidRole.Error())
	}

	if errs.HasErrors() {
		return nil, errs
	}

	return &User{
		ID:        params.ID,
		FullName:  name,
		Email:     email,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
	}, nil
}
