package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    domain.Role
		wantErr bool
	}{
		{"admin", domain.RoleAdmin, false},
		{" Tecnico ", domain.RoleTechnician, false},
		{"usuario", domain.RoleUser, false},
		{"agent", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := domain.ParseRole(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidRole)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRole_Permissions(t *testing.T) {
	assert.Contains(t, domain.RoleAdmin.Permissions(), domain.PermUsersManage)
	assert.NotContains(t, domain.RoleTechnician.Permissions(), domain.PermUsersManage)
	assert.Contains(t, domain.RoleTechnician.Permissions(), domain.PermReportsRead)
	assert.NotContains(t, domain.RoleUser.Permissions(), domain.PermAssetsWrite)
	assert.Empty(t, domain.Role("guest").Permissions())

	perms := domain.RoleAdmin.Permissions()
	perms[0] = "mutated"
	assert.NotEqual(t, "mutated", domain.RoleAdmin.Permissions()[0])
}

func TestNewUser(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		params     domain.UserParams
		errorField string
	}{
		{"valid", domain.UserParams{ID: "uid-1", FullName: "Ana", Email: "Ana@Example.com"}, ""},
		{"missing id", domain.UserParams{Email: "a@example.com"}, "id"},
		{"missing email", domain.UserParams{ID: "uid-1"}, "email"},
		{"invalid email", domain.UserParams{ID: "uid-1", Email: "not-an-email"}, "email"},
		{"name too long", domain.UserParams{ID: "uid-1", Email: "a@example.com", FullName: strings.Repeat("a", 256)}, "fullName"},
		{"invalid role", domain.UserParams{ID: "uid-1", Email: "a@example.com", Role: "root"}, "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := domain.NewUser(tt.params, now)
			if tt.errorField != "" {
				var validationErr *apperrors.ValidationErrors
				require.ErrorAs(t, err, &validationErr)
				assert.Contains(t, validationErr.Errors, tt.errorField)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "ana@example.com", user.Email)
			assert.Equal(t, domain.RoleUser, user.Role)
			assert.True(t, user.IsActive)
		})
	}
}
