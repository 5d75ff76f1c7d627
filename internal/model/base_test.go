package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationNormalize(t *testing.T) {
	tests := []struct {
		name       string
		in         Pagination
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", Pagination{}, 1, 20, 0},
		{"explicit", Pagination{Page: 2, Limit: 10}, 2, 10, 10},
		{"negative page", Pagination{Page: -3, Limit: 10}, 1, 10, 0},
		{"limit above cap", Pagination{Page: 1, Limit: 500}, 1, 100, 0},
		{"zero limit", Pagination{Page: 3}, 3, 20, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Normalize(20)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantOffset, p.Offset())
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RolePatient, RoleDoctor, RoleSurgeon, RoleModerator, RoleAdmin} {
		assert.True(t, r.Valid(), string(r))
	}
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestAdminEquivalent(t *testing.T) {
	assert.True(t, RoleAdmin.AdminEquivalent())
	for _, r := range []Role{RolePatient, RoleDoctor, RoleSurgeon, RoleModerator} {
		assert.False(t, r.AdminEquivalent(), string(r))
	}
}
