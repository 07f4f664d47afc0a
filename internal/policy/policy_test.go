package policy_test

import (
	"net/http"
	"testing"

	"yamdb/internal/models"
	"yamdb/internal/policy"

	"github.com/stretchr/testify/assert"
)

var (
	plain     = &models.User{ID: 1, Username: "plain", Role: models.RoleUser}
	other     = &models.User{ID: 2, Username: "other", Role: models.RoleUser}
	moderator = &models.User{ID: 3, Username: "mod", Role: models.RoleModerator}
	admin     = &models.User{ID: 4, Username: "admin", Role: models.RoleAdmin}
	superuser = &models.User{ID: 5, Username: "root", Role: models.RoleUser, IsSuperuser: true}
)

func TestIsReadMethod(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.True(t, policy.IsReadMethod(m), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.False(t, policy.IsReadMethod(m), m)
	}
}

func TestCanAccessCollection_AdminOnly(t *testing.T) {
	assert.False(t, policy.CanAccessCollection(policy.AdminOnly, nil, http.MethodGet))
	assert.False(t, policy.CanAccessCollection(policy.AdminOnly, plain, http.MethodGet))
	assert.False(t, policy.CanAccessCollection(policy.AdminOnly, moderator, http.MethodPatch))
	assert.True(t, policy.CanAccessCollection(policy.AdminOnly, admin, http.MethodPatch))
	assert.True(t, policy.CanAccessCollection(policy.AdminOnly, superuser, http.MethodPost))
}

func TestCanAccessCollection_AdminOrReadOnly(t *testing.T) {
	assert.True(t, policy.CanAccessCollection(policy.AdminOrReadOnly, nil, http.MethodGet))
	assert.False(t, policy.CanAccessCollection(policy.AdminOrReadOnly, nil, http.MethodPost))
	assert.False(t, policy.CanAccessCollection(policy.AdminOrReadOnly, plain, http.MethodPost))
	assert.False(t, policy.CanAccessCollection(policy.AdminOrReadOnly, moderator, http.MethodDelete))
	assert.True(t, policy.CanAccessCollection(policy.AdminOrReadOnly, admin, http.MethodDelete))
	assert.True(t, policy.CanAccessCollection(policy.AdminOrReadOnly, superuser, http.MethodPost))
}

func TestCanAccessCollection_AuthorOrStaffOrReadOnly(t *testing.T) {
	assert.True(t, policy.CanAccessCollection(policy.AuthorOrStaffOrReadOnly, nil, http.MethodGet))
	assert.False(t, policy.CanAccessCollection(policy.AuthorOrStaffOrReadOnly, nil, http.MethodPost))
	assert.True(t, policy.CanAccessCollection(policy.AuthorOrStaffOrReadOnly, plain, http.MethodPost))
}

func TestCanAccessCollection_Authenticated(t *testing.T) {
	assert.False(t, policy.CanAccessCollection(policy.Authenticated, nil, http.MethodGet))
	assert.True(t, policy.CanAccessCollection(policy.Authenticated, plain, http.MethodPatch))
}

func TestCanAccessObject(t *testing.T) {
	tests := []struct {
		name   string
		actor  *models.User
		method string
		want   bool
	}{
		{"anonymous read", nil, http.MethodGet, true},
		{"anonymous delete", nil, http.MethodDelete, false},
		{"author patch", plain, http.MethodPatch, true},
		{"stranger patch", other, http.MethodPatch, false},
		{"stranger read", other, http.MethodGet, true},
		{"moderator delete", moderator, http.MethodDelete, true},
		{"admin delete", admin, http.MethodDelete, true},
		{"superuser delete", superuser, http.MethodDelete, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.CanAccessObject(tt.actor, tt.method, plain.ID))
		})
	}
}
