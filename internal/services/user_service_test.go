package services_test

import (
	"errors"
	"testing"

	"yamdb/internal/models"
	"yamdb/internal/repositories"
	"yamdb/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func rolePtr(r models.Role) *models.Role { return &r }

var (
	admin     = &models.User{ID: 1, Username: "root", Email: "root@example.com", Role: models.RoleAdmin}
	moderator = &models.User{ID: 2, Username: "mod", Email: "mod@example.com", Role: models.RoleModerator}
	plainUser = &models.User{ID: 3, Username: "alice", Email: "alice@example.com", Role: models.RoleUser}
)

func TestUserService_AdminOnly(t *testing.T) {
	repo := new(MockUserRepository)
	userService := services.NewUserService(repo)

	for _, actor := range []*models.User{nil, plainUser, moderator} {
		_, _, err := userService.List(actor, repositories.Page{})
		assert.ErrorIs(t, err, services.ErrForbidden)
		_, err = userService.Get(actor, "alice")
		assert.ErrorIs(t, err, services.ErrForbidden)
		_, err = userService.Update(actor, "alice", services.UserPatch{Role: rolePtr(models.RoleAdmin)})
		assert.ErrorIs(t, err, services.ErrForbidden)
	}
	repo.AssertNotCalled(t, "GetByUsername", mock.Anything)

	superuser := &models.User{ID: 9, Username: "boss", Role: models.RoleUser, IsSuperuser: true}
	repo.On("List", repositories.Page{Number: 1, Size: 5}).Return([]models.User{*plainUser}, int64(1), nil).Once()
	users, count, err := userService.List(superuser, repositories.Page{Number: 1, Size: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Len(t, users, 1)
}

func TestUserService_AdminChangesRole(t *testing.T) {
	repo := new(MockUserRepository)
	userService := services.NewUserService(repo)

	stored := *plainUser
	repo.On("GetByUsername", "alice").Return(&stored, nil).Once()
	repo.On("Update", mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleModerator
	})).Return(nil).Once()

	user, err := userService.Update(admin, "alice", services.UserPatch{Role: rolePtr(models.RoleModerator)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, user.Role)
	repo.AssertExpectations(t)

	repo.On("GetByUsername", "alice").Return(&stored, nil).Once()
	_, err = userService.Update(admin, "alice", services.UserPatch{Role: rolePtr("owner")})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestUserService_UpdateMeIgnoresRole(t *testing.T) {
	repo := new(MockUserRepository)
	userService := services.NewUserService(repo)

	stored := *plainUser
	repo.On("GetByID", plainUser.ID).Return(&stored, nil).Once()
	repo.On("Update", mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleUser && u.Bio == "reader"
	})).Return(nil).Once()

	user, err := userService.UpdateMe(plainUser, services.UserPatch{
		Bio:  strPtr("reader"),
		Role: rolePtr(models.RoleAdmin),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "reader", user.Bio)
	repo.AssertExpectations(t)
}

func TestUserService_MeRequiresAuthentication(t *testing.T) {
	userService := services.NewUserService(new(MockUserRepository))

	_, err := userService.Me(nil)
	assert.ErrorIs(t, err, services.ErrForbidden)
	_, err = userService.UpdateMe(nil, services.UserPatch{Bio: strPtr("x")})
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestUserService_Create(t *testing.T) {
	repo := new(MockUserRepository)
	userService := services.NewUserService(repo)

	// Test email already used
	repo.On("GetByEmail", "alice@example.com").Return(plainUser, nil).Once()
	_, err := userService.Create(admin, services.UserInput{Username: "alice2", Email: "alice@example.com"})
	var vErr *services.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Fields, "email")

	// Test username taken
	repo.On("GetByEmail", "bob@example.com").Return(nil, repositories.ErrRecordNotFound).Once()
	repo.On("Create", mock.AnythingOfType("*models.User")).Return(repositories.ErrDuplicateKey).Once()
	_, err = userService.Create(admin, services.UserInput{Username: "alice", Email: "bob@example.com"})
	assert.ErrorIs(t, err, services.ErrConflict)

	// Test reserved username
	_, err = userService.Create(admin, services.UserInput{Username: "me", Email: "me@example.com"})
	assert.ErrorIs(t, err, services.ErrValidation)

	// Test success
	repo.On("GetByEmail", "carol@example.com").Return(nil, repositories.ErrRecordNotFound).Once()
	repo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()
	user, err := userService.Create(admin, services.UserInput{Username: "carol", Email: "carol@example.com", Role: models.RoleModerator})
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, user.Role)
	repo.AssertExpectations(t)
}

func TestUserService_EnsureSuperuser(t *testing.T) {
	repo := new(MockUserRepository)
	userService := services.NewUserService(repo)

	repo.On("GetByUsername", "root").Return(nil, repositories.ErrRecordNotFound).Once()
	repo.On("Create", mock.MatchedBy(func(u *models.User) bool {
		return u.IsSuperuser && u.Role == models.RoleAdmin
	})).Return(nil).Once()

	user, err := userService.EnsureSuperuser("root", "root@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())

	existing := *plainUser
	repo.On("GetByUsername", "alice").Return(&existing, nil).Once()
	repo.On("Update", mock.MatchedBy(func(u *models.User) bool { return u.IsSuperuser })).Return(nil).Once()

	user, err = userService.EnsureSuperuser("alice", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
	repo.AssertExpectations(t)
}
