package services

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"yamdb/internal/models"
	"yamdb/internal/policy"
	"yamdb/internal/repositories"
)

// UserInput is the payload for creating a user as an admin.
type UserInput struct {
	Username  string      `json:"username" validate:"required,max=150,username"`
	Email     string      `json:"email" validate:"required,email,max=254"`
	FirstName string      `json:"first_name" validate:"max=150"`
	LastName  string      `json:"last_name" validate:"max=150"`
	Bio       string      `json:"bio"`
	Role      models.Role `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

// UserPatch is a partial update; nil fields are left unchanged.
type UserPatch struct {
	Username  *string      `json:"username" validate:"omitempty,max=150,username"`
	Email     *string      `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string      `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string      `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string      `json:"bio"`
	Role      *models.Role `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

// UserService manages user accounts.
type UserService struct {
	repo     repositories.UserRepository
	validate *Validator
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{
		repo:     repo,
		validate: NewValidator(),
	}
}

func (s *UserService) authorize(actor *models.User, method string) error {
	if !policy.CanAccessCollection(policy.AdminOnly, actor, method) {
		return ErrForbidden
	}
	return nil
}

// List returns a page of users. Admins only.
func (s *UserService) List(actor *models.User, page repositories.Page) ([]models.User, int64, error) {
	if err := s.authorize(actor, http.MethodGet); err != nil {
		return nil, 0, err
	}
	return s.repo.List(page)
}

// Get returns the user with username. Admins only.
func (s *UserService) Get(actor *models.User, username string) (*models.User, error) {
	if err := s.authorize(actor, http.MethodGet); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, lookupError(err, "user "+username)
	}
	return user, nil
}

// Create registers a user directly, without email confirmation. Admins only.
func (s *UserService) Create(actor *models.User, in UserInput) (*models.User, error) {
	if err := s.authorize(actor, http.MethodPost); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(in.Email, 0); err != nil {
		return nil, err
	}
	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      in.Role,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, s.writeError(err)
	}
	log.Printf("User %s created by %s", user.Username, actor.Username)
	return user, nil
}

// Update applies patch to the user with username, role included. Admins only.
func (s *UserService) Update(actor *models.User, username string, patch UserPatch) (*models.User, error) {
	if err := s.authorize(actor, http.MethodPatch); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, lookupError(err, "user "+username)
	}
	return s.apply(user, patch)
}

// Me returns the acting user's own profile.
func (s *UserService) Me(actor *models.User) (*models.User, error) {
	if !policy.CanAccessCollection(policy.Authenticated, actor, http.MethodGet) {
		return nil, ErrForbidden
	}
	user, err := s.repo.GetByID(actor.ID)
	if err != nil {
		return nil, lookupError(err, "user "+actor.Username)
	}
	return user, nil
}

// UpdateMe applies patch to the acting user's own profile. A role in the
// patch is ignored: the stored role is kept.
func (s *UserService) UpdateMe(actor *models.User, patch UserPatch) (*models.User, error) {
	user, err := s.Me(actor)
	if err != nil {
		return nil, err
	}
	patch.Role = nil
	return s.apply(user, patch)
}

func (s *UserService) apply(user *models.User, patch UserPatch) (*models.User, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}
	if patch.Email != nil && *patch.Email != user.Email {
		if err := s.ensureEmailFree(*patch.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *patch.Email
	}
	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if err := s.repo.Update(user); err != nil {
		return nil, s.writeError(err)
	}
	return user, nil
}

// ensureEmailFree rejects an email already used by a user other than ownerID.
func (s *UserService) ensureEmailFree(email string, ownerID uint) error {
	existing, err := s.repo.GetByEmail(email)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != ownerID {
		return NewValidationError("email", "A user with this email already exists.")
	}
	return nil
}

func (s *UserService) writeError(err error) error {
	if errors.Is(err, repositories.ErrDuplicateKey) {
		return fmt.Errorf("%w: a user with this username already exists", ErrConflict)
	}
	return err
}

// EnsureSuperuser creates the bootstrap superuser if no user has username.
// An existing user is promoted to superuser.
func (s *UserService) EnsureSuperuser(username, email string) (*models.User, error) {
	if err := s.validate.Struct(SignUpRequest{Username: username, Email: email}); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByUsername(username)
	switch {
	case errors.Is(err, repositories.ErrRecordNotFound):
		user = &models.User{Username: username, Email: email, Role: models.RoleAdmin, IsSuperuser: true}
		if err := s.repo.Create(user); err != nil {
			return nil, s.writeError(err)
		}
		log.Printf("Created superuser %s", username)
		return user, nil
	case err != nil:
		return nil, err
	}
	if !user.IsSuperuser {
		user.IsSuperuser = true
		if err := s.repo.Update(user); err != nil {
			return nil, err
		}
		log.Printf("Promoted %s to superuser", username)
	}
	return user, nil
}
