package repositories

import "yamdb/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	List(page Page) ([]models.User, int64, error)
	Update(user *models.User) error
}

// VerificationRepository stores one pending confirmation code per username.
type VerificationRepository interface {
	// Upsert creates the entry for username or overwrites its code.
	Upsert(username, codeHash string) error
	GetByUsername(username string) (*models.EmailVerification, error)
}
