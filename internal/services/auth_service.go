package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"time"

	"yamdb/internal/models"
	"yamdb/internal/notify"
	"yamdb/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Sign-up outcomes that are not field validation failures.
var (
	// ErrAlreadyRegistered is returned by SignUp when the username or email
	// already belongs to a user. The confirmation code has been refreshed.
	ErrAlreadyRegistered = fmt.Errorf("%w: user is already registered", ErrValidation)
	// ErrInvalidCode is returned by IssueToken for a missing or wrong code.
	ErrInvalidCode = NewValidationError("confirmation_code", "Invalid confirmation code.")
)

const (
	confirmationSubject = "Confirmation code"
	confirmationBody    = "Your confirmation code: %s"
)

// SignUpRequest is the payload of a sign-up call.
type SignUpRequest struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
}

// TokenRequest exchanges a confirmation code for an access token.
type TokenRequest struct {
	Username         string `json:"username" validate:"required"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

// Claims are the JWT claims of an access token.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.StandardClaims
}

// AuthService handles sign-up, confirmation codes and access tokens.
type AuthService struct {
	userRepo      repositories.UserRepository
	verifyRepo    repositories.VerificationRepository
	notifier      notify.Notifier
	validate      *Validator
	jwtSecret     []byte
	tokenDurat    time.Duration // Duration for which JWT is valid
	notifyTimeout time.Duration
	generateCode  func() (string, error)
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithTokenDuration sets how long issued tokens stay valid.
func WithTokenDuration(d time.Duration) AuthOption {
	return func(s *AuthService) { s.tokenDurat = d }
}

// WithNotifyTimeout bounds a single confirmation-code dispatch.
func WithNotifyTimeout(d time.Duration) AuthOption {
	return func(s *AuthService) { s.notifyTimeout = d }
}

// WithCodeGenerator replaces the random confirmation-code source.
func WithCodeGenerator(fn func() (string, error)) AuthOption {
	return func(s *AuthService) { s.generateCode = fn }
}

// NewAuthService creates a new AuthService. A nil notifier disables dispatch.
func NewAuthService(
	userRepo repositories.UserRepository,
	verifyRepo repositories.VerificationRepository,
	notifier notify.Notifier,
	jwtSecret string,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		userRepo:      userRepo,
		verifyRepo:    verifyRepo,
		notifier:      notifier,
		validate:      NewValidator(),
		jwtSecret:     []byte(jwtSecret),
		tokenDurat:    24 * time.Hour,
		notifyTimeout: 5 * time.Second,
		generateCode:  randomCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// randomCode returns a decimal code in [1000, 9999].
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+1000, 10), nil
}

// SignUp stores a fresh confirmation code for the username, mails it and
// registers the user if neither the username nor the email is taken.
//
// A username registered with another email (or an email registered under
// another username) is rejected before any code is written. Repeating the
// sign-up of an existing user refreshes and resends the code but still
// returns ErrAlreadyRegistered. A code is therefore only ever mailed to the
// address already on record for the username, never to a new one.
func (s *AuthService) SignUp(req SignUpRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	byName, err := s.findUser(s.userRepo.GetByUsername(req.Username))
	if err != nil {
		return nil, err
	}
	byEmail, err := s.findUser(s.userRepo.GetByEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if byName != nil && byName.Email != req.Email {
		return nil, NewValidationError("username", "This username is registered with a different email.")
	}
	if byEmail != nil && byEmail.Username != req.Username {
		return nil, NewValidationError("email", "This email is registered with a different username.")
	}

	code, err := s.generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate confirmation code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash confirmation code: %w", err)
	}
	if err := s.verifyRepo.Upsert(req.Username, string(hash)); err != nil {
		return nil, err
	}

	s.dispatch(notify.Message{
		Subject:   confirmationSubject,
		Body:      fmt.Sprintf(confirmationBody, code),
		Recipient: req.Email,
	})

	if byName != nil || byEmail != nil {
		return nil, ErrAlreadyRegistered
	}

	user := &models.User{Username: req.Username, Email: req.Email, Role: models.RoleUser}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	log.Printf("Registered user %s", user.Username)
	return user, nil
}

func (s *AuthService) findUser(user *models.User, err error) (*models.User, error) {
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// dispatch sends msg in the background. Failures are logged, never returned.
func (s *AuthService) dispatch(msg notify.Message) {
	if s.notifier == nil {
		log.Println("Notifier is not initialized. Skipping confirmation code dispatch.")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := s.notifier.Send(ctx, msg); err != nil {
			log.Printf("Warning: failed to send confirmation code to %s: %v", msg.Recipient, err)
		}
	}()
}

// IssueToken exchanges a matching (username, confirmation code) pair for a
// signed access token. The code stays valid after use.
func (s *AuthService) IssueToken(req TokenRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		return "", lookupError(err, "user "+req.Username)
	}

	entry, err := s.verifyRepo.GetByUsername(user.Username)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return "", ErrInvalidCode
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(entry.CodeHash), []byte(req.ConfirmationCode)) != nil {
		return "", ErrInvalidCode
	}

	return s.generateToken(user)
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   user.ID,
		Username: user.Username,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Subject:   user.Username,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenDurat).Unix(),
		},
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate resolves a token to the current state of its user, so role
// changes apply to tokens issued earlier.
func (s *AuthService) Authenticate(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(claims.UserID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
