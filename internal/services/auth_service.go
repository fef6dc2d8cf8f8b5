package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/hoadb/memberwall/internal/models"
	"github.com/hoadb/memberwall/internal/validation"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Photo is an uploaded profile photo.
type Photo struct {
	Name        string
	ContentType string
	Data        []byte
	Size        int64
}

// RegisterInput is a registration form submission.
type RegisterInput struct {
	validation.Registration
	Photo Photo
}

// AuthService verifies credentials and creates member accounts.
type AuthService struct {
	users    *UserService
	hasher   Hasher
	notifier *Notifier

	// dummyHash is verified against when the email is unknown so both
	// failure paths cost one hash comparison.
	dummyHash string
}

// NewAuthService returns an AuthService. notifier may be nil.
func NewAuthService(users *UserService, hasher Hasher, notifier *Notifier) (*AuthService, error) {
	dummy, err := hasher.Hash("memberwall-placeholder-Password1!")
	if err != nil {
		return nil, fmt.Errorf("prepare placeholder hash: %w", err)
	}
	return &AuthService{users: users, hasher: hasher, notifier: notifier, dummyHash: dummy}, nil
}

// Authenticate returns the user whose email and password match. Unknown
// emails and wrong passwords both yield ErrInvalidCredentials; store failures
// are returned wrapped.
func (s *AuthService) Authenticate(email, password string) (*models.User, error) {
	u, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Register validates the submission and stores a DEFAULT member. Validation
// failures are *validation.ValidationError and happen before any store access.
func (s *AuthService) Register(in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.ValidateRegistration(in.Registration); err != nil {
		return nil, err
	}
	if err := validation.ValidateImage(in.Photo.ContentType, in.Photo.Data, in.Photo.Size); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(in.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		UserType:     models.RoleDefault,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        validation.NormalizePhone(in.Phone),
		ImageName:    in.Photo.Name,
		ImageData:    in.Photo.Data,
		ImageType:    in.Photo.ContentType,
	}
	if err := s.users.Insert(u); err != nil {
		return nil, err
	}
	s.notifier.Notify("New registration", "New user has registered: "+u.Name)
	return u, nil
}

// EnsureAdmin creates the administrator account when no user named admin
// exists. With an empty password a random one is generated and returned so
// the operator can sign in once and reset it.
func (s *AuthService) EnsureAdmin(email, password string) (created bool, generated string, err error) {
	var existing int64
	if err := s.users.db.Model(&models.User{}).
		Where("name = ? AND user_type = ?", models.AdminName, models.RoleAdmin).
		Count(&existing).Error; err != nil {
		return false, "", fmt.Errorf("check admin: %w", err)
	}
	if existing > 0 {
		return false, "", nil
	}

	if password == "" {
		if password, err = randomPassword(); err != nil {
			return false, "", err
		}
		generated = password
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, "", fmt.Errorf("hash admin password: %w", err)
	}
	admin := &models.User{
		UserType:     models.RoleAdmin,
		Name:         models.AdminName,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Insert(admin); err != nil {
		return false, "", fmt.Errorf("create admin: %w", err)
	}
	return true, generated, nil
}

// ResetPassword sets a new password for the account with the given email.
// The password must satisfy the registration policy.
func (s *AuthService) ResetPassword(email, password string) error {
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}
	u, err := s.users.FindByEmail(email)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(u.ID, hash)
}

// randomPassword returns a password that passes the strong password policy.
func randomPassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return "Mw-" + hex.EncodeToString(b) + "A1", nil
}
