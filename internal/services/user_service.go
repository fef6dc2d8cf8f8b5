package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/hoadb/memberwall/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
	ErrInvalidRole  = errors.New("invalid user type")
)

// UserService is the gorm-backed user store.
type UserService struct {
	db *gorm.DB
}

// NewUserService returns a UserService using the provided DB.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// FindByEmail returns the user with the given email or ErrUserNotFound.
// Emails match case-insensitively.
func (s *UserService) FindByEmail(email string) (*models.User, error) {
	var u models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

// GetByID returns the user with the given id or ErrUserNotFound.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

// Insert stores a new user. An email already on file yields ErrEmailExists.
func (s *UserService) Insert(u *models.User) error {
	if u.UserType == "" {
		u.UserType = models.RoleDefault
	}
	if !models.ValidRole(u.UserType) {
		return ErrInvalidRole
	}
	u.Email = normalizeEmail(u.Email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return ErrEmailExists
	}

	if err := s.db.Create(u).Error; err != nil {
		// A concurrent insert can still trip the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// DeleteByID removes a user. Deleting an unknown id is not an error.
func (s *UserService) DeleteByID(id uint) error {
	if err := s.db.Delete(&models.User{}, id).Error; err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

// UpdateRole sets the user_type of a user. Only ADMIN and DEFAULT are accepted.
func (s *UserService) UpdateRole(id uint, role string) error {
	if !models.ValidRole(role) {
		return ErrInvalidRole
	}
	res := s.db.Model(&models.User{}).Where("id = ?", id).Update("user_type", role)
	if res.Error != nil {
		return fmt.Errorf("update role of user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *UserService) UpdatePassword(id uint, hash string) error {
	res := s.db.Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return fmt.Errorf("update password of user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListExcludingAdmin returns every member except the seeded administrator,
// without photo data.
func (s *UserService) ListExcludingAdmin() ([]models.User, error) {
	var users []models.User
	err := s.db.Select("id", "name", "email", "user_type").
		Where("name <> ?", models.AdminName).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// normalizeEmail is the stored form of an address: trimmed and lower-cased,
// so the unique index rejects case variants of an address already on file.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
