package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/hoadb/memberwall/internal/models"
)

// MaxPostLength bounds a post body, in characters.
const MaxPostLength = 255

var ErrInvalidPost = errors.New("post must be between 1 and 255 characters")

// PostService is the gorm-backed post store.
type PostService struct {
	db *gorm.DB
}

// NewPostService returns a PostService using the provided DB.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

// Insert stores a post after trimming its body.
func (s *PostService) Insert(p *models.Post) error {
	p.Body = strings.TrimSpace(p.Body)
	if p.Body == "" || utf8.RuneCountInString(p.Body) > MaxPostLength {
		return ErrInvalidPost
	}
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// List returns the newest posts first. limit <= 0 returns all of them.
func (s *PostService) List(limit int) ([]models.Post, error) {
	var posts []models.Post
	q := s.db.Order("created_at desc").Order("post_id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}
