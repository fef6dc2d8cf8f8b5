package models

import "time"

// Post is a short status update. The author's name and role are copied onto
// the row when it is written so the feed renders without a join.
type Post struct {
	ID        uint      `json:"post_id" gorm:"column:post_id;primaryKey"`
	AuthorID  uint      `json:"id" gorm:"column:author_id;index"`
	UserType  string    `json:"user_type" gorm:"column:user_type"`
	Name      string    `json:"name"`
	Body      string    `json:"user_post" gorm:"column:user_post;type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}
