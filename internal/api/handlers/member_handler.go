package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hoadb/memberwall/internal/api/middleware"
	"github.com/hoadb/memberwall/internal/models"
	"github.com/hoadb/memberwall/internal/services"
)

// feedSize is the number of posts shown on the home page.
const feedSize = 50

type MemberHandler struct {
	users    *services.UserService
	posts    *services.PostService
	sessions *middleware.Sessions
}

func NewMemberHandler(users *services.UserService, posts *services.PostService, sessions *middleware.Sessions) *MemberHandler {
	return &MemberHandler{users: users, posts: posts, sessions: sessions}
}

// Home renders the member's profile and the post feed.
func (h *MemberHandler) Home(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	user, err := h.users.GetByID(sess.Identity.ID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			// The account was deleted while the session was live.
			h.sessions.End(c)
			redirect(c, "/login")
			return
		}
		storeError(c, "SQL query error", err, "/login")
		return
	}

	posts, err := h.posts.List(feedSize)
	if err != nil {
		storeError(c, "SQL query error", err, "/login")
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	c.JSON(http.StatusOK, gin.H{
		"page":      pageHome,
		"fullName":  user.Name,
		"image":     base64.StdEncoding.EncodeToString(user.ImageData),
		"imageType": user.ImageType,
		"isAdmin":   sess.IsAdmin(),
		"posts":     posts,
	})
}

// CreatePost adds a post by the signed-in member.
func (h *MemberHandler) CreatePost(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	post := &models.Post{
		AuthorID: sess.Identity.ID,
		UserType: sess.UserType,
		Name:     sess.Name,
		Body:     c.PostForm("user_post"),
	}

	if err := h.posts.Insert(post); err != nil {
		if errors.Is(err, services.ErrInvalidPost) {
			middleware.GetRequestLogger(c).Warn("rejected empty or oversized post")
			redirect(c, "/home")
			return
		}
		storeError(c, "SQL query error", err, "/home")
		return
	}
	middleware.GetRequestLogger(c).WithField("post_id", post.ID).Debug("post created")
	redirect(c, "/home")
}
