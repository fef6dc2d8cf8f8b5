package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hoadb/memberwall/internal/api/middleware"
	"github.com/hoadb/memberwall/internal/cerberus"
	"github.com/hoadb/memberwall/internal/metrics"
	"github.com/hoadb/memberwall/internal/services"
	"github.com/hoadb/memberwall/internal/session"
	"github.com/hoadb/memberwall/internal/util"
	"github.com/hoadb/memberwall/internal/validation"
)

const (
	invalidLoginMessage = "Invalid email or password"
	duplicateMessage    = "Email already exist!"
	photoField          = "profile-photo"

	// maxRegisterBody caps the whole form. Photos up to this size still reach
	// validation, so the size error comes back with the fields echoed.
	maxRegisterBody = 8 * validation.MaxImageSize
	// registerFormMemory is the part of the form kept in memory while parsing.
	registerFormMemory = 2 * validation.MaxImageSize
)

type AuthHandler struct {
	authService *services.AuthService
	sessions    *middleware.Sessions
}

func NewAuthHandler(authService *services.AuthService, sessions *middleware.Sessions) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": pageLogin})
}

// Login verifies the submitted credentials. It runs behind the login
// throttle, which has already counted this attempt.
func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	log := middleware.GetRequestLogger(c)

	user, err := h.authService.Authenticate(email, password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			storeError(c, "SQL query error", err, "/login")
			return
		}
		metrics.IncLoginAttempt("failure")
		remaining, _ := cerberus.RemainingAttempts(c)
		log.WithFields(logrus.Fields{
			"email":     util.MaskEmail(email),
			"remaining": remaining,
		}).Error(invalidLoginMessage)
		c.JSON(http.StatusUnauthorized, loginFailurePage(remaining))
		return
	}

	cerberus.MarkLoginSucceeded(c)
	metrics.IncLoginAttempt("success")
	if _, err := h.sessions.Start(c, session.Identity{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		UserType: user.UserType,
	}); err != nil {
		storeError(c, "failed to start session", err, "/login")
		return
	}
	log.WithField("user_id", user.ID).Info("User logged in successfully")
	redirect(c, "/home")
}

func loginFailurePage(remaining int) gin.H {
	page := gin.H{
		"page":          pageLogin,
		"errorLogin":    invalidLoginMessage,
		"loginAttempts": fmt.Sprintf("%d remaining attempts", remaining),
	}
	if remaining == 0 {
		page["loginAttempts"] = fmt.Sprintf("%d remaining attempts. Try again later", remaining)
		page["isDisabled"] = true
	}
	return page
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": pageRegistration})
}

// Register creates a DEFAULT member from a multipart form carrying the
// profile photo.
func (h *AuthHandler) Register(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRegisterBody)
	log := middleware.GetRequestLogger(c)

	if err := c.Request.ParseMultipartForm(registerFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			verr := validation.ImageTooLarge()
			log.WithField("limit", tooLarge.Limit).Error(verr.Message)
			c.JSON(http.StatusBadRequest, registrationPage(services.RegisterInput{}, verr.Message))
			return
		}
	}

	in := services.RegisterInput{
		Registration: validation.Registration{
			Name:     c.PostForm("name"),
			Email:    c.PostForm("email"),
			Password: c.PostForm("password"),
			Phone:    c.PostForm("phone"),
		},
	}

	photo, err := readPhoto(c)
	if err != nil {
		log.WithField("error", err.Error()).Error("Invalid image file")
		c.JSON(http.StatusBadRequest, registrationPage(in, "Invalid image file."))
		return
	}
	in.Photo = photo

	user, err := h.authService.Register(in)
	if err != nil {
		var verr *validation.ValidationError
		switch {
		case errors.As(err, &verr):
			log.WithField("field", verr.Field).Error(verr.Message)
			c.JSON(http.StatusBadRequest, registrationPage(in, verr.Message))
		case errors.Is(err, services.ErrEmailExists):
			log.Error("Email already exists")
			c.JSON(http.StatusInternalServerError, registrationPage(in, duplicateMessage))
		default:
			storeError(c, "Error registering user", err, "/register")
		}
		return
	}

	log.WithField("user_id", user.ID).Info("User registered successfully")
	redirect(c, "/login")
}

// readPhoto reads at most one byte past the size limit so oversize uploads
// are rejected by validation without being buffered whole.
func readPhoto(c *gin.Context) (services.Photo, error) {
	header, err := c.FormFile(photoField)
	if err != nil {
		return services.Photo{}, err
	}
	f, err := header.Open()
	if err != nil {
		return services.Photo{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, validation.MaxImageSize+1))
	if err != nil {
		return services.Photo{}, err
	}
	return services.Photo{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		Size:        header.Size,
	}, nil
}

// registrationPage echoes the submitted fields except the password.
func registrationPage(in services.RegisterInput, msg string) gin.H {
	return gin.H{
		"page":     pageRegistration,
		"name":     in.Name,
		"email":    in.Email,
		"phone":    in.Phone,
		"regError": msg,
	}
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.End(c)
	middleware.GetRequestLogger(c).Info("Destroyed previous session")
	redirect(c, "/login")
}
