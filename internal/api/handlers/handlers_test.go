package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hoadb/memberwall/internal/api/middleware"
	"github.com/hoadb/memberwall/internal/cerberus"
	"github.com/hoadb/memberwall/internal/config"
	"github.com/hoadb/memberwall/internal/database"
	"github.com/hoadb/memberwall/internal/logger"
	"github.com/hoadb/memberwall/internal/models"
	"github.com/hoadb/memberwall/internal/services"
	"github.com/hoadb/memberwall/internal/session"
)

type handlerEnv struct {
	router *gin.Engine
	db     *gorm.DB
	users  *services.UserService
	auth   *services.AuthService
	logs   *bytes.Buffer
}

func setupHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logs := &bytes.Buffer{}
	logger.Init(false, logs)

	db, err := database.Connect("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	users := services.NewUserService(db)
	posts := services.NewPostService(db)
	security := services.NewSecurityService(db, nil)
	auth, err := services.NewAuthService(users, services.NewBcryptHasher(bcrypt.MinCost), nil)
	require.NoError(t, err)

	cfg := config.DefaultSessionConfig()
	sessions := middleware.NewSessions(session.NewAuthority(session.NewMemoryStore(), cfg), session.NewCodec("test-secret"), cfg)
	cerb := cerberus.New(config.DefaultSecurityConfig(), security)

	authHandler := NewAuthHandler(auth, sessions)
	memberHandler := NewMemberHandler(users, posts, sessions)
	adminHandler := NewAdminHandler(users, security)
	securityHandler := NewSecurityHandler(config.DefaultSecurityConfig(), cerb, security)

	r := gin.New()
	r.Use(middleware.RequestID(), sessions.Load())
	r.POST("/login", cerb.LoginThrottle(), authHandler.Login)
	r.GET("/home", middleware.Guard(), memberHandler.Home)
	r.POST("/createPost", middleware.Guard(), memberHandler.CreatePost)
	r.GET("/adminDelete", middleware.Guard(), adminHandler.AdminDelete)
	r.POST("/delete/:id", middleware.Guard(), adminHandler.Delete)
	r.GET("/security", middleware.Guard(), securityHandler.GetStatus)
	r.GET("/", Root)
	r.NoRoute(NotFound)

	return &handlerEnv{router: r, db: db, users: users, auth: auth, logs: logs}
}

func (e *handlerEnv) post(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *handlerEnv) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *handlerEnv) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	w := e.post("/login", url.Values{"email": {email}, "password": {password}}, nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == "memberwall_sid" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func (e *handlerEnv) addUser(t *testing.T, name, email, role string) *models.User {
	t.Helper()
	hash, err := services.NewBcryptHasher(bcrypt.MinCost).Hash("Abcdef123456!")
	require.NoError(t, err)
	u := &models.User{Name: name, Email: email, UserType: role, PasswordHash: hash}
	require.NoError(t, e.users.Insert(u))
	return u
}

func (e *handlerEnv) closeDB(t *testing.T) {
	t.Helper()
	sqlDB, err := e.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestRootAndNotFound(t *testing.T) {
	e := setupHandlerEnv(t)

	w := e.get("/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = e.get("/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"page":"notFound"}`, w.Body.String())
}

func TestLoginFailurePage(t *testing.T) {
	page := loginFailurePage(3)
	assert.Equal(t, "3 remaining attempts", page["loginAttempts"])
	assert.NotContains(t, page, "isDisabled")

	page = loginFailurePage(0)
	assert.Equal(t, "0 remaining attempts. Try again later", page["loginAttempts"])
	assert.Equal(t, true, page["isDisabled"])
	assert.Equal(t, "Invalid email or password", page["errorLogin"])
}

func TestLogin_StoreErrorRedirectsWithoutDetail(t *testing.T) {
	e := setupHandlerEnv(t)
	e.closeDB(t)

	w := e.post("/login", url.Values{"email": {"maria@example.com"}, "password": {"x"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Contains(t, e.logs.String(), "SQL query error")
	assert.Contains(t, e.logs.String(), "redacted")
	assert.NotContains(t, e.logs.String(), "database is closed")
}

func TestLogin_FailureLogsMaskedEmail(t *testing.T) {
	e := setupHandlerEnv(t)

	w := e.post("/login", url.Values{"email": {"maria@example.com"}, "password": {"bad"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, e.logs.String(), "m***@example.com")
	assert.NotContains(t, e.logs.String(), "maria@example.com")
}

func TestHome_DeletedAccountEndsSession(t *testing.T) {
	e := setupHandlerEnv(t)
	u := e.addUser(t, "Maria", "maria@example.com", models.RoleDefault)
	cookie := e.login(t, "maria@example.com", "Abcdef123456!")

	require.NoError(t, e.users.DeleteByID(u.ID))

	w := e.get("/home", cookie)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, "/login", e.get("/home", cookie).Header().Get("Location"))
}

func TestHome_EmptyFeedIsAList(t *testing.T) {
	e := setupHandlerEnv(t)
	e.addUser(t, "Maria", "maria@example.com", models.RoleDefault)
	cookie := e.login(t, "maria@example.com", "Abcdef123456!")

	w := e.get("/home", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var page map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, []interface{}{}, page["posts"])
	assert.Equal(t, "", page["image"])
}

func TestCreatePost_RejectsBlankBody(t *testing.T) {
	e := setupHandlerEnv(t)
	e.addUser(t, "Maria", "maria@example.com", models.RoleDefault)
	cookie := e.login(t, "maria@example.com", "Abcdef123456!")

	w := e.post("/createPost", url.Values{"user_post": {"   "}}, cookie)
	assert.Equal(t, "/home", w.Header().Get("Location"))

	var count int64
	e.db.Model(&models.Post{}).Count(&count)
	assert.Zero(t, count)
}

func TestDelete_RefusesSelfAndBadIDs(t *testing.T) {
	e := setupHandlerEnv(t)
	admin := e.addUser(t, models.AdminName, "admin@example.com", models.RoleAdmin)
	cookie := e.login(t, "admin@example.com", "Abcdef123456!")

	self := e.post("/delete/"+itoa(admin.ID), nil, cookie)
	assert.Equal(t, "/adminDelete", self.Header().Get("Location"))
	_, err := e.users.GetByID(admin.ID)
	assert.NoError(t, err, "admin still exists")

	bad := e.post("/delete/abc", nil, cookie)
	assert.Equal(t, "/adminDelete", bad.Header().Get("Location"))
}

func TestAdminDelete_StoreErrorRedirectsHome(t *testing.T) {
	e := setupHandlerEnv(t)
	e.addUser(t, models.AdminName, "admin@example.com", models.RoleAdmin)
	cookie := e.login(t, "admin@example.com", "Abcdef123456!")
	e.closeDB(t)

	w := e.get("/adminDelete", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))
}

func TestSecurityStatus_ReportsBlocks(t *testing.T) {
	e := setupHandlerEnv(t)
	e.addUser(t, models.AdminName, "admin@example.com", models.RoleAdmin)
	cookie := e.login(t, "admin@example.com", "Abcdef123456!")

	for i := 0; i < 6; i++ {
		e.post("/login", url.Values{"email": {"maria@example.com"}, "password": {"bad"}}, nil)
	}

	w := e.get("/security", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		RateLimit struct {
			MaxAttempts int    `json:"max_attempts"`
			Window      string `json:"window"`
		} `json:"rate_limit"`
		BlockEntries int                      `json:"block_entries"`
		Decisions    []map[string]interface{} `json:"decisions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 5, page.RateLimit.MaxAttempts)
	assert.Equal(t, "15m0s", page.RateLimit.Window)
	assert.Equal(t, 1, page.BlockEntries)
	assert.Len(t, page.Decisions, 1)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
