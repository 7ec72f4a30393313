package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"planner/internal/auth"
	"planner/internal/models"
	"planner/internal/storage/sqlstore"
)

const (
	sessionCookie = "planner_session"
	userKey       = "planner.user"
	authPage      = "/login-signup"
)

type loginRequest struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type signupRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=6"`
}

// requireUser resolves the session cookie into a user, redirecting to the
// auth page when there is none.
func (s *Server) requireUser(c *gin.Context) {
	token, _ := c.Cookie(sessionCookie)
	userID, err := s.sessions.Parse(token)
	if err != nil {
		c.Redirect(http.StatusSeeOther, authPage)
		c.Abort()
		return
	}

	user, err := s.store.UserByID(c.Request.Context(), userID)
	if errors.Is(err, sqlstore.ErrNotFound) {
		s.clearSession(c)
		c.Redirect(http.StatusSeeOther, authPage)
		c.Abort()
		return
	}
	if err != nil {
		s.respondText(c, err, "Server error")
		c.Abort()
		return
	}

	c.Set(userKey, user)
	c.Next()
}

// currentUser returns the user attached by requireUser.
func currentUser(c *gin.Context) models.User {
	return c.MustGet(userKey).(models.User)
}

// handleAuthForm describes the login and signup forms.
func (s *Server) handleAuthForm(c *gin.Context) {
	c.JSON(http.StatusOK, AuthView{LoginAction: "/login", SignupAction: "/signup"})
}

// handleLogin verifies credentials and starts a session.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondText(c, fmt.Errorf("%w: %v", auth.ErrInvalidCredentials, err), "Invalid Credentials.")
		return
	}

	user, err := s.store.UserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, sqlstore.ErrNotFound) {
		err = fmt.Errorf("%w: unknown email", auth.ErrInvalidCredentials)
	}
	if err == nil {
		err = auth.CheckPassword(user.PasswordHash, req.Password)
	}
	if err != nil {
		s.respondText(c, err, "Invalid Credentials.")
		return
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		s.respondText(c, err, "Server error")
		return
	}
	s.setSession(c, token)
	s.logger.Info("user logged in", "user_id", user.ID)
	redirect(c, "/")
}

// handleSignup creates an account with its reserved lists.
func (s *Server) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondText(c, fmt.Errorf("%w: %v", errBadRequest, err), "Username, a valid email and a password of at least 6 characters are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.respondText(c, err, "Server error")
		return
	}

	if _, err := s.store.CreateUser(c.Request.Context(), req.Username, req.Email, hash); err != nil {
		if errors.Is(err, sqlstore.ErrConflict) {
			s.logFailure(c, http.StatusBadRequest, err)
			c.String(http.StatusBadRequest, "Email already exists. Try logging in.")
			return
		}
		s.respondText(c, err, "Invalid signup")
		return
	}
	redirect(c, authPage)
}

// handleLogout drops the session.
func (s *Server) handleLogout(c *gin.Context) {
	s.clearSession(c)
	redirect(c, authPage)
}

func (s *Server) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(s.sessions.TTL().Seconds()), "/", "", s.secureCookie, true)
}

func (s *Server) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", s.secureCookie, true)
}
