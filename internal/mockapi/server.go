// Package mockapi is a self-contained DevTinder API server over an in-memory
// dataset. It exists for local development, demos, and integration tests; it
// is not the production backend.
//
// Authentication mirrors the real service's two mechanisms: a session cookie
// set on login and a bearer token issued alongside it. Either authenticates
// a request.
package mockapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/devtinder/devtinder/internal/session"
)

const (
	cookieName = "token"
	tokenTTL   = 24 * time.Hour
)

// Config holds mock server configuration.
type Config struct {
	Host string
	Port int
	// JWTSecret signs issued tokens. A fixed default is fine for a fixture.
	JWTSecret string
}

// Server is the mock DevTinder API.
type Server struct {
	echo   *echo.Echo
	data   *dataStore
	secret []byte
	logger *zap.Logger
	config *Config
}

// NewServer creates a mock server with the demo dataset seeded.
func NewServer(logger *zap.Logger, cfg *Config) (*Server, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 3000}
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "devtinder-mock-secret"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	data := newDataStore()
	data.seed()

	s := &Server{
		echo:   e,
		data:   data,
		secret: []byte(cfg.JWTSecret),
		logger: logger,
		config: cfg,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.POST("/login", s.handleLogin)
	s.echo.POST("/auth/register", s.handleRegister)

	authed := s.echo.Group("", s.requireAuth)
	authed.GET("/logout", s.handleLogout)
	authed.GET("/auth/me", s.handleMe)
	authed.GET("/profile/view", s.handleProfileView)
	authed.PATCH("/profile/edit", s.handleProfileEdit)
	authed.GET("/feed", s.handleFeed)
	authed.GET("/user/connections", s.handleConnections)
	authed.GET("/user/requests/received", s.handleRequestsReceived)
	authed.POST("/request/send/:status/:userId", s.handleRequestSend)
	authed.POST("/request/review/:status/:userId", s.handleRequestReview)
}

// Handler exposes the router for httptest-based integration tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting mock api server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down mock api server")
	return s.echo.Shutdown(ctx)
}

// issueToken signs a bearer token for the user.
func (s *Server) issueToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// requireAuth accepts the session cookie or an Authorization bearer token.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := ""
		if cookie, err := c.Cookie(cookieName); err == nil {
			raw = cookie.Value
		}
		if header := c.Request().Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			raw = strings.TrimPrefix(header, "Bearer ")
		}
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		})
		if err != nil || !token.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		if _, ok := s.data.get(claims.Subject); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
		}

		c.Set("userID", claims.Subject)
		return next(c)
	}
}

func viewerID(c echo.Context) string {
	id, _ := c.Get("userID").(string)
	return id
}

type loginRequest struct {
	EmailID  string `json:"emailId"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, ok := s.data.authenticate(req.EmailID, req.Password)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid credentials")
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}
	s.setSessionCookie(c, token, tokenTTL)

	return c.JSON(http.StatusOK, map[string]any{"user": user, "token": token})
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	EmailID   string `json:"emailId"`
	Password  string `json:"password"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.EmailID == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "emailId and password are required")
	}

	user, ok := s.data.register(session.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		EmailID:   req.EmailID,
	}, req.Password)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "email already registered")
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}
	s.setSessionCookie(c, token, tokenTTL)

	return c.JSON(http.StatusOK, user)
}

func (s *Server) handleLogout(c echo.Context) error {
	s.setSessionCookie(c, "", -time.Hour)
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleMe(c echo.Context) error {
	user, _ := s.data.get(viewerID(c))
	return c.JSON(http.StatusOK, user)
}

func (s *Server) handleProfileView(c echo.Context) error {
	user, _ := s.data.get(viewerID(c))
	return c.JSON(http.StatusOK, user)
}

func (s *Server) handleProfileEdit(c echo.Context) error {
	user, ok := s.data.update(viewerID(c), func(u *session.User) {
		if v := c.FormValue("firstName"); v != "" {
			u.FirstName = v
		}
		if v := c.FormValue("lastName"); v != "" {
			u.LastName = v
		}
		if v := c.FormValue("gender"); v != "" {
			u.Gender = v
		}
		if v := c.FormValue("about"); v != "" {
			u.About = v
		}
		if v := c.FormValue("age"); v != "" {
			var age int
			if _, err := fmt.Sscanf(v, "%d", &age); err == nil && age > 0 {
				u.Age = age
			}
		}
		if form, err := c.MultipartForm(); err == nil {
			if skills := form.Value["skills"]; len(skills) > 0 {
				u.Skills = skills
			}
		}
		if file, err := c.FormFile("photo"); err == nil {
			// The fixture does not store bytes; it just reflects the upload.
			u.PhotoURL = "https://mock.devtinder.local/uploads/" + file.Filename
		}
	})
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleFeed(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"users": s.data.feed(viewerID(c))})
}

func (s *Server) handleConnections(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"filteredConnections": s.data.connected(viewerID(c))})
}

func (s *Server) handleRequestsReceived(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"connectionRequests": s.data.received(viewerID(c))})
}

func (s *Server) handleRequestSend(c echo.Context) error {
	status := c.Param("status")
	if status != "interested" && status != "ignored" {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be interested or ignored")
	}
	if !s.data.send(viewerID(c), c.Param("userId"), status) {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "request " + status})
}

func (s *Server) handleRequestReview(c echo.Context) error {
	status := c.Param("status")
	if status != "accepted" && status != "rejected" {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be accepted or rejected")
	}
	if !s.data.review(viewerID(c), c.Param("userId"), status) {
		return echo.NewHTTPError(http.StatusNotFound, "request not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "request " + status})
}

func (s *Server) setSessionCookie(c echo.Context, value string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
