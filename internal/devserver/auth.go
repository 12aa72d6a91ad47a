// ABOUTME: Login, refresh, registration handlers and bearer-token middleware.
package devserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	userIDKey        = "user_id"
)

// Claims is the JWT payload. Subject holds the user ID.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(userID int, kind string) (string, error) {
	ttl := accessTokenTTL
	if kind == tokenTypeRefresh {
		ttl = refreshTokenTTL
	}
	now := s.opts.Now()
	claims := &Claims{
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "kcal-devserver",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
}

func (s *Server) parseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.opts.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (s *Server) tokenPair(c *gin.Context, userID int) {
	access, err := s.issueToken(userID, tokenTypeAccess)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	refresh, err := s.issueToken(userID, tokenTypeRefresh)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
	})
}

func (s *Server) loginAccessToken(c *gin.Context) {
	email := c.PostForm("username")
	password := c.PostForm("password")
	if email == "" || password == "" {
		validationError(c, "username and password are required")
		return
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(email)]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		detail(c, http.StatusBadRequest, "Incorrect email or password")
		return
	}
	s.tokenPair(c, u.ID)
}

func (s *Server) refreshToken(c *gin.Context) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.RefreshToken == "" {
		validationError(c, "refresh_token is required")
		return
	}

	claims, err := s.parseToken(body.RefreshToken)
	if err != nil {
		detail(c, http.StatusForbidden, "Could not validate credentials")
		return
	}
	if claims.Type != tokenTypeRefresh {
		detail(c, http.StatusUnauthorized, "Invalid token type")
		return
	}
	u, ok := s.userFromSubject(claims.Subject)
	if !ok {
		detail(c, http.StatusNotFound, "User not found")
		return
	}
	s.tokenPair(c, u.ID)
}

func (s *Server) createUser(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		validationError(c, "invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if !strings.Contains(email, "@") {
		validationError(c, "value is not a valid email address")
		return
	}
	if body.Password == "" {
		validationError(c, "password is required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), s.opts.BcryptCost)
	if err != nil {
		detail(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[email]; exists {
		s.mu.Unlock()
		detail(c, http.StatusBadRequest, "Email already registered")
		return
	}
	u := &user{
		ID:           s.nextUserID,
		Email:        email,
		FullName:     strings.TrimSpace(body.FullName),
		PasswordHash: hash,
		CreatedAt:    s.opts.Now(),
	}
	s.nextUserID++
	s.users[email] = u
	s.usersByID[u.ID] = u
	s.mu.Unlock()

	s.opts.Logger.Info("user registered", "id", u.ID)
	resp := gin.H{"id": u.ID, "email": u.Email, "created_at": u.CreatedAt}
	if u.FullName != "" {
		resp["full_name"] = u.FullName
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) userFromSubject(sub string) (*user, bool) {
	id, err := strconv.Atoi(sub)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.usersByID[id]
	return u, ok
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			detail(c, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			detail(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := s.parseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil || claims.Type != tokenTypeAccess {
			detail(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		u, ok := s.userFromSubject(claims.Subject)
		if !ok {
			detail(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		c.Set(userIDKey, u.ID)
		c.Next()
	}
}
