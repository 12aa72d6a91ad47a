// ABOUTME: Local stand-in for the remote calorie service HTTP API.
// ABOUTME: In-memory users and meals, JWT auth, deterministic analysis and chat replies.
package devserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	limit "github.com/yangxikun/gin-limit-by-key"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const (
	accessTokenTTL  = 60 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

// Options configures a Server.
type Options struct {
	// Secret signs JWTs. Required.
	Secret []byte
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// AnalyzeLimit and AnalyzeBurst bound /meals/analyze per client IP.
	// Zero values mean 5 per minute.
	AnalyzeLimit rate.Limit
	AnalyzeBurst int
	Logger       *log.Logger
	Now          func() time.Time
}

type user struct {
	ID           int
	Email        string
	FullName     string
	PasswordHash []byte
	CreatedAt    time.Time
}

type meal struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Name        string    `json:"name"`
	Calories    int       `json:"calories"`
	Protein     float64   `json:"protein"`
	Fats        float64   `json:"fats"`
	Carbs       float64   `json:"carbs"`
	WeightGrams float64   `json:"weight_grams"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Server serves the API contract the kcal client consumes.
type Server struct {
	opts   Options
	engine *gin.Engine

	mu         sync.Mutex
	users      map[string]*user
	usersByID  map[int]*user
	meals      []meal
	nextUserID int
	nextMealID int
}

// New builds a Server. It returns an error when no secret is given.
func New(opts Options) (*Server, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("devserver: secret is required")
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.AnalyzeLimit == 0 {
		opts.AnalyzeLimit = rate.Every(time.Minute / 5)
	}
	if opts.AnalyzeBurst == 0 {
		opts.AnalyzeBurst = 5
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		opts:       opts,
		users:      make(map[string]*user),
		usersByID:  make(map[int]*user),
		nextUserID: 1,
		nextMealID: 1,
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = append(config.AllowHeaders, "Authorization")
	r.Use(cors.New(config))

	r.POST("/login/access-token", s.loginAccessToken)
	r.POST("/login/refresh-token", s.refreshToken)
	r.POST("/users/", s.createUser)
	r.POST("/chat/", s.chat)

	meals := r.Group("/meals").Use(s.authMiddleware())
	{
		meals.POST("/analyze", s.analyzeLimiter(), s.analyzeMeal)
		meals.POST("/", s.createMeal)
		meals.GET("/", s.listMeals)
	}
	return r
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("devserver listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.opts.Logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) analyzeLimiter() gin.HandlerFunc {
	return limit.NewRateLimiter(func(c *gin.Context) string {
		return c.ClientIP()
	}, func(c *gin.Context) (*rate.Limiter, time.Duration) {
		return rate.NewLimiter(s.opts.AnalyzeLimit, s.opts.AnalyzeBurst), time.Hour
	}, func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Rate limit exceeded: 5 per 1 minute"})
	})
}

// detail writes a FastAPI-style error body.
func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

// validationError writes a FastAPI-style 422 body.
func validationError(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": msg}}})
}
