package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tradersecho/tradersecho/auth"
	"github.com/tradersecho/tradersecho/config"
	"github.com/tradersecho/tradersecho/query"
)

// Server wires the HTTP surface: auth, the free daily table, the pro
// snapshot endpoints and the realtime websocket push.
type Server struct {
	db      *gorm.DB
	cfg     *config.Config
	jwt     *auth.JWTService
	queries *query.Service
}

func NewServer(db *gorm.DB, cfg *config.Config) *Server {
	return &Server{
		db:      db,
		cfg:     cfg,
		jwt:     auth.NewJWTService(cfg.Auth.JWTSecret, cfg.App.Name, cfg.Auth.TokenDuration),
		queries: query.NewService(db),
	}
}

// DailyQuery binds the /api/free/daily query string.
type DailyQuery struct {
	Tickers  string `form:"tickers"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Sort     string `form:"sort,default=interest_score"`
	Limit    int    `form:"limit,default=50"`
	Page     int    `form:"page,default=1"`
}

func (s *Server) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), s.corsMiddleware())

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.POST("/api/auth/signup", s.Signup)
	r.POST("/api/auth/login", s.Login)
	r.GET("/api/me", s.AuthRequired(), s.Me)
	r.POST("/api/admin/make-pro", s.AdminMakePro)

	r.GET("/api/free/daily", s.FreeDaily)
	r.GET("/api/pro/snapshot", s.AuthRequired(), s.ProRequired(), s.ProSnapshot)
	r.GET("/ws/realtime", s.Realtime)

	billing := r.Group("/api/billing")
	billing.POST("/create-checkout-session", s.CreateCheckoutSession)
	billing.POST("/webhook", s.BillingWebhook)

	return r
}

// FreeDaily serves the delayed daily sentiment table.
func (s *Server) FreeDaily(c *gin.Context) {
	var q DailyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var tickers []string
	if q.Tickers != "" {
		tickers = strings.Split(q.Tickers, ",")
	}

	items, err := s.queries.ListDaily(query.DailyParams{
		Tickers:  tickers,
		DateFrom: q.DateFrom,
		DateTo:   q.DateTo,
		Sort:     q.Sort,
		Limit:    q.Limit,
		Page:     q.Page,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// ProSnapshot serves the paid real-time view.
func (s *Server) ProSnapshot(c *gin.Context) {
	items, err := s.queries.LiveSnapshot(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	allowed := make(map[string]bool, len(s.cfg.Server.CORSOrigins))
	for _, o := range s.cfg.Server.CORSOrigins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Admin-Token")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
