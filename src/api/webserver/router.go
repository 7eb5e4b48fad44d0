package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/veritynews/verity/src/api/config"
	"github.com/veritynews/verity/src/factcheck"
	"github.com/veritynews/verity/src/queue"
)

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client, orch *factcheck.Orchestrator, q *queue.Queue) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery(), requestID())
	attachRoutes(g, cfg, db, rdb, orch, q)
	return g
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("reqID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, rdb *redis.Client, orch *factcheck.Orchestrator, q *queue.Queue) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://verity.news"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth(db, []byte(cfg.JWTSecret))
	artH := NewArticles(db, rdb)
	voteH := NewVotes(db)
	cmtH := NewComments(db)
	bmH := NewBookmarks(db)
	fcH := NewFactCheck(orch, q)

	// Fact checks cost real money at the external service; keep the
	// submit rate low.
	fcLimiter := NewRateLimiter(5, time.Minute)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/register", authH.Register)
		v1.POST("/auth/login", authH.Login)

		v1.GET("/articles", artH.List)
		v1.GET("/articles/:id", artH.Get)
		v1.GET("/articles/:id/comments", cmtH.List)
		v1.GET("/articles/:id/factcheck", fcH.Get)

		secured := v1.Group("")
		secured.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		secured.POST("/votes", voteH.Cast)
		secured.POST("/comments", cmtH.Create)
		secured.GET("/bookmarks", bmH.List)
		secured.POST("/bookmarks", bmH.Add)
		secured.DELETE("/bookmarks/:articleID", bmH.Remove)
		secured.POST("/articles/:id/factcheck", RateLimitMiddleware(fcLimiter), fcH.Submit)
		secured.DELETE("/factcheck/:jobID", fcH.Cancel)
	}
}
