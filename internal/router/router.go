package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/intervue/intervue-backend/internal/config"
	"github.com/intervue/intervue-backend/internal/handler"
	"github.com/intervue/intervue-backend/internal/middleware"
	"github.com/intervue/intervue-backend/internal/response"
	"github.com/intervue/intervue-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Interview *handler.InterviewHandler
	Quiz      *handler.QuizHandler
	Subject   *handler.SubjectHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	tokens *service.TokenService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Serve uploaded resumes statically with aggressive caching (1 year);
	// filenames are random UUIDs so stale caches cannot occur.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000, true))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Session creation hits the AI gateway, so it gets a tighter limit
	// than the rest of the API (10 requests per minute per IP).
	createLimiter := middleware.NewRateLimiter(10, time.Minute)

	// ─── 1. Catalog Group (Public) ─────────────────────────────────────
	catalogAPI := router.Group("/api/v1")
	{
		catalogAPI.GET("/subjects", handlers.Subject.ListSubjects)
	}

	// ─── 2. Interview Group ────────────────────────────────────────────
	interviewAPI := router.Group("/api/v1/interviews")
	{
		interviewAPI.POST("", createLimiter.Middleware(), handlers.Interview.CreateInterview)

		guarded := interviewAPI.Group("")
		guarded.Use(middleware.RequireSessionToken(tokens, service.SessionKindInterview))
		{
			guarded.GET("/:id", handlers.Interview.GetInterview)
			guarded.POST("/:id/end", handlers.Interview.EndInterview)
		}
	}

	// ─── 3. Quiz Group ─────────────────────────────────────────────────
	quizAPI := router.Group("/api/v1/quizzes")
	{
		quizAPI.POST("", createLimiter.Middleware(), handlers.Quiz.CreateQuiz)

		guarded := quizAPI.Group("")
		guarded.Use(middleware.RequireSessionToken(tokens, service.SessionKindQuiz))
		{
			guarded.GET("/:id", handlers.Quiz.GetQuiz)
			guarded.POST("/:id/answer", handlers.Quiz.SelectAnswer)
			guarded.POST("/:id/next", handlers.Quiz.NextQuestion)
			guarded.POST("/:id/proctor-event", handlers.Quiz.ProctorEvent)
			guarded.POST("/:id/end", handlers.Quiz.EndQuiz)
		}
	}

	// ─── 4. WebSocket Group (Token via Query) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSSessionToken(tokens, service.SessionKindInterview))
	{
		ws.GET("/interviews/:id/stream", handlers.WS.Stream)
	}

	return router
}
