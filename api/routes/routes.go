package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/hyperon-hyeon/Graphear/api/handlers"
	"github.com/hyperon-hyeon/Graphear/api/middleware"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

// Options holds the middleware settings.
type Options struct {
	AllowOrigins   []string
	MaxUploadBytes int64
	Logger         logger.Logger
}

// SetupRoutes registers the middleware chain and every route.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, opts Options) {
	r.Use(middleware.RequestID())
	if opts.Logger != nil {
		r.Use(middleware.AccessLog(opts.Logger))
	}
	r.Use(middleware.CORS(opts.AllowOrigins))

	r.GET("/health", handlers.HealthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/upload", middleware.BodyLimit(opts.MaxUploadBytes), h.Document.Upload)
		v1.POST("/convert", h.Document.Convert)
		v1.POST("/convert/async", h.Document.ConvertAsync)
		v1.GET("/tasks/:taskId", h.Document.GetTask)
		v1.POST("/tts", h.Document.TTS)
	}

	docs := v1.Group("/documents/:pdfId")
	{
		docs.GET("/questions", h.Document.ListQuestions)
		docs.GET("/questions/:number", h.Document.GetQuestion)
		docs.GET("/questions/:number/audio", h.Document.QuestionAudio)
	}
}
