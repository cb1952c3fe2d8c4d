// Package apiserver exposes the suggestion service: AI-backed deal
// suggestions for events, plus the vendor-feedback surface that drives the
// publisher's state machine.
package apiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dealsense/dealsense/pkg/apiserver/handlers"
	"github.com/dealsense/dealsense/pkg/apiserver/middleware"
	"github.com/dealsense/dealsense/pkg/suggest"
)

type Server struct {
	router      *gin.Engine
	generator   *suggest.Generator
	suggestions handlers.SuggestionStore
	logger      *zap.Logger
}

// NewServer wires the routes. A nil generator means the AI key is not
// configured; /deals/suggest then reports unavailability instead of the
// process refusing to serve its other routes.
func NewServer(generator *suggest.Generator, suggestions handlers.SuggestionStore, logger *zap.Logger) *Server {
	s := &Server{
		generator:   generator,
		suggestions: suggestions,
		logger:      logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	suggestionHandler := handlers.NewSuggestionHandler(s.generator, s.suggestions, s.logger)
	r.POST("/deals/suggest", suggestionHandler.Suggest)
	r.GET("/suggestions", suggestionHandler.List)
	r.POST("/suggestions/:id/feedback", suggestionHandler.SetFeedback)

	s.router = r
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
