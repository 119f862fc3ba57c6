package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sitemap-tools/sitemap-pulse/config"
	"github.com/sitemap-tools/sitemap-pulse/internal/analyzer"
	"github.com/sitemap-tools/sitemap-pulse/internal/storage"
)

//go:embed index.html
var indexHTML []byte

type Server struct {
	router *gin.Engine
	port   int
	server *http.Server
}

func NewServer(cfg *config.Config, store storage.Store, an *analyzer.Analyzer) *Server {
	router := gin.Default()

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Create handler
	handler := NewHandler(store, an, cfg.History.Limit)

	// Web UI and metrics
	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup routes
	api := router.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		api.POST("/analyze", handler.AnalyzeSitemap)

		// Recent targets routes
		recent := api.Group("/recent")
		{
			recent.GET("", handler.ListRecentTargets)
			recent.DELETE("/:id", handler.DeleteTarget)
		}
	}

	return &Server{
		router: router,
		port:   cfg.Server.Port,
	}
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
