// Package server exposes summarization over HTTP with a sequential job queue.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guiyumin/vsum/internal/core/ai/chunker"
	"github.com/guiyumin/vsum/internal/core/ai/summarizer"
	"github.com/guiyumin/vsum/internal/core/config"
	"github.com/guiyumin/vsum/internal/core/logger"
	"github.com/guiyumin/vsum/internal/core/transcript"
	"github.com/guiyumin/vsum/internal/core/version"
)

// Response is the standard API response structure
type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// Server is the HTTP server for vsum
type Server struct {
	port     int
	apiKey   string
	cfg      *config.Config
	jobQueue *JobQueue
	log      logger.Logger
	server   *http.Server
	engine   *gin.Engine
}

// New creates a server that runs jobs through process.
func New(cfg *config.Config, process ProcessFunc, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		port:     cfg.Server.Port,
		apiKey:   cfg.Server.APIKey,
		cfg:      cfg,
		jobQueue: NewJobQueue(cfg.Server.MaxJobs, process),
		log:      log,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.loggingMiddleware())
	if s.apiKey != "" {
		engine.Use(s.authMiddleware())
	}

	api := engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/models", s.handleModels)
	api.POST("/summaries", s.handleCreate)
	api.GET("/summaries", s.handleList)
	api.GET("/summaries/:id", s.handleGet)
	api.GET("/summaries/:id/markdown", s.handleMarkdown)
	api.DELETE("/summaries/:id", s.handleDelete)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Response{Code: 404, Message: "not found"})
	})
	return engine
}

// Start runs the job worker and serves until Stop is called.
func (s *Server) Start() error {
	s.jobQueue.Start()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx := context.Background()
	s.log.Info(ctx, "Starting vsum server on port %d", s.port)
	s.log.Info(ctx, "Output directory: %s", s.cfg.OutputDir)
	if s.apiKey != "" {
		s.log.Info(ctx, "API key authentication enabled")
	}

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	s.jobQueue.Stop()
	return err
}

// Middleware

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/api/health" {
			c.Next()
			return
		}

		if c.GetHeader("X-API-Key") != s.apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Code:    401,
				Message: "invalid or missing API key",
			})
			return
		}
		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug(c.Request.Context(), "%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// Handlers

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"status":  "ok",
			"version": version.Version,
		},
		Message: "everything is good",
	})
}

func (s *Server) handleModels(c *gin.Context) {
	provider := c.Query("provider")
	models := summarizer.Models
	if provider != "" {
		models = summarizer.ModelsFor(provider)
	}
	c.JSON(http.StatusOK, Response{Code: 200, Data: models, Message: "ok"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: 400, Message: msg})
}

func (s *Server) handleCreate(c *gin.Context) {
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: url is required")
		return
	}
	req.URL = strings.TrimSpace(req.URL)

	if _, err := transcript.ExtractVideoID(req.URL); err != nil {
		badRequest(c, err.Error())
		return
	}
	if _, err := summarizer.ParseFormat(req.Format); err != nil {
		badRequest(c, err.Error())
		return
	}
	if _, err := chunker.ParseStrategy(req.Chunking); err != nil {
		badRequest(c, err.Error())
		return
	}

	job, err := s.jobQueue.AddJob(req)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, Response{Code: 503, Message: err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, Response{
		Code:    202,
		Data:    job,
		Message: "summary queued",
	})
}

func (s *Server) handleList(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Code:    200,
		Data:    s.jobQueue.GetAllJobs(),
		Message: "ok",
	})
}

func (s *Server) jobOr404(c *gin.Context) *Job {
	job := s.jobQueue.GetJob(c.Param("id"))
	if job == nil {
		c.JSON(http.StatusNotFound, Response{Code: 404, Message: "job not found"})
	}
	return job
}

func (s *Server) handleGet(c *gin.Context) {
	job := s.jobOr404(c)
	if job == nil {
		return
	}
	c.JSON(http.StatusOK, Response{Code: 200, Data: job, Message: string(job.Status)})
}

func (s *Server) handleMarkdown(c *gin.Context) {
	job := s.jobOr404(c)
	if job == nil {
		return
	}
	if job.Status != JobStatusCompleted {
		c.JSON(http.StatusConflict, Response{
			Code:    409,
			Data:    gin.H{"status": job.Status},
			Message: "summary is not ready",
		})
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(job.Markdown()))
}

func (s *Server) handleDelete(c *gin.Context) {
	id := c.Param("id")

	if s.jobQueue.CancelJob(id) {
		c.JSON(http.StatusOK, Response{Code: 200, Data: gin.H{"id": id}, Message: "job cancelled"})
		return
	}
	if s.jobQueue.RemoveJob(id) {
		c.JSON(http.StatusOK, Response{Code: 200, Data: gin.H{"id": id}, Message: "job removed"})
		return
	}
	c.JSON(http.StatusNotFound, Response{Code: 404, Message: "job not found"})
}
