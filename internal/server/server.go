// Package server is the interactive HTTP front end: an upload form plus JSON
// and download endpoints over the pipeline.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/pipeline"
	"github.com/joseph-ayodele/doc-extractor/internal/render"
)

// Processor is the slice of pipeline.Processor the handlers use.
type Processor interface {
	Run(ctx context.Context, up pipeline.Upload) (*pipeline.Result, error)
	Render(res *pipeline.Result, stage constants.Stage, format constants.ReportFormat) (render.Artifact, error)
}

type Config struct {
	MaxUploadMB      int
	DefaultLanguages []string
}

type Server struct {
	cfg    Config
	proc   Processor
	logger *slog.Logger
	router *gin.Engine
}

func New(cfg Config, proc Processor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 20
	}
	s := &Server{cfg: cfg, proc: proc, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.MaxMultipartMemory = int64(s.cfg.MaxUploadMB) << 20

	r.GET("/", s.index)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	{
		api.POST("/extract", s.extract)
		api.POST("/process", s.process)
	}
	return r
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler { return s.router }

// HTTPServer returns an http.Server for addr with conservative timeouts.
// Write timeout is left open because a run waits on OCR and the LLM.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// requestLogger attaches a request ID and logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx, rid := common.EnsureRequestID(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", rid)

		c.Next()

		s.logger.Info("http.request",
			"req_id", rid,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}
