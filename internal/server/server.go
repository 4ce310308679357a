// Package server exposes the export/import pipelines over HTTP. Request
// logging happens here and only here; the codec packages below stay
// silent.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rezonia/facturx/internal/detect"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/pdf"
	"github.com/rezonia/facturx/pkg/facturx"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server represents the HTTP API server
type Server struct {
	config    *Config
	router    *gin.Engine
	logger    zerolog.Logger
	validator *facturx.Validator
	exporter  *facturx.Exporter
	importer  *facturx.Importer
}

// NewServer creates a new API server. It compiles the schema profiles
// once; Close releases them.
func NewServer(config *Config, logger zerolog.Logger) (*Server, error) {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	validator, err := facturx.NewValidator()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	s := &Server{
		config:    config,
		router:    router,
		logger:    logger,
		validator: validator,
		exporter:  facturx.NewExporter(validator),
		importer:  facturx.NewImporter(validator),
	}

	s.setupRoutes()
	return s, nil
}

// Close releases the compiled schemas.
func (s *Server) Close() {
	s.validator.Close()
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/export/xml", s.handleExportXML)
		v1.POST("/export/pdf", s.handleExportPDF)
		v1.POST("/import", s.handleImport)
		v1.POST("/validate", s.handleValidate)
		v1.POST("/detect", s.handleDetect)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.logger.Info().Str("address", s.config.Address).Msg("listening")
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleExportXML takes a canonical invoice as JSON and returns the
// validated CII XML.
func (s *Server) handleExportXML(c *gin.Context) {
	var inv model.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid invoice JSON: " + err.Error()})
		return
	}

	data, err := s.exporter.BuildXML(&inv)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml", data)
}

// handleExportPDF takes a multipart form with an "invoice" JSON part and
// a "pdf" file part and returns the hybrid document.
func (s *Server) handleExportPDF(c *gin.Context) {
	invoiceJSON := c.PostForm("invoice")
	if invoiceJSON == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing invoice form field"})
		return
	}
	var inv model.Invoice
	if err := json.Unmarshal([]byte(invoiceJSON), &inv); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid invoice JSON: " + err.Error()})
		return
	}

	file, _, err := c.Request.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing pdf form file"})
		return
	}
	defer file.Close()
	base, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read pdf form file"})
		return
	}

	hybrid, err := s.exporter.BuildPDF(&inv, base)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", hybrid)
}

func (s *Server) handleImport(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	result, err := s.importer.Import(body)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, newImportResponse(result))
}

func (s *Server) handleValidate(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	// PDFs are unwrapped first so hybrid documents validate too.
	xml := body
	if detect.DetectFormat(body) == detect.FormatPDF {
		xml, err = pdf.Extract(body)
		if err != nil {
			s.renderError(c, err)
			return
		}
	}

	if err := s.validator.Validate(xml); err != nil {
		var schemaErr *model.SchemaInvalidError
		if errors.As(err, &schemaErr) {
			c.JSON(http.StatusUnprocessableEntity, ValidationResponse{
				Valid:      false,
				Profile:    string(s.validator.Classify(xml)),
				Violations: schemaErr.Violations,
			})
			return
		}
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ValidationResponse{Valid: true, Profile: string(facturx.ProfileEN16931)})
}

func (s *Server) handleDetect(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}

	format := detect.DetectFormat(body)
	c.JSON(http.StatusOK, DetectResponse{
		Format:     format.String(),
		IsZUGFeRD:  detect.IsZUGFeRD(body),
		IsXInvoice: detect.IsXInvoice(body),
		Size:       len(body),
	})
}

// renderError maps the typed error taxonomy onto HTTP status codes.
func (s *Server) renderError(c *gin.Context, err error) {
	var inputErr *model.InputInvalidError
	var schemaErr *model.SchemaInvalidError
	var attachErr *model.AttachmentMissingError

	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: inputErr.Error()})
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:      "schema validation failed",
			Violations: schemaErr.Violations,
		})
	case errors.As(err, &attachErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: attachErr.Error()})
	default:
		s.logger.Error().Err(err).Msg("internal error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
