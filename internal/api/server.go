package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/motorag/motorag/internal/config"
	"github.com/motorag/motorag/internal/errs"
	"github.com/motorag/motorag/internal/indexer"
	"github.com/motorag/motorag/internal/rag"
	"github.com/motorag/motorag/internal/retriever"
)

// Version is reported by the health endpoint
const Version = "0.1.0"

const requestIDHeader = "X-Request-ID"

// Server represents the HTTP API server
type Server struct {
	config   *config.Config
	router   *gin.Engine
	pipeline *rag.Pipeline
}

// NewServer creates a new API server around an existing pipeline
func NewServer(cfg *config.Config, pipeline *rag.Pipeline) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:   cfg,
		router:   gin.New(),
		pipeline: pipeline,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(gin.Logger())
	s.router.Use(corsMiddleware())

	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/stats", s.handleStats)

		// Chunking only, nothing is stored
		v1.POST("/chunk", s.handleChunk)

		// Ingest endpoints
		v1.POST("/documents", s.handleDocuments)
		v1.POST("/ingest", s.handleIngest)
		v1.POST("/index", s.handleIndex)

		// Retrieval endpoints
		v1.POST("/search", s.handleSearch)
		v1.POST("/context", s.handleContext)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	fmt.Printf("🚀 Starting MotoRAG API server on %s\n", addr)
	return s.router.Run(addr)
}

// requestIDMiddleware echoes the caller's request ID or assigns a new one
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// statusFor maps an error to the HTTP status reported to the client
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrEmbeddingTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, errs.ErrEmbeddingUnavailable), errors.Is(err, errs.ErrDimensionMismatch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	embeddingStatus := "ok"
	if err := s.pipeline.CheckHealth(ctx); err != nil {
		embeddingStatus = fmt.Sprintf("error: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   Version,
		"provider":  s.pipeline.ProviderName(),
		"embedding": embeddingStatus,
	})
}

// handleStats reports store size
func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"count":     s.pipeline.Count(),
		"dimension": s.pipeline.Dimension(),
	})
}

// ChunkRequest represents a chunking request. Omitted window fields fall
// back to the configured chunker.
type ChunkRequest struct {
	Text      string `json:"text"`
	ChunkSize *int   `json:"chunk_size"`
	Overlap   *int   `json:"overlap"`
}

// handleChunk splits text without storing anything
func (s *Server) handleChunk(c *gin.Context) {
	var req ChunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	size, overlap := s.window(req.ChunkSize, req.Overlap)
	chunks, err := indexer.ChunkText(req.Text, size, overlap)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chunks": chunks,
	})
}

// DocumentsRequest adds pre-split texts
type DocumentsRequest struct {
	Texts    []string           `json:"texts" binding:"required"`
	Metadata retriever.Metadata `json:"metadata"`
}

// handleDocuments embeds and stores texts as given
func (s *Server) handleDocuments(c *gin.Context) {
	var req DocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.pipeline.Store().Add(c.Request.Context(), req.Texts, req.Metadata); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"added": len(req.Texts),
		"count": s.pipeline.Count(),
	})
}

// IngestRequest chunks one text and stores the chunks
type IngestRequest struct {
	Text      string             `json:"text" binding:"required"`
	Metadata  retriever.Metadata `json:"metadata"`
	ChunkSize *int               `json:"chunk_size"`
	Overlap   *int               `json:"overlap"`
}

// handleIngest chunks and stores a text
func (s *Server) handleIngest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	size, overlap := s.window(req.ChunkSize, req.Overlap)
	res, err := s.pipeline.IngestWithWindow(c.Request.Context(), req.Text, size, overlap, req.Metadata)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chunks":  res.Chunks,
		"skipped": res.Skipped,
		"count":   s.pipeline.Count(),
	})
}

// IndexRequest represents a directory index request
type IndexRequest struct {
	Path string `json:"path" binding:"required"`
}

// handleIndex loads a directory on the server host and ingests it
func (s *Server) handleIndex(c *gin.Context) {
	var req IndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.pipeline.IngestDirectory(c.Request.Context(), req.Path, nil)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"path":      req.Path,
		"documents": res.Documents,
		"chunks":    res.Chunks,
		"count":     s.pipeline.Count(),
		"errors":    res.Errors,
		"elapsed":   res.ElapsedTime.String(),
	})
}

// SearchRequest represents a search request
type SearchRequest struct {
	Query           string `json:"query" binding:"required"`
	TopK            int    `json:"top_k"`
	IncludeMetadata bool   `json:"include_metadata"`
}

// handleSearch ranks stored chunks against the query
func (s *Server) handleSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	if !req.IncludeMetadata {
		texts, err := s.pipeline.SearchTexts(ctx, req.Query, req.TopK)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"query":   req.Query,
			"results": texts,
		})
		return
	}

	results, err := s.pipeline.Search(ctx, req.Query, req.TopK)
	if err != nil {
		abortWithError(c, err)
		return
	}

	// Format results
	formattedResults := make([]gin.H, 0, len(results))
	for _, r := range results {
		formattedResults = append(formattedResults, gin.H{
			"score":    r.Score,
			"text":     r.Text,
			"metadata": r.Metadata,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"results": formattedResults,
	})
}

// ContextRequest asks for a prompt-ready context block
type ContextRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

// handleContext returns retrieved passages formatted for a prompt
func (s *Server) handleContext(c *gin.Context) {
	var req ContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := s.pipeline.Context(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"context": out,
	})
}

// window resolves optional per-request chunk parameters against the
// configured chunker
func (s *Server) window(size, overlap *int) (int, int) {
	chunker := s.pipeline.Chunker()
	sz, ov := chunker.ChunkSize(), chunker.ChunkOverlap()
	if size != nil {
		sz = *size
	}
	if overlap != nil {
		ov = *overlap
	}
	return sz, ov
}
