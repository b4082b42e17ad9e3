// Package server owns the HTTP transport: route registration, request
// parsing, CORS and the mapping from error kinds to statuses. All
// business logic lives behind the facade and the tool registry.
package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raglab/deeprag/pkg/apperr"
	"github.com/raglab/deeprag/pkg/rag"
	"github.com/raglab/deeprag/pkg/tools"
)

type Server struct {
	service  *rag.Service
	registry *tools.Registry
}

func New(service *rag.Service, registry *tools.Registry) *Server {
	return &Server{service: service, registry: registry}
}

// Router builds the Gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.Use(corsMiddleware())

	router.GET("/health", s.handleHealth)
	router.POST("/query", s.handleQuery)
	router.POST("/documents", s.handleAddDocument)
	router.POST("/chat", s.handleChat)
	router.GET("/tools", s.handleListTools)
	router.POST("/tools/:toolName", s.handleInvokeTool)
	router.POST("/mcp/call", s.handleMCPCall)
	router.GET("/ws", s.handleWebSocket)

	return router
}

// Run serves until the listener fails.
func (s *Server) Run(port string) error {
	return s.Router().Run(":" + port)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Info())
}

type queryRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "invalid request body", apperr.Validationf("%v", err))
		return
	}
	if req.Question == "" {
		writeError(c, "query failed", apperr.Validationf("question is required"))
		return
	}

	result, err := s.service.Query(c.Request.Context(), req.Question)
	if err != nil {
		writeError(c, "query failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type documentRequest struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
}

func (s *Server) handleAddDocument(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "invalid request body", apperr.Validationf("%v", err))
		return
	}
	if req.Content == "" {
		writeError(c, "document ingestion failed", apperr.Validationf("content is required"))
		return
	}

	result, err := s.service.AddDocument(c.Request.Context(), req.Content, req.Metadata)
	if err != nil {
		writeError(c, "document ingestion failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type chatRequest struct {
	Message string `json:"message"`
	System  string `json:"system"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "invalid request body", apperr.Validationf("%v", err))
		return
	}
	if req.Message == "" {
		writeError(c, "chat failed", apperr.Validationf("message is required"))
		return
	}

	result, err := s.service.Chat(c.Request.Context(), req.Message, req.System)
	if err != nil {
		writeError(c, "chat failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": s.registry.List()})
}

func (s *Server) handleInvokeTool(c *gin.Context) {
	name := c.Param("toolName")

	// ContentLength is -1 for chunked requests, so sniff the body
	// itself; only a missing body means no arguments.
	args := map[string]interface{}{}
	if err := c.ShouldBindJSON(&args); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, "invalid request body", apperr.Validationf("%v", err))
		return
	}

	result, err := s.registry.Invoke(c.Request.Context(), name, args)
	if err != nil {
		writeError(c, "tool invocation failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

type mcpCallRequest struct {
	Method string `json:"method"`
	Params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	} `json:"params"`
}

// handleMCPCall is the protocol-style dispatch surface: tools/list
// returns the tool list, tools/call invokes a named tool.
func (s *Server) handleMCPCall(c *gin.Context) {
	var req mcpCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "invalid request body", apperr.Validationf("%v", err))
		return
	}

	switch req.Method {
	case "tools/list":
		c.JSON(http.StatusOK, gin.H{"tools": s.registry.List()})
	case "tools/call":
		result, err := s.registry.Invoke(c.Request.Context(), req.Params.Name, req.Params.Arguments)
		if err != nil {
			writeError(c, "tool invocation failed", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": result})
	default:
		writeError(c, "mcp call failed", apperr.NotFoundf("unknown method: %s", req.Method))
	}
}

func writeError(c *gin.Context, action string, err error) {
	details := err.Error()
	var e *apperr.Error
	if errors.As(err, &e) {
		details = e.Details()
	}
	c.JSON(statusFor(err), gin.H{"error": action, "details": details})
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
