package mcpgo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/foodlens-app/nutrition-mcp-server/internal/auth"
	"github.com/foodlens-app/nutrition-mcp-server/internal/off"
	"github.com/foodlens-app/nutrition-mcp-server/internal/scan"
	"github.com/foodlens-app/nutrition-mcp-server/internal/types"
)

// responseRecorder wraps http.ResponseWriter to capture response details
type responseRecorder struct {
	http.ResponseWriter
	statusCode    int
	bytesWritten  int
	headerWritten bool
}

func (r *responseRecorder) WriteHeader(code int) {
	if r.headerWritten {
		return
	}
	r.statusCode = code
	r.headerWritten = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.headerWritten {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(data)
	r.bytesWritten += n
	return n, err
}

// Server exposes the nutrition pipeline as MCP tools over stdio or
// authenticated HTTP
type Server struct {
	mcpServer *server.MCPServer
	pipeline  *scan.Pipeline
	backend   off.Backend
	auth      *auth.BearerTokenAuth
	log       *slog.Logger

	// Health check caching to keep /health cheap under probing
	healthMu        sync.RWMutex
	lastHealthCheck time.Time
	lastHealthError error
}

// ScanBarcodeResponse is the structured result of scan_barcode
type ScanBarcodeResponse struct {
	Found  bool                     `json:"found"`
	Record *types.ScannedFoodRecord `json:"record,omitempty"`
}

// AnalyzeLabelResponse is the structured result of analyze_nutrition_label
type AnalyzeLabelResponse struct {
	Accepted bool                 `json:"accepted"`
	Draft    *types.LabelOcrDraft `json:"draft,omitempty"`
}

// FindAlternativesResponse is the structured result of find_alternatives
type FindAlternativesResponse struct {
	Found        bool                    `json:"found"`
	Count        int                     `json:"count"`
	Alternatives []types.FoodAlternative `json:"alternatives"`
}

// NewServer creates a new MCP server around the scan pipeline
func NewServer(pipeline *scan.Pipeline, backend off.Backend, authenticator *auth.BearerTokenAuth, logger *slog.Logger) *Server {
	mcpServer := server.NewMCPServer(
		"Nutrition MCP Server",
		"1.0.0",
		server.WithToolCapabilities(false), // Tools don't change dynamically
		server.WithRecovery(),
		server.WithLogging(),
	)

	s := &Server{
		mcpServer: mcpServer,
		pipeline:  pipeline,
		backend:   backend,
		auth:      authenticator,
		log:       logger,
	}

	s.addTools()

	return s
}

// checkHealthWithCache checks backend health with 10-second caching
func (s *Server) checkHealthWithCache(ctx context.Context) error {
	const cacheDuration = 10 * time.Second

	s.healthMu.RLock()
	if time.Since(s.lastHealthCheck) < cacheDuration {
		err := s.lastHealthError
		s.healthMu.RUnlock()
		return err
	}
	s.healthMu.RUnlock()

	s.healthMu.Lock()
	defer s.healthMu.Unlock()

	// Double-check in case another goroutine refreshed while we waited
	if time.Since(s.lastHealthCheck) < cacheDuration {
		return s.lastHealthError
	}

	s.log.Debug("Health check: probing backend")
	err := s.backend.HealthCheck(ctx)
	s.lastHealthCheck = time.Now()
	s.lastHealthError = err

	return err
}

func (s *Server) addTools() {
	scanTool := mcp.NewTool("scan_barcode",
		mcp.WithDescription("Scan a product barcode (UPC/EAN) and return its nutrition record, 0-100 health score, additive classification and up to three healthier alternatives."),
		mcp.WithString("barcode",
			mcp.Required(),
			mcp.MinLength(1),
			mcp.Description("The barcode (UPC/EAN) to scan. Required and must be a non-empty string."),
		),
		mcp.WithOutputSchema[ScanBarcodeResponse](),
		mcp.WithIdempotentHintAnnotation(true),
	)
	s.mcpServer.AddTool(scanTool, s.handleScanBarcode)

	labelTool := mcp.NewTool("analyze_nutrition_label",
		mcp.WithDescription("Extract nutrition fields from raw OCR text of a nutrition label and return a confidence-scored draft. Rejects text with too few recognizable fields."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.MinLength(1),
			mcp.Description("Raw multi-line OCR text from a nutrition label photo."),
		),
		mcp.WithOutputSchema[AnalyzeLabelResponse](),
		mcp.WithIdempotentHintAnnotation(true),
	)
	s.mcpServer.AddTool(labelTool, s.handleAnalyzeLabel)

	alternativesTool := mcp.NewTool("find_alternatives",
		mcp.WithDescription("Find up to three strictly healthier alternatives for a product identified by barcode, ranked best first."),
		mcp.WithString("barcode",
			mcp.Required(),
			mcp.MinLength(1),
			mcp.Description("The barcode (UPC/EAN) of the product to find alternatives for."),
		),
		mcp.WithOutputSchema[FindAlternativesResponse](),
		mcp.WithIdempotentHintAnnotation(true),
	)
	s.mcpServer.AddTool(alternativesTool, s.handleFindAlternatives)
}

func (s *Server) handleScanBarcode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.log.Debug("handleScanBarcode: Starting tool call", "arguments", request.GetArguments())

	barcode, err := request.RequireString("barcode")
	if err != nil {
		s.log.Warn("handleScanBarcode: Missing 'barcode' parameter", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Missing required parameter 'barcode': %v", err)), nil
	}

	record, err := s.pipeline.ScanBarcode(ctx, barcode)
	if err != nil {
		s.log.Error("Barcode scan failed", "error", err, "lookup_failed", errors.Is(err, scan.ErrLookupFailed))
		return mcp.NewToolResultError(fmt.Sprintf("Barcode scan failed: %v", err)), nil
	}

	response := ScanBarcodeResponse{
		Found:  record != nil,
		Record: record,
	}

	responseJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		s.log.Error("handleScanBarcode: Failed to marshal response", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal response: %v", err)), nil
	}

	s.log.Debug("handleScanBarcode: Returning structured result",
		"found", response.Found,
		"response_size", len(responseJSON))
	return mcp.NewToolResultStructured(response, string(responseJSON)), nil
}

func (s *Server) handleAnalyzeLabel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.log.Debug("handleAnalyzeLabel: Starting tool call")

	text, err := request.RequireString("text")
	if err != nil {
		s.log.Warn("handleAnalyzeLabel: Missing 'text' parameter", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Missing required parameter 'text': %v", err)), nil
	}

	draft := s.pipeline.AnalyzeLabel(text)

	response := AnalyzeLabelResponse{
		Accepted: draft != nil,
		Draft:    draft,
	}

	responseJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		s.log.Error("handleAnalyzeLabel: Failed to marshal response", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal response: %v", err)), nil
	}

	s.log.Debug("handleAnalyzeLabel: Returning structured result",
		"accepted", response.Accepted,
		"response_size", len(responseJSON))
	return mcp.NewToolResultStructured(response, string(responseJSON)), nil
}

func (s *Server) handleFindAlternatives(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.log.Debug("handleFindAlternatives: Starting tool call", "arguments", request.GetArguments())

	barcode, err := request.RequireString("barcode")
	if err != nil {
		s.log.Warn("handleFindAlternatives: Missing 'barcode' parameter", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Missing required parameter 'barcode': %v", err)), nil
	}

	alternatives, err := s.pipeline.FindAlternatives(ctx, barcode)
	if err != nil {
		s.log.Error("Alternatives lookup failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Alternatives lookup failed: %v", err)), nil
	}

	response := FindAlternativesResponse{
		Found:        alternatives != nil,
		Count:        len(alternatives),
		Alternatives: alternatives,
	}

	responseJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		s.log.Error("handleFindAlternatives: Failed to marshal response", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal response: %v", err)), nil
	}

	s.log.Debug("handleFindAlternatives: Returning structured result",
		"count", response.Count,
		"response_size", len(responseJSON))
	return mcp.NewToolResultStructured(response, string(responseJSON)), nil
}

// ServeHTTP serves the MCP server over HTTP with authentication
func (s *Server) ServeHTTP(addr string) error {
	mux := http.NewServeMux()

	// Health endpoint (no auth required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		ctx := r.Context()
		if err := s.checkHealthWithCache(ctx); err != nil {
			s.log.Error("Health check failed", "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "healthy",
		})
	})

	streamableServer := server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithEndpointPath("/mcp"),
		server.WithStateLess(true), // Stateless for better client compatibility
	)

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovery := recover(); recovery != nil {
				s.log.Error("MCP endpoint panic recovered",
					"panic", recovery,
					"method", r.Method,
					"url", r.URL.String(),
					"remote_addr", r.RemoteAddr)
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Internal Server Error"))
			}
		}()

		s.log.Debug("MCP request received",
			"method", r.Method,
			"url", r.URL.String(),
			"content_type", r.Header.Get("Content-Type"),
			"content_length", r.ContentLength,
			"remote_addr", r.RemoteAddr)

		if !s.auth.IsAuthorized(r) {
			s.auth.SetUnauthorizedHeaders(w)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Unauthorized"))
			s.log.Warn("Unauthorized MCP request", "remote_addr", r.RemoteAddr, "user_agent", r.UserAgent())
			return
		}

		recorder := &responseRecorder{ResponseWriter: w}
		streamableServer.ServeHTTP(recorder, r)

		s.log.Debug("MCP response sent",
			"status_code", recorder.statusCode,
			"response_size", recorder.bytesWritten,
			"content_type", recorder.Header().Get("Content-Type"))
	})

	s.log.Info("Starting MCP server", "addr", addr)
	return http.ListenAndServe(addr, mux)
}

// ServeStdio serves the MCP server over stdio (no auth required for local use)
func (s *Server) ServeStdio() error {
	s.log.Info("Starting MCP server in stdio mode")
	return server.ServeStdio(s.mcpServer)
}
