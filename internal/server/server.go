// Package server provides the HTTP handlers and routing for the MCP bridge,
// and the stdio runner.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"maps-mcp/internal/apperr"
	"maps-mcp/internal/config"
	"maps-mcp/internal/credentials"
	"maps-mcp/internal/logging"
	"maps-mcp/internal/maps"
	"maps-mcp/internal/tools"
)

const (
	// ServerName identifies this MCP server to clients.
	ServerName = "google-maps-mcp"
	// ServerVersion identifies the MCP server version.
	ServerVersion = "0.1.0"

	latestProtocolVersion = "2025-06-18"
	sessionHeader         = "Mcp-Session-Id"
	maxRequestBody        = 1 << 20
)

var supportedProtocolVersions = map[string]bool{
	"2024-11-05": true,
	"2025-03-26": true,
	"2025-06-18": true,
}

// Server contains the configured router, HTTP client, session slot and
// config for the HTTP bridge.
type Server struct {
	cfg        config.Config
	router     *chi.Mux
	httpClient *http.Client
	logger     *slog.Logger
	sessions   sessionSlot
	getenv     func(string) string
}

// New constructs a Server with middleware and routes configured.
func New(cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		cfg:        cfg,
		router:     chi.NewRouter(),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logging.Component(logger, "http"),
		getenv:     os.Getenv,
	}
	accessLog := slog.NewLogLogger(s.logger.Handler(), slog.LevelInfo)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: accessLog, NoColor: true}))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/mcp", func(r chi.Router) {
		r.Use(s.auth)
		r.Get("/", s.handleStatus)
		r.Post("/", s.handleRPC)
	})

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

// Session returns the live session, or nil before initialize.
func (s *Server) Session() *Session { return s.sessions.Get() }

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.cfg.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ready",
		"name":    ServerName,
		"version": ServerVersion,
	})
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("rpc handler panic", "method", req.Method, "panic", rec)
			writeRPCError(w, http.StatusInternalServerError, req.ID, codeInternalError, fmt.Sprint(rec))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeRPCError(w, http.StatusBadRequest, nil, codeParseError, "failed to read request body")
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeRPCError(w, http.StatusBadRequest, nil, codeParseError, "Parse error: "+err.Error())
		return
	}
	if req.Method == "" {
		writeRPCError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "Invalid request: method is required")
		return
	}

	if req.Method == "initialize" {
		s.initialize(w, r, req, body)
		return
	}

	sess := s.sessions.Get()
	if sess == nil {
		writeRPCError(w, http.StatusBadRequest, req.ID, codeNotInitialized, "Server not initialized.")
		return
	}
	s.dispatch(r.Context(), w, sess, req)
}

// initialize resolves the credential from config, headers, body and
// environment, builds a registry and installs it as the live session.
func (s *Server) initialize(w http.ResponseWriter, r *http.Request, req rpcRequest, body []byte) {
	key, source, err := credentials.NewResolver(s.cfg.APIKey).Resolve(credentials.Request{
		Header: r.Header,
		Body:   body,
		Getenv: s.getenv,
	})
	if err != nil {
		s.logger.Warn("initialize rejected", "error", err)
		writeRPCError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
		return
	}

	reg, err := tools.New(maps.New(s.cfg.BaseURL, key, s.httpClient))
	if err != nil {
		s.logger.Error("build tool registry", "error", err)
		writeRPCError(w, http.StatusInternalServerError, req.ID, codeInternalError, err.Error())
		return
	}

	sess := newSession(reg, source)
	if prev := s.sessions.Replace(sess); prev != nil {
		s.logger.Info("session replaced", "previous", prev.ID, "session", sess.ID)
	}
	s.logger.Info("session initialized", "session", sess.ID, "key_source", source,
		"key", logging.Redact(key, s.cfg.Debug))

	var params initializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.logger.Debug("malformed initialize params; using latest protocol version", "error", err)
		}
	}
	version := latestProtocolVersion
	if supportedProtocolVersions[params.ProtocolVersion] {
		version = params.ProtocolVersion
	}

	w.Header().Set(sessionHeader, sess.ID)
	writeRPCResult(w, req.ID, &mcp.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    &mcp.ServerCapabilities{Tools: &mcp.ToolCapabilities{}},
		ServerInfo:      &mcp.Implementation{Name: ServerName, Version: ServerVersion},
	})
}

func (s *Server) dispatch(ctx context.Context, w http.ResponseWriter, sess *Session, req rpcRequest) {
	switch req.Method {
	case "tools/list":
		writeRPCResult(w, req.ID, &mcp.ListToolsResult{Tools: sess.Registry.List()})

	case "tools/call":
		var params callParams
		if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
			writeRPCError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "Invalid params: tool name is required")
			return
		}
		res, err := sess.Registry.Call(ctx, params.Name, params.Arguments)
		if err != nil {
			s.writeCallError(w, req, params.Name, err)
			return
		}
		if res.IsError {
			s.logger.Warn("tool failed", "tool", params.Name, "session", sess.ID)
		}
		writeRPCResult(w, req.ID, res)

	default:
		res, err := sess.Registry.Handle(ctx, req.Method, req.Params)
		switch {
		case errors.Is(err, tools.ErrMethodNotFound):
			writeRPCError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "Method not found: "+req.Method)
		case err != nil:
			writeRPCError(w, http.StatusInternalServerError, req.ID, codeInternalError, err.Error())
		case req.isNotification():
			w.WriteHeader(http.StatusAccepted)
		default:
			if res == nil {
				res = struct{}{}
			}
			writeRPCResult(w, req.ID, res)
		}
	}
}

func (s *Server) writeCallError(w http.ResponseWriter, req rpcRequest, tool string, err error) {
	if apperr.Is(err, apperr.Validation) {
		writeRPCError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error())
		return
	}
	s.logger.Error("tool call failed", "tool", tool, "kind", apperr.KindOf(err), "error", err)
	writeRPCError(w, http.StatusInternalServerError, req.ID, codeInternalError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRPCResult(w http.ResponseWriter, id json.RawMessage, result any) {
	writeJSON(w, http.StatusOK, rpcResponse{JSONRPC: jsonrpcVersion, Result: result, ID: normalizeID(id)})
}

func writeRPCError(w http.ResponseWriter, status int, id json.RawMessage, code int, message string) {
	writeJSON(w, status, rpcResponse{
		JSONRPC: jsonrpcVersion,
		Error:   &rpcError{Code: code, Message: message},
		ID:      normalizeID(id),
	})
}

func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}
