// Package server mounts health checks, the REST API, and the MCP tool surface on one listener.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hylla/shootdesk/internal/adapters/server/common"
	"github.com/hylla/shootdesk/internal/adapters/server/httpapi"
	"github.com/hylla/shootdesk/internal/adapters/server/mcpapi"
)

// defaultBindAddress matches the config default so a bare `serve` and an empty config agree.
const defaultBindAddress = "127.0.0.1:5437"

// defaultShutdownTimeout bounds graceful shutdown time once context cancellation starts.
const defaultShutdownTimeout = 5 * time.Second

// Config defines serve-mode endpoint configuration.
type Config struct {
	HTTPBind      string
	APIEndpoint   string
	MCPEndpoint   string
	ServerName    string
	ServerVersion string
}

// WorkflowInfo is echoed by /readyz so clients know whether strict moves need force.
type WorkflowInfo struct {
	Mode           string `json:"workflow_mode,omitempty"`
	ConflictPolicy string `json:"conflict_policy,omitempty"`
}

// Dependencies defines app-facing adapters required by server transports.
type Dependencies struct {
	Services common.Services
	// Ready reports storage readiness for `/readyz`. Nil means always ready.
	Ready    func(context.Context) error
	Workflow WorkflowInfo
	Logger   *log.Logger
}

// NewHandler composes one root HTTP mux containing health, REST API, and MCP endpoints.
func NewHandler(cfg Config, deps Dependencies) (http.Handler, Config, error) {
	normalizedCfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, Config{}, err
	}
	if deps.Services == nil {
		return nil, Config{}, fmt.Errorf("services dependency is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	mcpHandler, err := mcpapi.NewHandler(
		mcpapi.Config{
			ServerName:    normalizedCfg.ServerName,
			ServerVersion: normalizedCfg.ServerVersion,
			EndpointPath:  normalizedCfg.MCPEndpoint,
		},
		deps.Services,
	)
	if err != nil {
		return nil, Config{}, fmt.Errorf("configure mcp handler: %w", err)
	}
	apiHandler := logRequests(logger, http.StripPrefix(normalizedCfg.APIEndpoint, httpapi.NewHandler(deps.Services)))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler(normalizedCfg))
	mux.HandleFunc("/readyz", readinessHandler(deps.Ready, deps.Workflow, logger))
	mux.Handle(normalizedCfg.MCPEndpoint, mcpHandler)
	mux.Handle(normalizedCfg.APIEndpoint, apiHandler)
	mux.Handle(normalizedCfg.APIEndpoint+"/", apiHandler)
	return mux, normalizedCfg, nil
}

// Run binds the listener, serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, cfg Config, deps Dependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}

	handler, normalizedCfg, err := NewHandler(cfg, deps)
	if err != nil {
		return fmt.Errorf("build server handler: %w", err)
	}
	listener, err := net.Listen("tcp", normalizedCfg.HTTPBind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", normalizedCfg.HTTPBind, err)
	}
	if deps.Logger != nil {
		deps.Logger.Info("serve listening",
			"addr", listener.Addr().String(),
			"api", normalizedCfg.APIEndpoint,
			"mcp", normalizedCfg.MCPEndpoint,
			"workflow_mode", deps.Workflow.Mode,
		)
	}
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-serveErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		shutdownErr := httpServer.Shutdown(shutdownCtx)
		serveErr := <-serveErrCh
		if shutdownErr != nil && !errors.Is(shutdownErr, context.Canceled) {
			return fmt.Errorf("shutdown server: %w", shutdownErr)
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve after shutdown: %w", serveErr)
		}
		return nil
	}
}

// normalizeConfig applies defaults and rejects an API endpoint that shadows MCP.
func normalizeConfig(cfg Config) (Config, error) {
	cfg.HTTPBind = strings.TrimSpace(cfg.HTTPBind)
	if cfg.HTTPBind == "" {
		cfg.HTTPBind = defaultBindAddress
	}

	cfg.APIEndpoint = normalizeEndpoint(cfg.APIEndpoint, "/api/v1")
	cfg.MCPEndpoint = normalizeEndpoint(cfg.MCPEndpoint, "/mcp")
	if cfg.APIEndpoint == cfg.MCPEndpoint {
		return Config{}, fmt.Errorf("api and mcp endpoints must differ")
	}
	for _, reserved := range []string{"/healthz", "/readyz"} {
		if cfg.APIEndpoint == reserved || cfg.MCPEndpoint == reserved {
			return Config{}, fmt.Errorf("endpoint %s is reserved for health checks", reserved)
		}
	}

	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "shootdesk"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	return cfg, nil
}

// normalizeEndpoint returns "/a/b" for any spelling of a path, or fallback for root or empty.
func normalizeEndpoint(path string, fallback string) string {
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")
	if path == "/" {
		return fallback
	}
	return path
}

// healthPayload is the /healthz body.
type healthPayload struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// readyPayload is the /readyz body.
type readyPayload struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	WorkflowInfo
}

// healthHandler reports liveness with the server identity.
func healthHandler(cfg Config) http.HandlerFunc {
	payload := healthPayload{Status: "ok", Service: cfg.ServerName, Version: cfg.ServerVersion}
	return func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, payload)
	}
}

// readinessHandler reports 503 while the storage ping fails.
func readinessHandler(ready func(context.Context) error, workflow WorkflowInfo, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				logger.Warn("readiness check failed", "err", err)
				writeHealth(w, http.StatusServiceUnavailable, readyPayload{Status: "unavailable", Error: err.Error()})
				return
			}
		}
		writeHealth(w, http.StatusOK, readyPayload{Status: "ready", WorkflowInfo: workflow})
	}
}

func writeHealth(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusRecorder captures the response status for request logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs one line per API request; server errors log at warn.
func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		keyvals := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(started).Round(time.Microsecond),
		}
		if rec.status >= http.StatusInternalServerError {
			logger.Warn("api request failed", keyvals...)
			return
		}
		logger.Debug("api request", keyvals...)
	})
}
