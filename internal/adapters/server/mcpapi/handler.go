// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/shootdesk/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// serverInstructions orients agents before their first tool call.
const serverInstructions = `Crew scheduling and post-production workflow for one studio.
Availability answers are advisory: a busy answer names the blocking event but never prevents a booking.
Missing start or end times mean "available". Pass exclude_event_id when checking the event being edited.
Task statuses follow the department pipeline in ` + workflowsURI + `; a rejected move can be retried with force=true.`

// workflowsURI names the read-only department pipeline resource.
const workflowsURI = "shootdesk://workflows"

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the scheduling and workflow tools.
func NewHandler(cfg Config, services common.Services) (*Handler, error) {
	if services == nil {
		return nil, fmt.Errorf("scheduling service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithInstructions(serverInstructions),
	)
	registerAvailabilityTools(mcpSrv, services)
	registerEventTools(mcpSrv, services)
	registerWorkflowTools(mcpSrv, services)
	registerOverviewTool(mcpSrv, services)
	registerWorkflowResource(mcpSrv)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "shootdesk"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = "/" + strings.Trim(strings.TrimSpace(cfg.EndpointPath), "/")
	if cfg.EndpointPath == "/" {
		cfg.EndpointPath = "/mcp"
	}
	return cfg
}

// registerWorkflowResource exposes the department pipelines as JSON.
func registerWorkflowResource(srv *mcpserver.MCPServer) {
	resource := mcp.NewResource(
		workflowsURI,
		"Department workflows",
		mcp.WithResourceDescription("Ordered task statuses per department with strict-mode neighbours."),
		mcp.WithMIMEType("application/json"),
	)
	srv.AddResource(resource, func(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		encoded, err := json.Marshal(common.WorkflowCatalog())
		if err != nil {
			return nil, fmt.Errorf("encode workflows: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(encoded),
			},
		}, nil
	})
}

// toolResultFromError prefixes the tool error with its stable code.
func toolResultFromError(err error) *mcp.CallToolResult {
	if err == nil {
		return mcp.NewToolResultError("internal_error: unknown error")
	}
	return mcp.NewToolResultError(common.ErrorCode(err) + ": " + err.Error())
}

// invalidRequestToolResult reports malformed tool arguments.
func invalidRequestToolResult(err error) *mcp.CallToolResult {
	if err == nil {
		return mcp.NewToolResultError("invalid_request: malformed arguments")
	}
	return mcp.NewToolResultError("invalid_request: " + err.Error())
}
