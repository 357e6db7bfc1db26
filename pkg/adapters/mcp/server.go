// Package mcp exposes the console over the Model Context Protocol so
// AI clients can drive it: dispatch mirrors the HTTP contract, and the
// catalog, pool, and transcript are readable as tools and resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/meridian-tools/meridian/pkg/catalog"
	"github.com/meridian-tools/meridian/pkg/dispatch"
	"github.com/meridian-tools/meridian/pkg/domain"
	"github.com/meridian-tools/meridian/pkg/pool"
	"github.com/meridian-tools/meridian/pkg/series"
	"github.com/meridian-tools/meridian/pkg/transcript"
)

// DispatchOutcome aligns with the HTTP adapter's response shape.
type DispatchOutcome struct {
	Op      string   `json:"op" jsonschema_description:"The dispatched operation"`
	Aborted bool     `json:"aborted" jsonschema_description:"True when the action was aborted without effect"`
	Derived []string `json:"derived,omitempty" jsonschema_description:"Variable IDs added to the pool"`

	Values     []float64          `json:"values,omitempty" jsonschema_description:"Numeric output of a statistic"`
	Regression *series.Regression `json:"regression,omitempty" jsonschema_description:"Linear regression output"`
}

// Server exposes the console as an MCP server.
type Server struct {
	dispatcher *dispatch.Dispatcher
	cat        *catalog.Catalog
	pool       *pool.Pool
	rec        *transcript.Recorder
	mcpServer  *server.MCPServer
}

// NewServer creates an MCP server over the console components.
func NewServer(d *dispatch.Dispatcher, cat *catalog.Catalog, p *pool.Pool, rec *transcript.Recorder, version string) *Server {
	s := &Server{
		dispatcher: d,
		cat:        cat,
		pool:       p,
		rec:        rec,
		mcpServer:  server.NewMCPServer("meridian-mcp", strings.TrimSpace(version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	dispatchTool := mcp.NewTool("dispatch",
		mcp.WithDescription("Dispatch one catalog operation over a selection of pooled variables."),
		mcp.WithString("op", mcp.Required(), mcp.Description("Operation ID, e.g. \"bounds.yearly\" or \"stat.mean\"")),
		mcp.WithString("selection", mcp.Required(), mcp.Description("JSON array or comma-separated list of variable IDs")),
		mcp.WithString("choices", mcp.Description("JSON object of named choices for a statistic action")),
		mcp.WithOutputSchema[DispatchOutcome](),
	)
	s.mcpServer.AddTool(dispatchTool, mcp.NewStructuredToolHandler(s.handleDispatch))

	s.mcpServer.AddTool(mcp.NewTool("list_catalog",
		mcp.WithDescription("Get the full action catalog: menus, labels, operation IDs, and choice declarations."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.cat.Menus())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("list_variables",
		mcp.WithDescription("List the IDs of every variable in the pool."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.pool.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_variable",
		mcp.WithDescription("Get one pooled variable: values, time axis, bounds."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Variable ID")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		v, err := s.pool.Get(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(v)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_transcript",
		mcp.WithDescription("Get the session's teaching commands as a rendered Markdown script."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entries, err := s.rec.Entries(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("transcript failed: %v", err)), nil
		}
		return mcp.NewToolResultText(transcript.Render(s.rec.SessionID(), entries)), nil
	})
}

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DispatchOutcome, error) {
	opStr, _ := args["op"].(string)
	selStr, _ := args["selection"].(string)

	sel, err := parseSelection(selStr)
	if err != nil {
		return DispatchOutcome{}, err
	}

	res, err := s.dispatcher.Dispatch(ctx, domain.OpID(opStr), sel)
	if err != nil {
		return DispatchOutcome{}, fmt.Errorf("dispatch failed: %w", err)
	}

	out := DispatchOutcome{Op: string(res.Op), Aborted: res.Aborted, Derived: res.Derived}
	if res.Stat != nil {
		if choicesStr, ok := args["choices"].(string); ok && choicesStr != "" {
			var choices map[string]any
			if err := json.Unmarshal([]byte(choicesStr), &choices); err != nil {
				return DispatchOutcome{}, fmt.Errorf("invalid choices: %w", err)
			}
			for name, value := range choices {
				res.Stat.SetChoice(name, value)
			}
		}
		statOut, err := res.Stat.Execute(ctx)
		if err != nil {
			return DispatchOutcome{}, fmt.Errorf("statistic failed: %w", err)
		}
		out.Values = statOut.Values
		out.Regression = statOut.Regression
	}
	return out, nil
}

// parseSelection accepts a JSON array or a comma-separated list.
func parseSelection(raw string) (domain.Selection, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var sel domain.Selection
		if err := json.Unmarshal([]byte(raw), &sel); err != nil {
			return nil, fmt.Errorf("invalid selection: %w", err)
		}
		return sel, nil
	}
	var sel domain.Selection
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			sel = append(sel, part)
		}
	}
	return sel, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("meridian://catalog", "Action Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.cat.Menus())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "meridian://catalog",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
