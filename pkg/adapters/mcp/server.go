package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/archsynth"
	"github.com/aretw0/archsynth/internal/logging"
	"github.com/aretw0/archsynth/internal/presentation/graph"
	"github.com/aretw0/archsynth/internal/presentation/tui"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/problem"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// SolveResponse is the structured result of the solve tool.
type SolveResponse struct {
	SnapshotID string        `json:"snapshot_id,omitempty" jsonschema_description:"ID of the stored snapshot"`
	Report     domain.Report `json:"report" jsonschema_description:"Outcome, statistics and chosen values"`
	Error      string        `json:"error,omitempty" jsonschema_description:"Set when the search did not succeed"`
}

// Service is what the MCP server exposes; *session.Manager implements it.
type Service interface {
	Solve(ctx context.Context, p *problem.Problem, backend, outputPath string) (*archsynth.Result, error)
	Load(ctx context.Context, id string) (*domain.Snapshot, error)
	List(ctx context.Context) ([]string, error)
}

// Server exposes solves and snapshots as MCP tools.
type Server struct {
	service   Service
	kinds     []string
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. kinds lists the engine
// kinds problems may use; it is published as a resource.
func NewServer(svc Service, kinds []string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		service:   svc,
		kinds:     kinds,
		logger:    logger,
		mcpServer: server.NewMCPServer("archsynth-mcp", strings.TrimSpace(archsynth.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	solveTool := mcp.NewTool("solve",
		mcp.WithDescription("Search a valid configuration for a problem given as YAML (layers, objects, steps and engines)."),
		mcp.WithString("problem", mcp.Required(), mcp.Description("Problem definition in YAML")),
		mcp.WithString("backend", mcp.Description("Dependency tracking backend: linear, topological or tree")),
		mcp.WithOutputSchema[SolveResponse](),
	)
	s.mcpServer.AddTool(solveTool, mcp.NewStructuredToolHandler(s.handleSolve))

	s.mcpServer.AddTool(mcp.NewTool("list_snapshots",
		mcp.WithDescription("List the IDs of stored search snapshots."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.service.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		if ids == nil {
			ids = []string{}
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("inspect_snapshot",
		mcp.WithDescription("Show a stored snapshot as a Markdown report, a Mermaid decision graph, a Mermaid layer graph or raw JSON."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Snapshot ID")),
		mcp.WithString("format", mcp.Enum("report", "decisions", "layer", "json"), mcp.Description("Output format (default report)")),
		mcp.WithString("layer", mcp.Description("Layer name, for format=layer")),
	), s.handleInspect)
}

func (s *Server) handleSolve(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SolveResponse, error) {
	source, _ := args["problem"].(string)
	backend, _ := args["backend"].(string)

	p, err := problem.Parse([]byte(source))
	if err != nil {
		return SolveResponse{}, fmt.Errorf("invalid problem: %w", err)
	}

	res, err := s.service.Solve(ctx, p, backend, "")
	if res == nil {
		return SolveResponse{}, err
	}
	resp := SolveResponse{SnapshotID: res.SnapshotID, Report: res.Report}
	if err != nil {
		s.logger.Warn("MCP solve did not succeed", "problem", p.Name, "err", err)
		resp.Error = err.Error()
	}
	return resp, nil
}

func (s *Server) handleInspect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	format := request.GetString("format", "report")

	snap, err := s.service.Load(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}

	switch format {
	case "report":
		return mcp.NewToolResultText(tui.ReportMarkdown(snap.Report)), nil
	case "decisions":
		return mcp.NewToolResultText(graph.DecisionMermaid(snap.Decisions, nil)), nil
	case "layer":
		name := request.GetString("layer", "")
		l, ok := snap.Layer(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("layer %q not found", name)), nil
		}
		return mcp.NewToolResultText(graph.LayerMermaid(l)), nil
	case "json":
		jsonBytes, err := json.Marshal(snap)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}
	return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("archsynth://engines", "Available engine kinds",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(s.kinds)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "archsynth://engines",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
