package mcp

import (
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/propdoc/pkg/docpage"
	"github.com/gnana997/propdoc/pkg/mcplog"
	"github.com/gnana997/propdoc/pkg/metadata"
	"github.com/gnana997/propdoc/pkg/storyargs"
)

const serverVersion = "0.1.0-dev"

// defaultArgsCacheSize bounds the number of components whose story args are
// kept between calls.
const defaultArgsCacheSize = 256

// Server implements the MCP server for propdoc, exposing component metadata,
// story args and rendered API sections as tools.
type Server struct {
	mcpServer *server.MCPServer
	renderer  *docpage.Renderer
	logger    *mcplog.Logger // may be nil (call logging disabled)
	log       *slog.Logger

	mu    sync.RWMutex
	query *metadata.QueryService

	// argsCache maps display name -> built story args for the current query.
	argsCache *lru.Cache[string, *storyargs.Args]
}

// Config holds the optional collaborators of a Server.
type Config struct {
	// CacheSize bounds the story args cache (default 256).
	CacheSize int
	// CallLog records every tool call as JSONL when non-nil.
	CallLog *mcplog.Logger
	// Logger for diagnostics. If nil, uses slog.Default().
	Logger *slog.Logger
}

// NewServer creates a new MCP server backed by the given QueryService and Renderer.
func NewServer(qs *metadata.QueryService, r *docpage.Renderer, cfg Config) (*Server, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultArgsCacheSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	cache, err := lru.NewWithEvict(cfg.CacheSize, func(name string, _ *storyargs.Args) {
		cfg.Logger.Debug("story args evicted", "component", name)
	})
	if err != nil {
		return nil, fmt.Errorf("create story args cache: %w", err)
	}

	s := &Server{
		renderer:  r,
		logger:    cfg.CallLog,
		log:       cfg.Logger,
		query:     qs,
		argsCache: cache,
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if s.logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("propdoc", serverVersion, opts...)
	s.mcpServer.AddTools(
		server.ServerTool{Tool: listComponentsTool(), Handler: s.handleListComponents},
		server.ServerTool{Tool: searchComponentsTool(), Handler: s.handleSearchComponents},
		server.ServerTool{Tool: getComponentPropsTool(), Handler: s.handleGetComponentProps},
		server.ServerTool{Tool: getStoryArgsTool(), Handler: s.handleGetStoryArgs},
		server.ServerTool{Tool: renderComponentTool(), Handler: s.handleRenderComponent},
	)

	return s, nil
}

// Reload swaps in a freshly loaded QueryService and drops cached story args.
func (s *Server) Reload(qs *metadata.QueryService) {
	s.mu.Lock()
	s.query = qs
	s.argsCache.Purge()
	s.mu.Unlock()
	s.log.Info("metadata reloaded", "components", len(qs.Set.Components))
}

func (s *Server) currentQuery() *metadata.QueryService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// storyArgs returns the story args of comp, building them on a cache miss.
// Results for a component of a superseded QueryService are not cached.
func (s *Server) storyArgs(qs *metadata.QueryService, comp *metadata.ComponentMetadata) (*storyargs.Args, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	current := qs == s.query
	if current {
		if args, ok := s.argsCache.Get(comp.DisplayName); ok {
			return args, nil
		}
	}
	args, err := storyargs.Build(comp.Props)
	if err != nil {
		return nil, err
	}
	if current {
		s.argsCache.Add(comp.DisplayName, args)
	}
	return args, nil
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
