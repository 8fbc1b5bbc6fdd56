package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/quiver-mcp/quiver/pkg/cluster"
	"github.com/quiver-mcp/quiver/pkg/config"
	"github.com/quiver-mcp/quiver/pkg/logger"
	"github.com/quiver-mcp/quiver/pkg/ratelimit"
	"github.com/quiver-mcp/quiver/pkg/versions"
)

// Server is the quiver MCP server: the MCP protocol endpoint plus a small
// read-only HTTP surface for health and discovery.
type Server struct {
	handler    *Handler
	mcpServer  *server.MCPServer
	httpServer *http.Server
}

// New creates the server from the loaded configuration. The cluster registry
// and rate limiter are constructed here, once, and shared by every tool
// invocation for the process lifetime.
func New(cfg *config.Config) *Server {
	registry := cluster.NewRegistry(cfg.ClusterConfig(), cfg.Clusters)
	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	handler := NewHandler(registry, limiter)

	versionInfo := versions.GetVersionInfo()
	mcpServer := server.NewMCPServer(
		"quiver-mcp",
		versionInfo.Version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)
	registerTools(mcpServer, handler)

	// Tool handlers run on the request context, so a client disconnect
	// cancels the in-flight backend call instead of leaving it to the
	// client timeout.
	streamableServer := server.NewStreamableHTTPServer(
		mcpServer,
		server.WithEndpointPath("/mcp"),
	)

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		limits := limiter.Describe()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"version":       versionInfo,
			"activeCluster": registry.Active(),
			"clusters":      registry.List(),
			"rateLimit": map[string]any{
				"maxRequests": limits.MaxRequests,
				"windowMs":    limits.Window.Milliseconds(),
			},
		})
	})
	r.Handle("/mcp", streamableServer)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
	}

	return &Server{
		handler:    handler,
		mcpServer:  mcpServer,
		httpServer: httpServer,
	}
}

// Start starts the MCP server and blocks until it stops.
func (s *Server) Start() error {
	logger.Infof("Starting quiver MCP server on http://%s/mcp", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the MCP server.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down MCP server...")
	return s.httpServer.Shutdown(ctx)
}

// clusterSelectorSchema merges the shared cluster selector properties into a
// tool's input schema properties.
func clusterSelectorSchema(props map[string]interface{}) map[string]interface{} {
	merged := map[string]interface{}{
		"clusterName": map[string]interface{}{
			"type":        "string",
			"description": "Name of a registered cluster to target (mutually exclusive with clusterUrl)",
		},
		"clusterUrl": map[string]interface{}{
			"type":        "string",
			"description": "URL of an ad-hoc cluster to target (mutually exclusive with clusterName)",
		},
		"clusterApiKey": map[string]interface{}{
			"type":        "string",
			"description": "Optional API key used with clusterUrl",
		},
	}
	for k, v := range props {
		merged[k] = v
	}
	return merged
}

// registerTools registers all MCP tools with the server
func registerTools(mcpServer *server.MCPServer, handler *Handler) {
	mcpServer.AddTool(mcp.Tool{
		Name:        "qdrant_list_collections",
		Description: "List all collections on a Qdrant cluster",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: clusterSelectorSchema(map[string]interface{}{}),
		},
	}, handler.ListCollections)

	mcpServer.AddTool(mcp.Tool{
		Name:        "qdrant_collection_info",
		Description: "Get detailed information about a collection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: clusterSelectorSchema(map[string]interface{}{
				"collectionName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the collection",
				},
			}),
			Required: []string{"collectionName"},
		},
	}, handler.CollectionInfo)

	mcpServer.AddTool(mcp.Tool{
		Name:        "qdrant_create_collection",
		Description: "Create a collection with the given vector configuration",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: clusterSelectorSchema(map[string]interface{}{
				"collectionName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the collection to create",
				},
				"vectorSize": map[string]interface{}{
					"type":        "integer",
					"description": "Dimensionality of the vectors stored in the collection",
				},
				"distance": map[string]interface{}{
					"type":        "string",
					"description": "Distance metric: Cosine (default), Euclid, Dot or Manhattan",
					"enum":        []string{"Cosine", "Euclid", "Dot", "Manhattan"},
				},
			}),
			Required: []string{"collectionName", "vectorSize"},
		},
	}, handler.CreateCollection)

	mcpServer.AddTool(mcp.Tool{
		Name:        "qdrant_delete_collection",
		Description: "Delete a collection and all of its points",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: clusterSelectorSchema(map[string]interface{}{
				"collectionName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the collection to delete",
				},
			}),
			Required: []string{"collectionName"},
		},
	}, handler.DeleteCollection)

	mcpServer.AddTool(mcp.Tool{
		Name:        "qdrant_upsert_points",
		Description: "Insert or update points in a collection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: clusterSelectorSchema(map[string]interface{}{
				"collectionName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the collection",
				},
				"points": map[string]interface{}{
					"type":        "array",
					"description": "Points to upsert, each with an id, a vector and an optional payload",
					"items": map[string]interface{}{
						"type": "object",
					},
				},
			}),
			Required: []string{"collectionName", "points"},
		},
	}, handler.UpsertPoints)

	mcpServer.AddTool(mcp.Tool{
		Name:        "qdrant_query_points",
		Description: "Run a similarity search against a collection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: clusterSelectorSchema(map[string]interface{}{
				"collectionName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the collection",
				},
				"vector": map[string]interface{}{
					"type":        "array",
					"description": "Query vector",
					"items":       map[string]interface{}{"type": "number"},
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (default 10)",
				},
				"filter": map[string]interface{}{
					"type":        "object",
					"description": "Optional filter expression, forwarded to the backend verbatim",
				},
			}),
			Required: []string{"collectionName", "vector"},
		},
	}, handler.QueryPoints)

	mcpServer.AddTool(mcp.Tool{
		Name:        "qdrant_delete_points",
		Description: "Delete points from a collection by ID",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: clusterSelectorSchema(map[string]interface{}{
				"collectionName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the collection",
				},
				"ids": map[string]interface{}{
					"type":        "array",
					"description": "Point IDs to delete (integers or UUID strings)",
				},
			}),
			Required: []string{"collectionName", "ids"},
		},
	}, handler.DeletePoints)

	mcpServer.AddTool(mcp.Tool{
		Name: "qdrant_scroll_points",
		Description: "Page through the points of a collection. Returns a cursor while more " +
			"data remains; pass it back to resume the scan in a later call.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: clusterSelectorSchema(map[string]interface{}{
				"collectionName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the collection (required unless cursor is given)",
				},
				"cursor": map[string]interface{}{
					"type":        "string",
					"description": "Opaque cursor from a previous call; overrides all other parameters",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Page size (default 10)",
				},
				"offset": map[string]interface{}{
					"description": "Backend-native offset to start from",
				},
				"filter": map[string]interface{}{
					"type":        "object",
					"description": "Optional filter expression, forwarded to the backend verbatim",
				},
				"withPayload": map[string]interface{}{
					"type":        "boolean",
					"description": "Include payloads in the results (default true)",
				},
				"withVector": map[string]interface{}{
					"type":        "boolean",
					"description": "Include vectors in the results (default false)",
				},
			}),
		},
	}, handler.ScrollPoints)

	mcpServer.AddTool(mcp.Tool{
		Name:        "qdrant_list_clusters",
		Description: "List all registered clusters and the active one",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handler.ListClusters)

	mcpServer.AddTool(mcp.Tool{
		Name:        "qdrant_use_cluster",
		Description: "Switch the active cluster used when calls omit a cluster selector",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"clusterName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the cluster to make active",
				},
			},
			Required: []string{"clusterName"},
		},
	}, handler.UseCluster)

	mcpServer.AddTool(mcp.Tool{
		Name:        "qdrant_register_cluster",
		Description: "Register an ad-hoc cluster by URL and return its stable derived name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "Base URL of the cluster",
				},
				"apiKey": map[string]interface{}{
					"type":        "string",
					"description": "Optional API key for the cluster",
				},
			},
			Required: []string{"url"},
		},
	}, handler.RegisterCluster)

	mcpServer.AddTool(mcp.Tool{
		Name:        "qdrant_capabilities",
		Description: "Report server version, rate limits and known clusters",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handler.Capabilities)
}
