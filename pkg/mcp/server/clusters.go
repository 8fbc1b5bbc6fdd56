package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/quiver-mcp/quiver/pkg/versions"
)

// ListClusters lists all registered cluster profiles. Credentials are never
// included; the Profile JSON shape excludes them.
func (h *Handler) ListClusters(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultStructuredOnly(map[string]any{
		"activeCluster": h.registry.Active(),
		"clusters":      h.registry.List(),
	}), nil
}

// useClusterArgs holds the arguments for switching the active cluster
type useClusterArgs struct {
	ClusterName string `json:"clusterName"`
}

// UseCluster switches the active cluster used when tool calls omit a selector
func (h *Handler) UseCluster(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := &useClusterArgs{}
	if err := request.BindArguments(args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse arguments: %v", err)), nil
	}
	if args.ClusterName == "" {
		return mcp.NewToolResultError("clusterName is required"), nil
	}

	if err := h.registry.SetActive(args.ClusterName); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultStructuredOnly(map[string]any{
		"activeCluster": args.ClusterName,
	}), nil
}

// registerClusterArgs holds the arguments for dynamic cluster registration
type registerClusterArgs struct {
	URL    string `json:"url"`
	APIKey string `json:"apiKey,omitempty"`
}

// RegisterCluster registers a backend supplied as a bare URL and returns its
// stable derived name. Registration is idempotent per normalized URL.
func (h *Handler) RegisterCluster(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := &registerClusterArgs{}
	if err := request.BindArguments(args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse arguments: %v", err)), nil
	}

	// No backend call happens here, but each novel URL inserts into the
	// process-lifetime profile map, so registration is gated too. There is
	// no cluster yet to key on.
	if err := h.limiter.Consume("qdrant_register_cluster:-"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	name, err := h.registry.RegisterDynamic(args.URL, args.APIKey)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultStructuredOnly(map[string]any{
		"clusterName": name,
	}), nil
}

// Capabilities reports the server version, the configured rate limits and the
// known clusters for discovery by callers.
func (h *Handler) Capabilities(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limits := h.limiter.Describe()

	return mcp.NewToolResultStructuredOnly(map[string]any{
		"version": versions.GetVersionInfo(),
		"rateLimit": map[string]any{
			"maxRequests": limits.MaxRequests,
			"windowMs":    limits.Window.Milliseconds(),
		},
		"activeCluster": h.registry.Active(),
		"clusters":      h.registry.List(),
	}), nil
}
