// Package server provides the MCP (Model Context Protocol) server that
// exposes a Qdrant-style vector database as callable tools.
package server

import (
	"fmt"

	"github.com/quiver-mcp/quiver/pkg/cluster"
	"github.com/quiver-mcp/quiver/pkg/qdrant"
	"github.com/quiver-mcp/quiver/pkg/ratelimit"

	qerr "github.com/quiver-mcp/quiver/pkg/errors"
)

// Handler handles MCP tool requests. It owns the cluster registry and the
// rate limiter for the lifetime of the process; both are constructed once at
// serve time rather than living in package-level state.
type Handler struct {
	registry *cluster.Registry
	limiter  *ratelimit.Limiter
}

// NewHandler creates a new tool handler.
func NewHandler(registry *cluster.Registry, limiter *ratelimit.Limiter) *Handler {
	return &Handler{
		registry: registry,
		limiter:  limiter,
	}
}

// clusterSelector is the cluster selection input shared by every tool.
// A call may supply clusterName XOR clusterUrl (+ optional clusterApiKey);
// supplying both is a caller error.
type clusterSelector struct {
	ClusterName   string `json:"clusterName,omitempty"`
	ClusterURL    string `json:"clusterUrl,omitempty"`
	ClusterAPIKey string `json:"clusterApiKey,omitempty"`
}

// selectCluster applies the selector contract and returns the profile name to
// resolve: the explicit name, the stable name of a dynamically registered
// URL, or "" meaning the active cluster.
func (h *Handler) selectCluster(sel clusterSelector) (string, error) {
	if sel.ClusterName != "" && sel.ClusterURL != "" {
		return "", qerr.NewConflictingClusterSelectorsError(
			"clusterName and clusterUrl are mutually exclusive")
	}
	if sel.ClusterURL != "" {
		return h.registry.RegisterDynamic(sel.ClusterURL, sel.ClusterAPIKey)
	}
	return sel.ClusterName, nil
}

// clientFor resolves the selector to a profile, gates the invocation through
// the rate limiter, and returns the cached backend client. The limiter key
// is tool:cluster, so independent clusters never starve each other.
func (h *Handler) clientFor(tool string, sel clusterSelector) (*qdrant.Client, cluster.Profile, error) {
	name, err := h.selectCluster(sel)
	if err != nil {
		return nil, cluster.Profile{}, err
	}

	profile, err := h.registry.Resolve(name)
	if err != nil {
		return nil, cluster.Profile{}, err
	}

	if err := h.limiter.Consume(fmt.Sprintf("%s:%s", tool, profile.Name)); err != nil {
		return nil, cluster.Profile{}, err
	}

	client, err := h.registry.Client(profile.Name)
	if err != nil {
		return nil, cluster.Profile{}, err
	}

	return client, profile, nil
}
