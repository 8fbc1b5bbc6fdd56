package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/quiver-mcp/quiver/pkg/qdrant"
)

// upsertPointsArgs holds the arguments for upserting points
type upsertPointsArgs struct {
	clusterSelector
	CollectionName string         `json:"collectionName"`
	Points         []qdrant.Point `json:"points"`
}

// UpsertPoints inserts or updates points in a collection
func (h *Handler) UpsertPoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := &upsertPointsArgs{}
	if err := request.BindArguments(args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse arguments: %v", err)), nil
	}
	if args.CollectionName == "" {
		return mcp.NewToolResultError("collectionName is required"), nil
	}
	if len(args.Points) == 0 {
		return mcp.NewToolResultError("points must contain at least one point"), nil
	}

	client, profile, err := h.clientFor("qdrant_upsert_points", args.clusterSelector)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.UpsertPoints(ctx, args.CollectionName, args.Points); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to upsert points: %v", err)), nil
	}

	return mcp.NewToolResultStructuredOnly(map[string]any{
		"cluster":    profile.Name,
		"collection": args.CollectionName,
		"upserted":   len(args.Points),
	}), nil
}

// queryPointsArgs holds the arguments for a similarity search
type queryPointsArgs struct {
	clusterSelector
	CollectionName string        `json:"collectionName"`
	Vector         []float32     `json:"vector"`
	Limit          int           `json:"limit,omitempty"`
	Filter         qdrant.Filter `json:"filter,omitempty"`
	WithPayload    *bool         `json:"withPayload,omitempty"`
}

// QueryPoints runs a similarity search against a collection
func (h *Handler) QueryPoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := &queryPointsArgs{}
	if err := request.BindArguments(args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse arguments: %v", err)), nil
	}
	if args.CollectionName == "" {
		return mcp.NewToolResultError("collectionName is required"), nil
	}
	if len(args.Vector) == 0 {
		return mcp.NewToolResultError("vector must not be empty"), nil
	}

	limit := args.Limit
	if limit <= 0 {
		limit = 10
	}
	withPayload := args.WithPayload
	if withPayload == nil {
		t := true
		withPayload = &t
	}

	client, profile, err := h.clientFor("qdrant_query_points", args.clusterSelector)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	points, err := client.QueryPoints(ctx, args.CollectionName, qdrant.QueryRequest{
		Query:       args.Vector,
		Limit:       limit,
		Filter:      args.Filter,
		WithPayload: withPayload,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to query points: %v", err)), nil
	}

	return mcp.NewToolResultStructuredOnly(map[string]any{
		"cluster":    profile.Name,
		"collection": args.CollectionName,
		"results":    points,
	}), nil
}

// deletePointsArgs holds the arguments for deleting points
type deletePointsArgs struct {
	clusterSelector
	CollectionName string `json:"collectionName"`
	IDs            []any  `json:"ids"`
}

// DeletePoints removes points from a collection by ID
func (h *Handler) DeletePoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := &deletePointsArgs{}
	if err := request.BindArguments(args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse arguments: %v", err)), nil
	}
	if args.CollectionName == "" {
		return mcp.NewToolResultError("collectionName is required"), nil
	}
	if len(args.IDs) == 0 {
		return mcp.NewToolResultError("ids must contain at least one point ID"), nil
	}

	client, profile, err := h.clientFor("qdrant_delete_points", args.clusterSelector)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeletePoints(ctx, args.CollectionName, args.IDs); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete points: %v", err)), nil
	}

	return mcp.NewToolResultStructuredOnly(map[string]any{
		"cluster":    profile.Name,
		"collection": args.CollectionName,
		"deleted":    len(args.IDs),
	}), nil
}
