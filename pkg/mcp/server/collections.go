package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/quiver-mcp/quiver/pkg/qdrant"
)

// listCollectionsArgs holds the arguments for listing collections
type listCollectionsArgs struct {
	clusterSelector
}

// ListCollections lists all collections on the selected cluster
func (h *Handler) ListCollections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := &listCollectionsArgs{}
	if err := request.BindArguments(args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse arguments: %v", err)), nil
	}

	client, profile, err := h.clientFor("qdrant_list_collections", args.clusterSelector)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	collections, err := client.ListCollections(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list collections: %v", err)), nil
	}

	return mcp.NewToolResultStructuredOnly(map[string]any{
		"cluster":     profile.Name,
		"collections": collections,
	}), nil
}

// collectionInfoArgs holds the arguments for describing a collection
type collectionInfoArgs struct {
	clusterSelector
	CollectionName string `json:"collectionName"`
}

// CollectionInfo returns the backend's description of a collection
func (h *Handler) CollectionInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := &collectionInfoArgs{}
	if err := request.BindArguments(args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse arguments: %v", err)), nil
	}
	if args.CollectionName == "" {
		return mcp.NewToolResultError("collectionName is required"), nil
	}

	client, profile, err := h.clientFor("qdrant_collection_info", args.clusterSelector)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := client.GetCollection(ctx, args.CollectionName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get collection info: %v", err)), nil
	}

	return mcp.NewToolResultStructuredOnly(map[string]any{
		"cluster": profile.Name,
		"info":    info,
	}), nil
}

// createCollectionArgs holds the arguments for creating a collection
type createCollectionArgs struct {
	clusterSelector
	CollectionName string `json:"collectionName"`
	VectorSize     uint64 `json:"vectorSize"`
	Distance       string `json:"distance,omitempty"`
}

// CreateCollection creates a collection with the given vector configuration
func (h *Handler) CreateCollection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := &createCollectionArgs{}
	if err := request.BindArguments(args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse arguments: %v", err)), nil
	}
	if args.CollectionName == "" {
		return mcp.NewToolResultError("collectionName is required"), nil
	}
	if args.VectorSize == 0 {
		return mcp.NewToolResultError("vectorSize must be a positive integer"), nil
	}

	distance := qdrant.Distance(args.Distance)
	if distance == "" {
		distance = qdrant.DistanceCosine
	}

	client, profile, err := h.clientFor("qdrant_create_collection", args.clusterSelector)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := qdrant.VectorParams{Size: args.VectorSize, Distance: distance}
	if err := client.CreateCollection(ctx, args.CollectionName, params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create collection: %v", err)), nil
	}

	return mcp.NewToolResultStructuredOnly(map[string]any{
		"cluster":    profile.Name,
		"collection": args.CollectionName,
		"status":     "created",
	}), nil
}

// deleteCollectionArgs holds the arguments for deleting a collection
type deleteCollectionArgs struct {
	clusterSelector
	CollectionName string `json:"collectionName"`
}

// DeleteCollection removes a collection and all of its points
func (h *Handler) DeleteCollection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := &deleteCollectionArgs{}
	if err := request.BindArguments(args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse arguments: %v", err)), nil
	}
	if args.CollectionName == "" {
		return mcp.NewToolResultError("collectionName is required"), nil
	}

	client, profile, err := h.clientFor("qdrant_delete_collection", args.clusterSelector)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteCollection(ctx, args.CollectionName); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete collection: %v", err)), nil
	}

	return mcp.NewToolResultStructuredOnly(map[string]any{
		"cluster":    profile.Name,
		"collection": args.CollectionName,
		"status":     "deleted",
	}), nil
}
