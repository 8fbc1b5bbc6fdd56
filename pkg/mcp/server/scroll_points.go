package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/quiver-mcp/quiver/pkg/cursor"
	"github.com/quiver-mcp/quiver/pkg/qdrant"

	qerr "github.com/quiver-mcp/quiver/pkg/errors"
)

// scrollToolName is also the limiter key prefix for this tool.
const scrollToolName = "qdrant_scroll_points"

// scrollPointsArgs holds the arguments for a paged collection scan.
// A call supplies either cursor (resume) or collectionName plus optional
// paging parameters (fresh start). When a cursor is present its embedded
// cluster, collection and request take precedence over everything else.
type scrollPointsArgs struct {
	clusterSelector
	Cursor         string        `json:"cursor,omitempty"`
	CollectionName string        `json:"collectionName,omitempty"`
	Limit          int           `json:"limit,omitempty"`
	Offset         any           `json:"offset,omitempty"`
	Filter         qdrant.Filter `json:"filter,omitempty"`
	WithPayload    *bool         `json:"withPayload,omitempty"`
	WithVector     *bool         `json:"withVector,omitempty"`
}

// ScrollPoints pages through a collection. When more data remains, the
// response carries an opaque cursor that resumes the scan in a later,
// otherwise stateless invocation.
func (h *Handler) ScrollPoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := &scrollPointsArgs{}
	if err := request.BindArguments(args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse arguments: %v", err)), nil
	}

	clusterName, collection, pageReq, errResult := h.scrollPageRequest(args)
	if errResult != nil {
		return errResult, nil
	}

	profile, err := h.registry.Resolve(clusterName)
	if err != nil {
		if args.Cursor != "" && qerr.IsUnknownCluster(err) {
			// The cursor names a cluster this process doesn't know, which
			// happens when a scan started against a dynamically registered
			// backend and the process restarted. Failing here beats
			// resolving to the wrong backend.
			return mcp.NewToolResultError(fmt.Sprintf(
				"cursor references cluster %q which is not registered in this process; "+
					"restart the scan (dynamically registered clusters cannot be resumed across restarts): %v",
				clusterName, err)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.limiter.Consume(fmt.Sprintf("%s:%s", scrollToolName, profile.Name)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := h.registry.Client(profile.Name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	page, err := client.ScrollPoints(ctx, collection, pageReq)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to scroll points: %v", err)), nil
	}

	result := map[string]any{
		"cluster":    profile.Name,
		"collection": collection,
		"points":     page.Points,
	}

	// A cursor is returned iff the backend signaled more data. The next
	// request is the current one with the offset advanced to the backend's
	// native next-page token.
	if page.NextPageOffset != nil {
		next := pageReq
		next.Offset = page.NextPageOffset

		token, err := cursor.Encode(cursor.ScrollCursor{
			Cluster:    profile.Name,
			Collection: collection,
			Request:    next,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to encode cursor: %v", err)), nil
		}

		result["nextPageOffset"] = page.NextPageOffset
		result["cursor"] = token
	}

	return mcp.NewToolResultStructuredOnly(result), nil
}

// scrollPageRequest computes the cluster, collection and page request for one
// scroll invocation, from either a decoded cursor or fresh-start parameters.
// On caller error it returns a ready-made failure result.
func (h *Handler) scrollPageRequest(args *scrollPointsArgs) (string, string, qdrant.ScrollRequest, *mcp.CallToolResult) {
	if args.Cursor != "" {
		c, err := cursor.Decode(args.Cursor)
		if err != nil {
			return "", "", qdrant.ScrollRequest{}, mcp.NewToolResultError(err.Error())
		}
		return c.Cluster, c.Collection, c.Request, nil
	}

	if args.CollectionName == "" {
		return "", "", qdrant.ScrollRequest{},
			mcp.NewToolResultError("collectionName is required when no cursor is given")
	}

	clusterName, err := h.selectCluster(args.clusterSelector)
	if err != nil {
		return "", "", qdrant.ScrollRequest{}, mcp.NewToolResultError(err.Error())
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

	return clusterName, args.CollectionName, qdrant.ScrollRequest{
		Filter:      args.Filter,
		Limit:       limit,
		Offset:      args.Offset,
		WithPayload: withPayload,
		WithVector:  args.WithVector,
	}, nil
}
