package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiver-mcp/quiver/pkg/cursor"
	"github.com/quiver-mcp/quiver/pkg/qdrant"
)

// newScrollBackend serves a collection of total points with sequential integer
// IDs, paging through next_page_offset the way the real backend does.
func newScrollBackend(t *testing.T, total int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/docs/points/scroll", r.URL.Path)

		var req qdrant.ScrollRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		start := 0
		if off, ok := req.Offset.(float64); ok {
			start = int(off)
		}
		end := start + req.Limit
		if end > total {
			end = total
		}

		points := make([]map[string]any, 0, end-start)
		for i := start; i < end; i++ {
			points = append(points, map[string]any{
				"id":      i,
				"payload": map[string]any{"seq": i},
			})
		}

		result := map[string]any{"points": points}
		if end < total {
			result["next_page_offset"] = end
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result, "status": "ok", "time": 0.001})
	}))
}

func scrollOnce(t *testing.T, h *Handler, args map[string]any) map[string]any {
	t.Helper()
	res, err := h.ScrollPoints(context.Background(), newToolRequest(args))
	require.NoError(t, err)
	return structuredResult(t, res)
}

func TestScrollPoints_FullScan(t *testing.T) {
	t.Parallel()

	backend := newScrollBackend(t, 150)
	defer backend.Close()

	h := newTestHandler(backend.URL, 100)

	seen := make(map[int]bool)
	collect := func(payload map[string]any) int {
		points, ok := payload["points"].([]qdrant.Point)
		require.True(t, ok)
		for _, p := range points {
			id := int(p.ID.(float64))
			assert.False(t, seen[id], "duplicate point %d", id)
			seen[id] = true
		}
		return len(points)
	}

	// Page 1: fresh start.
	page := scrollOnce(t, h, map[string]any{"collectionName": "docs", "limit": 64})
	assert.Equal(t, 64, collect(page))
	token1, ok := page["cursor"].(string)
	require.True(t, ok, "page 1 must return a cursor")
	assert.NotNil(t, page["nextPageOffset"])

	// Page 2: resumed from the cursor alone.
	page = scrollOnce(t, h, map[string]any{"cursor": token1})
	assert.Equal(t, 64, collect(page))
	token2, ok := page["cursor"].(string)
	require.True(t, ok, "page 2 must return a cursor")
	assert.NotEqual(t, token1, token2)

	// Page 3: the remaining 22 points and no cursor.
	page = scrollOnce(t, h, map[string]any{"cursor": token2})
	assert.Equal(t, 22, collect(page))
	_, hasCursor := page["cursor"]
	assert.False(t, hasCursor, "final page must not return a cursor")
	_, hasOffset := page["nextPageOffset"]
	assert.False(t, hasOffset)

	// No gaps: every record was seen exactly once.
	assert.Len(t, seen, 150)
	for i := 0; i < 150; i++ {
		assert.True(t, seen[i], "missing point %d", i)
	}
}

func TestScrollPoints_CursorPreservesFilter(t *testing.T) {
	t.Parallel()

	var gotFilters []qdrant.Filter
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req qdrant.ScrollRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotFilters = append(gotFilters, req.Filter)

		result := map[string]any{"points": []map[string]any{{"id": len(gotFilters)}}}
		if len(gotFilters) == 1 {
			result["next_page_offset"] = 1
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result, "status": "ok", "time": 0.001})
	}))
	defer backend.Close()

	h := newTestHandler(backend.URL, 100)

	filter := map[string]any{
		"must": []any{map[string]any{"key": "kind", "match": map[string]any{"value": "doc"}}},
	}
	page := scrollOnce(t, h, map[string]any{
		"collectionName": "docs",
		"limit":          1,
		"filter":         filter,
	})
	token := page["cursor"].(string)

	scrollOnce(t, h, map[string]any{"cursor": token})

	require.Len(t, gotFilters, 2)
	assert.Equal(t, gotFilters[0], gotFilters[1])
}

func TestScrollPoints_RequiresCollectionOrCursor(t *testing.T) {
	t.Parallel()

	h := newTestHandler("http://localhost:6333", 100)
	res, err := h.ScrollPoints(context.Background(), newToolRequest(map[string]any{}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, res), "collectionName is required")
}

func TestScrollPoints_InvalidCursor(t *testing.T) {
	t.Parallel()

	h := newTestHandler("http://localhost:6333", 100)

	tests := []string{
		"garbage",
		"!!!!",
		"eyJub3QiOiJhIGN1cnNvciJ9",
	}
	for _, token := range tests {
		res, err := h.ScrollPoints(context.Background(), newToolRequest(map[string]any{
			"cursor": token,
		}))
		require.NoError(t, err)
		assert.Contains(t, errorText(t, res), "cursor")
	}
}

func TestScrollPoints_CursorForUnknownCluster(t *testing.T) {
	t.Parallel()

	h := newTestHandler("http://localhost:6333", 100)

	// A cursor minted by a previous process against a dynamically registered
	// backend that this process never saw.
	token, err := cursor.Encode(cursor.ScrollCursor{
		Cluster:    "dyn-aaaaaaaaaaaa",
		Collection: "docs",
		Request:    qdrant.ScrollRequest{Limit: 64, Offset: float64(64)},
	})
	require.NoError(t, err)

	res, err := h.ScrollPoints(context.Background(), newToolRequest(map[string]any{
		"cursor": token,
	}))
	require.NoError(t, err)

	msg := errorText(t, res)
	assert.Contains(t, msg, "dyn-aaaaaaaaaaaa")
	assert.Contains(t, msg, "cannot be resumed across restarts")
}

func TestScrollPoints_ConflictingSelectors(t *testing.T) {
	t.Parallel()

	h := newTestHandler("http://localhost:6333", 100)
	res, err := h.ScrollPoints(context.Background(), newToolRequest(map[string]any{
		"collectionName": "docs",
		"clusterName":    "prod",
		"clusterUrl":     "https://prod.example:6333",
	}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, res), "mutually exclusive")
}

func TestScrollPoints_RateLimited(t *testing.T) {
	t.Parallel()

	backend := newScrollBackend(t, 10)
	defer backend.Close()

	h := newTestHandler(backend.URL, 1)

	scrollOnce(t, h, map[string]any{"collectionName": "docs", "limit": 5})

	res, err := h.ScrollPoints(context.Background(), newToolRequest(map[string]any{
		"collectionName": "docs",
		"limit":          5,
	}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, res), "rate limit exceeded")
}
