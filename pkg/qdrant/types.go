package qdrant

import "encoding/json"

// Distance is the vector distance metric used by a collection.
type Distance string

// Distance metrics supported by the backend.
const (
	DistanceCosine    Distance = "Cosine"
	DistanceEuclid    Distance = "Euclid"
	DistanceDot       Distance = "Dot"
	DistanceManhattan Distance = "Manhattan"
)

// VectorParams describes the vector configuration of a collection.
type VectorParams struct {
	Size     uint64   `json:"size"`
	Distance Distance `json:"distance"`
}

// Filter is an opaque backend filter expression. The server forwards it
// verbatim; the backend owns its semantics.
type Filter map[string]any

// Point is a single record in a collection.
type Point struct {
	// ID is a point identifier: an unsigned integer or a UUID string.
	ID      any            `json:"id"`
	Vector  []float32      `json:"vector,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ScoredPoint is a point returned from a similarity query.
type ScoredPoint struct {
	ID      any            `json:"id"`
	Score   float32        `json:"score"`
	Payload map[string]any `json:"payload,omitempty"`
	Vector  []float32      `json:"vector,omitempty"`
}

// ScrollRequest is one page request of a collection scan.
//
// Offset is the backend-native resume token: nil for the first page, and the
// backend's next_page_offset verbatim afterwards. It must round-trip through
// JSON unchanged, which is why it is typed as any rather than an integer
// (the backend may hand back UUID string offsets).
type ScrollRequest struct {
	Filter      Filter `json:"filter,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      any    `json:"offset,omitempty"`
	WithPayload *bool  `json:"with_payload,omitempty"`
	WithVector  *bool  `json:"with_vector,omitempty"`
}

// ScrollResult is one page of a collection scan. NextPageOffset is nil when
// the scan is complete.
type ScrollResult struct {
	Points         []Point `json:"points"`
	NextPageOffset any     `json:"next_page_offset,omitempty"`
}

// QueryRequest is a similarity search request.
type QueryRequest struct {
	Query       []float32 `json:"query"`
	Limit       int       `json:"limit,omitempty"`
	Filter      Filter    `json:"filter,omitempty"`
	WithPayload *bool     `json:"with_payload,omitempty"`
}

// CollectionInfo is the raw backend description of a collection. The server
// does not interpret it beyond forwarding.
type CollectionInfo map[string]any

// envelope is the standard backend response wrapper.
type envelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
	Time   float64         `json:"time"`
}

// collectionsResult is the payload of the list-collections operation.
type collectionsResult struct {
	Collections []struct {
		Name string `json:"name"`
	} `json:"collections"`
}

// queryResult is the payload of the query-points operation.
type queryResult struct {
	Points []ScoredPoint `json:"points"`
}
