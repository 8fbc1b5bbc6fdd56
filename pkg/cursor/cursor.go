// Package cursor implements the opaque resumable-pagination token used by
// the scroll tool.
//
// A cursor is a pure value: base64url-encoded JSON holding the cluster name,
// the collection, and the exact next-page request to issue. Nothing is stored
// server-side; the client carries the token between otherwise stateless tool
// invocations. Because only a cluster *name* is captured, a scan begun
// against a dynamically registered cluster cannot be resumed after a process
// restart; decoding then resolves to an unknown name and fails loudly rather
// than misrouting to the wrong backend.
package cursor

import (
	"encoding/base64"
	"encoding/json"

	qerr "github.com/quiver-mcp/quiver/pkg/errors"
	"github.com/quiver-mcp/quiver/pkg/qdrant"
)

// ScrollCursor is the state needed to resume a paged scan. Request.Offset
// must already be advanced to the next page's starting point when the cursor
// is encoded.
type ScrollCursor struct {
	Cluster    string               `json:"cluster"`
	Collection string               `json:"collection"`
	Request    qdrant.ScrollRequest `json:"request"`
}

// Encode serializes the cursor into an opaque token.
func Encode(c ScrollCursor) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", qerr.NewInvalidCursorError("failed to encode cursor", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode parses an opaque token back into a cursor. A token that is not
// validly encoded, does not parse, or lacks the required fields fails with an
// invalid-cursor error. It is never silently defaulted to a fresh scan:
// restarting from scratch on a corrupted token would duplicate or skip
// records without the caller noticing.
func Decode(token string) (ScrollCursor, error) {
	var c ScrollCursor

	if token == "" {
		return c, qerr.NewInvalidCursorError("cursor must not be empty", nil)
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return c, qerr.NewInvalidCursorError("cursor is not valid base64", err)
	}

	if err := json.Unmarshal(data, &c); err != nil {
		return c, qerr.NewInvalidCursorError("cursor payload is not valid", err)
	}

	if c.Cluster == "" || c.Collection == "" {
		return ScrollCursor{}, qerr.NewInvalidCursorError("cursor payload is incomplete", nil)
	}

	return c, nil
}
