// Package datasource defines where candidate files come from. A Source
// enumerates references, opens them, and derives the collection key for each.
package datasource

import (
	"context"
	"fmt"
	"io"
)

// Ref identifies one candidate file within a source.
type Ref struct {
	// Locator is the full path (local) or object key (remote).
	Locator string
	// Ext is the lower-cased extension including the dot, e.g. ".csv".
	Ext string
}

func (r Ref) String() string { return r.Locator }

// Source enumerates and fetches candidate files. Implementations are
// read-only, and List returns the same order for an unchanged location.
type Source interface {
	List(ctx context.Context) ([]Ref, error)
	Open(ctx context.Context, ref Ref) (io.ReadCloser, error)
	Key(ref Ref) string
}

// Access error codes.
const (
	CodeNotFound         = "not_found"
	CodePermissionDenied = "permission_denied"
	CodeAuthInvalid      = "auth_invalid"
	CodeUnreachable      = "unreachable"
	CodeTimeout          = "timeout"
	CodeUnknown          = "unknown"
)

// AccessError reports a location that could not be listed or a file that
// could not be read.
type AccessError struct {
	Op      string // "list" or "open"
	Locator string
	Code    string
	Err     error
}

func (e *AccessError) Error() string {
	if e.Code != "" && e.Code != CodeUnknown {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Locator, e.Code, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Locator, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }
