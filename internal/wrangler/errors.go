package wrangler

import (
	"fmt"

	"wrangle/internal/datasource"
)

// DuplicateKeyError is recorded for a reference whose derived key was
// already taken by an earlier reference in the same run.
type DuplicateKeyError struct {
	Key   string
	Ref   datasource.Ref
	First datasource.Ref
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("key %q from %s already loaded from %s", e.Key, e.Ref, e.First)
}

// PanicError is recorded for a reference whose decoder or transformer
// panicked.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic while processing file: %v", e.Value)
}

// Diagnostic records why one reference is missing from the collection.
type Diagnostic struct {
	Ref datasource.Ref
	Key string
	Err error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %v", d.Ref, d.Err)
}
