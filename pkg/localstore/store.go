// Package localstore provides the client-owned durable key/value storage the
// storefront keeps its cart and order draft in. It plays the role browser
// localStorage plays for the web client: a handful of named documents with
// last-writer-wins semantics and no cross-session coordination.
package localstore

import (
	"context"
	"errors"
)

// Well-known document keys.
const (
	KeyCart       = "cart"
	KeyOrderDraft = "order_draft"
)

// ErrNotFound is returned by Load when no document exists under the key.
var ErrNotFound = errors.New("localstore: key not found")

// Store is the persistence port. Save fully replaces the document stored at
// key; there is no partial-update primitive. Clear on a missing key is a
// no-op.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
}
