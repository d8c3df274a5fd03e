// Package retrieval indexes session documents and ranks them against a
// question by embedding similarity.
package retrieval

import (
	"context"
	"errors"
)

var ErrUnknownHandle = errors.New("unknown retrieval handle")

// Handle names an indexed collection.
type Handle string

type Document struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// Retriever is the contract the session machine depends on. Search results
// are ranked best first and callers keep that order.
type Retriever interface {
	Index(ctx context.Context, collectionID string, docs []Document) (Handle, error)
	Search(ctx context.Context, h Handle, query string, k int) ([]Document, error)
	Drop(ctx context.Context, h Handle) error
}
