package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize      = 16
	defaultConcurrency    = 4
	defaultMaxCollections = 256
)

type entry struct {
	doc    Document
	vector []float32
}

type collection struct {
	entries  []entry
	lastUsed time.Time
}

// VectorIndex keeps one in-memory collection per handle and ranks by
// cosine similarity. Past maxCollections the least recently used
// collection is evicted; searching it afterwards yields ErrUnknownHandle.
type VectorIndex struct {
	embedder       Embedder
	batchSize      int
	concurrency    int
	maxCollections int

	mu          sync.Mutex
	collections map[Handle]*collection
}

func NewVectorIndex(e Embedder) *VectorIndex {
	return &VectorIndex{
		embedder:       e,
		batchSize:      defaultBatchSize,
		concurrency:    defaultConcurrency,
		maxCollections: defaultMaxCollections,
		collections:    make(map[Handle]*collection),
	}
}

// WithMaxCollections caps how many collections stay resident.
func (x *VectorIndex) WithMaxCollections(n int) *VectorIndex {
	if n > 0 {
		x.maxCollections = n
	}
	return x
}

// Index embeds docs in parallel batches and replaces any collection that
// already uses collectionID.
func (x *VectorIndex) Index(ctx context.Context, collectionID string, docs []Document) (Handle, error) {
	if collectionID == "" {
		return "", fmt.Errorf("collection id is required")
	}

	entries := make([]entry, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.concurrency)

	for start := 0; start < len(docs); start += x.batchSize {
		start := start
		end := min(start+x.batchSize, len(docs))
		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, d := range docs[start:end] {
				texts = append(texts, d.Text)
			}
			vectors, err := x.embedder.Embed(gctx, texts)
			if err != nil {
				return err
			}
			if len(vectors) != len(texts) {
				return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
			}
			for i, v := range vectors {
				entries[start+i] = entry{doc: docs[start+i], vector: v}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("failed to index collection %s: %w", collectionID, err)
	}

	h := Handle(collectionID)
	x.mu.Lock()
	x.collections[h] = &collection{entries: entries, lastUsed: time.Now()}
	x.evictLocked()
	x.mu.Unlock()
	return h, nil
}

func (x *VectorIndex) evictLocked() {
	for len(x.collections) > x.maxCollections {
		var oldest Handle
		var oldestAt time.Time
		for h, c := range x.collections {
			if oldest == "" || c.lastUsed.Before(oldestAt) {
				oldest, oldestAt = h, c.lastUsed
			}
		}
		delete(x.collections, oldest)
	}
}

// Search returns up to k documents, most similar first. Ties keep index
// order.
func (x *VectorIndex) Search(ctx context.Context, h Handle, query string, k int) ([]Document, error) {
	x.mu.Lock()
	c, ok := x.collections[h]
	if ok {
		c.lastUsed = time.Now()
	}
	x.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	entries := c.entries
	if k <= 0 || len(entries) == 0 {
		return []Document{}, nil
	}

	vectors, err := x.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for query", len(vectors))
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(entries))
	for i, e := range entries {
		ranked[i] = scored{idx: i, score: cosine(vectors[0], e.vector)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]Document, 0, min(k, len(ranked)))
	for _, r := range ranked[:min(k, len(ranked))] {
		out = append(out, entries[r.idx].doc)
	}
	return out, nil
}

func (x *VectorIndex) Drop(_ context.Context, h Handle) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.collections[h]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	delete(x.collections, h)
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
