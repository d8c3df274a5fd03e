package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docs() []Document {
	return []Document{
		{Text: "Cloud migration to AWS with Kubernetes", Metadata: map[string]string{"title": "Acme"}},
		{Text: "Brand marketing campaign for social media", Metadata: map[string]string{"title": "Globex"}},
		{Text: "Database tuning and PostgreSQL support", Metadata: map[string]string{"title": "Initech"}},
	}
}

func titles(ds []Document) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Metadata["title"])
	}
	return out
}

func TestVectorIndex_SearchRanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex(NewHashEmbedder(256))

	h, err := idx.Index(ctx, "session-1", docs())
	require.NoError(t, err)

	got, err := idx.Search(ctx, h, "which vendor handles the postgresql database?", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Initech", got[0].Metadata["title"])

	top, err := idx.Search(ctx, h, "marketing campaign", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Globex"}, titles(top))
}

func TestVectorIndex_KLargerThanCollection(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex(NewHashEmbedder(64))
	h, err := idx.Index(ctx, "c", docs()[:2])
	require.NoError(t, err)

	got, err := idx.Search(ctx, h, "anything", 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	none, err := idx.Search(ctx, h, "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestVectorIndex_UnknownHandle(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex(NewHashEmbedder(64))

	_, err := idx.Search(ctx, "missing", "q", 3)
	assert.ErrorIs(t, err, ErrUnknownHandle)

	h, err := idx.Index(ctx, "c", docs())
	require.NoError(t, err)
	require.NoError(t, idx.Drop(ctx, h))
	_, err = idx.Search(ctx, h, "q", 3)
	assert.ErrorIs(t, err, ErrUnknownHandle)
	assert.ErrorIs(t, idx.Drop(ctx, h), ErrUnknownHandle)
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("quota exceeded")
}

func TestVectorIndex_IndexFailure(t *testing.T) {
	idx := NewVectorIndex(failingEmbedder{})

	_, err := idx.Index(context.Background(), "c", docs())
	assert.ErrorContains(t, err, "quota exceeded")

	_, err = idx.Index(context.Background(), "", docs())
	assert.Error(t, err)
}

func TestVectorIndex_ManyBatches(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex(NewHashEmbedder(128))

	many := make([]Document, 0, 50)
	for i := 0; i < 50; i++ {
		many = append(many, Document{Text: fmt.Sprintf("document number %d token%d", i, i), Metadata: map[string]string{"title": fmt.Sprint(i)}})
	}
	h, err := idx.Index(ctx, "big", many)
	require.NoError(t, err)

	got, err := idx.Search(ctx, h, "token42", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"42"}, titles(got))
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(32)
	a, err := e.Embed(context.Background(), []string{"Same text", ""})
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), []string{"same TEXT", ""})
	require.NoError(t, err)

	assert.Equal(t, a[0], b[0])
	assert.InDelta(t, 1.0, cosine(a[0], b[0]), 1e-6)
	assert.Zero(t, cosine(a[1], a[0]))
}

func TestOpenAIEmbedder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "text-embedding-3-small",
			"data": []map[string]any{
				{"object": "embedding", "index": 1, "embedding": []float32{0, 1}},
				{"object": "embedding", "index": 0, "embedding": []float32{1, 0}},
			},
		})
	}))
	defer server.Close()

	e := NewOpenAIEmbedder("key", server.URL+"/v1", "")
	got, err := e.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, got)
}

func TestVectorIndex_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex(NewHashEmbedder(64)).WithMaxCollections(2)

	a, err := idx.Index(ctx, "a", docs())
	require.NoError(t, err)
	b, err := idx.Index(ctx, "b", docs())
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	_, err = idx.Search(ctx, a, "cloud", 1)
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	_, err = idx.Index(ctx, "c", docs())
	require.NoError(t, err)

	_, err = idx.Search(ctx, b, "cloud", 1)
	assert.ErrorIs(t, err, ErrUnknownHandle)
	_, err = idx.Search(ctx, a, "cloud", 1)
	assert.NoError(t, err)
}
