package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/salesvoice-poc/server/internal/core/error"
)

// fakeEmbedder maps known texts to fixed vectors and fails on demand.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func TestClientSearch(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"flagship camera phone": {1, 0, 0},
	}}
	ix := NewIndex()
	ix.Upsert(Product{ID: "match"}, []float32{1, 0.1, 0})
	ix.Upsert(Product{ID: "other"}, []float32{0, 1, 0})

	c := NewClient(emb, ix, 1)

	got, err := c.Search(context.Background(), "flagship camera phone")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "match", got[0].ID)
}

func TestClientSearchEmbeddingFailure(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("upstream down")}
	c := NewClient(emb, NewIndex(), 4)

	got, err := c.Search(context.Background(), "anything")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrCatalogUnavailable))
}

func TestClientSeed(t *testing.T) {
	emb := &fakeEmbedder{}
	ix := NewIndex()
	c := NewClient(emb, ix, 4)

	require.NoError(t, c.Seed(context.Background()))
	assert.Equal(t, len(sampleInventory), ix.Count())

	// Seeding again leaves the populated index untouched.
	callsAfterFirst := emb.calls
	require.NoError(t, c.Seed(context.Background()))
	assert.Equal(t, callsAfterFirst, emb.calls)
	assert.Equal(t, len(sampleInventory), ix.Count())
}

func TestClientSeedEmbeddingFailure(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("quota exceeded")}
	c := NewClient(emb, NewIndex(), 4)

	err := c.Seed(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrCatalogUnavailable))
}

func TestProductDealPrice(t *testing.T) {
	p := Product{MaxPrice: 1199, AllowedDiscount: 150}
	assert.Equal(t, 1049.0, p.DealPrice())
}
