// Package catalog provides the product catalog client: an embedding-backed
// vector index answering free-text queries with ranked typed product records.
package catalog

import (
	"context"

	errx "github.com/salesvoice-poc/server/internal/core/error"
	logx "github.com/salesvoice-poc/server/pkg/logger"
)

// Config describes the catalog's embedding model and result size.
type Config struct {
	EmbeddingModel string `envconfig:"CATALOG_EMBEDDING_MODEL" default:"gemini-embedding-001"`
	TopK           int    `envconfig:"CATALOG_TOP_K" default:"4"`
}

// Client wraps the embedder and index behind the search contract the tool
// layer consumes.
type Client struct {
	embedder Embedder
	index    *Index
	topK     int
}

func NewClient(embedder Embedder, index *Index, topK int) *Client {
	if topK <= 0 {
		topK = 4
	}
	return &Client{embedder: embedder, index: index, topK: topK}
}

// Search embeds the query and returns the ranked matches. Backend failures
// propagate as catalog errors, never as silently empty results.
func (c *Client) Search(ctx context.Context, query string) ([]Product, error) {
	vector, err := c.embedder.Embed(ctx, query)
	if err != nil {
		logx.Error().Err(err).Str("query", query).Msg("catalog embedding failed")
		return nil, errx.WrapCatalog(err)
	}
	return c.index.Search(vector, c.topK), nil
}

// Seed populates the index with the sample inventory. It is idempotent: a
// non-empty index is left untouched. Must complete before the first request
// is served.
func (c *Client) Seed(ctx context.Context) error {
	if c.index.Count() > 0 {
		logx.Debug().Int("count", c.index.Count()).Msg("catalog already populated")
		return nil
	}

	for _, p := range sampleInventory {
		vector, err := c.embedder.Embed(ctx, p.Description)
		if err != nil {
			logx.Error().Err(err).Str("product_id", p.ID).Msg("catalog seed embedding failed")
			return errx.WrapCatalog(err)
		}
		c.index.Upsert(p, vector)
	}

	logx.Info().Int("count", c.index.Count()).Msg("catalog seeded")
	return nil
}
