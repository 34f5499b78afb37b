package catalog

import (
	"math"
	"sort"
	"sync"
)

// Index is an in-memory vector index over product descriptions. Ranking is
// cosine similarity, descending.
type Index struct {
	mu    sync.RWMutex
	items []indexedProduct
}

type indexedProduct struct {
	product Product
	vector  []float32
}

func NewIndex() *Index {
	return &Index{}
}

// Upsert inserts or replaces a product and its embedding, keyed by product id.
func (ix *Index) Upsert(p Product, vector []float32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for i := range ix.items {
		if ix.items[i].product.ID == p.ID {
			ix.items[i] = indexedProduct{product: p, vector: vector}
			return
		}
	}
	ix.items = append(ix.items, indexedProduct{product: p, vector: vector})
}

// Count returns the number of indexed products.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.items)
}

// Search returns the topK products ranked by cosine similarity to the query
// vector.
func (ix *Index) Search(vector []float32, topK int) []Product {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	type scored struct {
		product Product
		score   float64
	}

	results := make([]scored, 0, len(ix.items))
	for _, item := range ix.items {
		results = append(results, scored{
			product: item.product,
			score:   cosineSimilarity(vector, item.vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}

	products := make([]Product, len(results))
	for i, r := range results {
		products[i] = r.product
	}
	return products
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
