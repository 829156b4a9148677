package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gumruklab/gtip/internal/cache"
)

// CachedProvider wraps a provider with the layered response cache.
// Keys hash the attached document bytes, so re-running a batch over
// the same datasheets serves stored replies instead of re-billing.
// Advise calls are never cached; they are interactive by nature.
type CachedProvider struct {
	inner Provider
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedProvider wraps inner with c. A zero ttl uses the cache
// default.
func NewCachedProvider(inner Provider, c cache.Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{inner: inner, cache: c, ttl: ttl}
}

// Name returns the wrapped provider's name.
func (p *CachedProvider) Name() string { return p.inner.Name() }

// IsAvailable defers to the wrapped provider.
func (p *CachedProvider) IsAvailable(ctx context.Context) bool {
	return p.inner.IsAvailable(ctx)
}

// Classify serves a stored reply when the same documents were already
// classified with the same model.
func (p *CachedProvider) Classify(ctx context.Context, req ClassifyRequest) (*Classification, error) {
	key := p.key("classify", req.Model, req.Documents)

	if data, found := p.cache.Get(key); found {
		var c Classification
		if err := json.Unmarshal(data, &c); err == nil {
			return &c, nil
		}
		// Corrupt entry; fall through to a fresh call.
		_ = p.cache.Delete(key)
	}

	c, err := p.inner.Classify(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(c); err == nil {
		_ = p.cache.Set(key, data, p.ttl)
	}
	return c, nil
}

// Advise always calls through.
func (p *CachedProvider) Advise(ctx context.Context, req AdviseRequest) (*Advice, error) {
	return p.inner.Advise(ctx, req)
}

// ExtractProducts serves a stored inventory for already-seen documents.
func (p *CachedProvider) ExtractProducts(ctx context.Context, req ExtractRequest) ([]ExtractedProduct, error) {
	key := p.key("extract", req.Model, req.Documents)

	if data, found := p.cache.Get(key); found {
		var products []ExtractedProduct
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		_ = p.cache.Delete(key)
	}

	products, err := p.inner.ExtractProducts(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(products); err == nil {
		_ = p.cache.Set(key, data, p.ttl)
	}
	return products, nil
}

func (p *CachedProvider) key(task, model string, docs []Document) string {
	var content []byte
	for _, d := range docs {
		content = append(content, d.Data...)
		content = append(content, 0)
	}
	if model == "" {
		model = p.inner.Name()
	}
	return cache.ResponseKey(task, model, content)
}
