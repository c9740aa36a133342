// Package integrations provides the network-fetch client handed to
// repository implementations.
//
// # Overview
//
// [Client] wraps net/http with the behavior every remote repository needs:
//
//   - Response caching through any [cache.Cache] backend, with a TTL
//   - Automatic retry with exponential backoff for transient failures
//   - Default headers (User-Agent, auth tokens) merged into each request
//   - Observability hooks for every request
//
// Registry-specific clients live in subpackages, such as [packagist].
//
// # Client Pattern
//
//	c, _ := cache.NewFileCache(dir)
//	client := integrations.NewClient(c, "packagist", 24*time.Hour, nil)
//
//	var resp p2Response
//	err := client.Cached(ctx, "monolog/monolog", false, &resp, func() error {
//	    return client.Get(ctx, url, &resp)
//	})
//
// [cache.Cache]: github.com/matzehuels/repoman/pkg/cache.Cache
// [packagist]: github.com/matzehuels/repoman/pkg/integrations/packagist
package integrations
