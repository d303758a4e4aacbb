package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/stoik/phishcatch/internal/domain"
)

const (
	requestTimeout = 3 * time.Second
	// maxCachedHosts bounds the cache between expiry runs
	maxCachedHosts = 10000
)

type classifyResponse struct {
	Type string `json:"type"`
}

// RemoteClassifier implements ports.DomainClassifier against an external list service.
//
// Answers are cached per host for a short TTL to absorb bursts of events from one page.
// Failures are never cached. Close stops the cache's expiry loop.
type RemoteClassifier struct {
	baseURL string
	client  *http.Client
	cache   *ttlcache.Cache[string, domain.DomainType]
	stop    sync.Once
}

// NewRemoteClassifier creates a classifier for the service at baseURL. A zero ttl disables caching.
func NewRemoteClassifier(baseURL string, ttl time.Duration) *RemoteClassifier {
	return newRemoteClassifier(baseURL, ttl, maxCachedHosts)
}

func newRemoteClassifier(baseURL string, ttl time.Duration, capacity uint64) *RemoteClassifier {
	c := &RemoteClassifier{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
	}
	if ttl > 0 {
		c.cache = ttlcache.New[string, domain.DomainType](
			ttlcache.WithTTL[string, domain.DomainType](ttl),
			ttlcache.WithCapacity[string, domain.DomainType](capacity),
			ttlcache.WithDisableTouchOnHit[string, domain.DomainType](),
		)
		go c.cache.Start()
	}
	return c
}

// Close stops the cache expiry loop
func (c *RemoteClassifier) Close() error {
	if c.cache != nil {
		c.stop.Do(c.cache.Stop)
	}
	return nil
}

// Classify returns the DomainType the service reports for host
func (c *RemoteClassifier) Classify(ctx context.Context, host string) (domain.DomainType, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return domain.DomainIgnored, fmt.Errorf("invalid host %q", host)
	}

	if t, ok := c.cached(host); ok {
		return t, nil
	}

	endpoint := c.baseURL + "/classify?host=" + url.QueryEscape(host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.DomainIgnored, fmt.Errorf("failed to build classify request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.DomainIgnored, fmt.Errorf("failed to call classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.DomainIgnored, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var body classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.DomainIgnored, fmt.Errorf("failed to decode classifier response: %w", err)
	}

	t := domain.ParseDomainType(body.Type)
	c.store(host, t)
	return t, nil
}

func (c *RemoteClassifier) cached(host string) (domain.DomainType, bool) {
	if c.cache == nil {
		return "", false
	}
	item := c.cache.Get(host)
	if item == nil {
		return "", false
	}
	return item.Value(), true
}

func (c *RemoteClassifier) store(host string, t domain.DomainType) {
	if c.cache == nil {
		return
	}
	c.cache.Set(host, t, ttlcache.DefaultTTL)
}
