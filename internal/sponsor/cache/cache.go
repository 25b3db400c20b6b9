// Package cache provides a Redis-backed cache for the resolver's
// candidate-company sets, the way the teacher fronts its hot read paths
// with a shared cache rather than hitting Postgres on every call.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/daniyal-rahman/ncfd/internal/sponsor"
)

// DefaultTTL bounds how long a cached candidate set survives in Redis
// before Get reports a miss for it.
const DefaultTTL = 15 * time.Minute

// CandidateCache stores candidate-company sets in Redis, keyed on the
// sponsor text the caller passes. It does not call a CompanyStore itself,
// and the resolver does not use it.
type CandidateCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

// New constructs a CandidateCache with DefaultTTL.
func New(client *redis.Client) *CandidateCache {
	return &CandidateCache{Redis: client, TTL: DefaultTTL}
}

func cacheKey(sponsorText string) string {
	return fmt.Sprintf("sponsor:candidates:%s", sponsorText)
}

// Get returns the cached candidate set for sponsorText, if present.
func (c *CandidateCache) Get(ctx context.Context, sponsorText string) ([]sponsor.Company, bool, error) {
	raw, err := c.Redis.Get(ctx, cacheKey(sponsorText)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var companies []sponsor.Company
	if err := json.Unmarshal(raw, &companies); err != nil {
		return nil, false, err
	}
	return companies, true, nil
}

// Set stores the candidate set for sponsorText for TTL.
func (c *CandidateCache) Set(ctx context.Context, sponsorText string, companies []sponsor.Company) error {
	raw, err := json.Marshal(companies)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, cacheKey(sponsorText), raw, c.TTL).Err()
}

// Invalidate drops the cached entry for sponsorText. No review or label
// path calls it.
func (c *CandidateCache) Invalidate(ctx context.Context, sponsorText string) error {
	return c.Redis.Del(ctx, cacheKey(sponsorText)).Err()
}
