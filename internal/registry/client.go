package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/daniyal-rahman/ncfd/internal/config"
	"github.com/daniyal-rahman/ncfd/internal/ratelimit"
	"github.com/daniyal-rahman/ncfd/internal/trial"
)

// Client pages through the registry's listing endpoint (§4.1, §6).
type Client struct {
	httpClient *http.Client
	baseURL    string
	pageSize   int
	limiter    *ratelimit.Limiter
	breaker    *gobreaker.CircuitBreaker
	maxRetries int
	maxBackoff time.Duration
}

// New builds a Client from the loaded registry configuration.
func New(cfg config.RegistryConfig) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "registry",
		MaxRequests: 5,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    cfg.BaseURL,
		pageSize:   cfg.PageSize,
		limiter:    ratelimit.NewLimiter(cfg.RequestsPerMin/60.0, cfg.Burst),
		breaker:    breaker,
		maxRetries: cfg.MaxRetries,
		maxBackoff: cfg.MaxBackoff,
	}
}

// listResponse is the registry's page envelope (§6).
type listResponse struct {
	Studies       []trial.Raw `json:"studies"`
	NextPageToken string      `json:"nextPageToken"`
}

// StudyIterator is the lazy finite sequence IterateStudies produces
// (§4.1). Call Next until it returns false, then check Err.
type StudyIterator struct {
	c         *Client
	since     string
	pageSize  int
	pageToken string
	buf       []trial.Raw
	idx       int
	started   bool
	done      bool
	err       error
}

// IterateStudies produces a lazy sequence over every study matching the
// since-date server filter, terminating when the server reports no
// next-page token (§4.1).
func (c *Client) IterateStudies(since string, pageSize int) *StudyIterator {
	if pageSize <= 0 {
		pageSize = c.pageSize
	}
	return &StudyIterator{c: c, since: since, pageSize: pageSize}
}

// Next advances the iterator, fetching additional pages as needed. It
// returns (record, true) while records remain, or (nil, false) at EOF
// or on error — callers must inspect Err() after a false return.
func (it *StudyIterator) Next(ctx context.Context) (trial.Raw, bool) {
	for it.idx >= len(it.buf) {
		if it.done {
			return nil, false
		}
		if it.started && it.pageToken == "" {
			it.done = true
			return nil, false
		}
		it.started = true

		page, next, err := it.c.fetchPage(ctx, it.since, it.pageSize, it.pageToken)
		if err != nil {
			it.err = err
			it.done = true
			return nil, false
		}
		it.buf = page
		it.idx = 0
		it.pageToken = next
		if next == "" {
			it.done = len(it.buf) == 0
		}
		if len(it.buf) == 0 && next == "" {
			return nil, false
		}
	}
	v := it.buf[it.idx]
	it.idx++
	return v, true
}

// Err returns the terminal error, if Next stopped early due to a
// PermanentFetch or an exhausted TransientFetch retry budget.
func (it *StudyIterator) Err() error { return it.err }

// fetchPage retrieves one page, applying the registry's retry/backoff
// and rate-limit/circuit-breaker policy (§4.1, §5).
func (c *Client) fetchPage(ctx context.Context, since string, pageSize int, pageToken string) ([]trial.Raw, string, error) {
	u := c.buildURL(since, pageSize, pageToken)

	var attempt int
	for {
		if err := c.limiter.Wait(ctx, "registry"); err != nil {
			return nil, "", TransientFetch("registry", "rate limiter wait cancelled", err)
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.doRequest(ctx, u)
		})
		if err == nil {
			resp := result.(*listResponse)
			return resp.Studies, resp.NextPageToken, nil
		}

		if retryAfter, isRateLimited := asRateLimited(err); isRateLimited {
			select {
			case <-time.After(retryAfter):
			case <-ctx.Done():
				return nil, "", TransientFetch("registry", "context cancelled during rate-limit wait", ctx.Err())
			}
			continue // 429 waits do not count against the retry budget
		}

		var perm *permanentFetchSentinel
		if asPermanent(err, &perm) {
			return nil, "", PermanentFetch("registry", "non-retryable registry response", err)
		}

		attempt++
		if attempt > c.maxRetries {
			return nil, "", TransientFetch("registry", fmt.Sprintf("exhausted %d retries", c.maxRetries), err)
		}
		backoff := time.Duration(math.Min(math.Pow(2, float64(attempt)), c.maxBackoff.Seconds())) * time.Second
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, "", TransientFetch("registry", "context cancelled during backoff", ctx.Err())
		}
	}
}

func (c *Client) buildURL(since string, pageSize int, pageToken string) string {
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(pageSize))
	if since != "" {
		q.Set("query.term", fmt.Sprintf("AREA[LastUpdatePostDate]RANGE[%s,MAX]", since))
	}
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	return fmt.Sprintf("%s/studies?%s", c.baseURL, q.Encode())
}

type rateLimitedSentinel struct{ retryAfter time.Duration }

func (e *rateLimitedSentinel) Error() string { return "rate limited" }

type permanentFetchSentinel struct{ status int }

func (e *permanentFetchSentinel) Error() string { return fmt.Sprintf("permanent fetch failure: status %d", e.status) }

func asRateLimited(err error) (time.Duration, bool) {
	if e, ok := err.(*rateLimitedSentinel); ok {
		return e.retryAfter, true
	}
	return 0, false
}

func asPermanent(err error, out **permanentFetchSentinel) bool {
	if e, ok := err.(*permanentFetchSentinel); ok {
		*out = e
		return true
	}
	return false
}

func (c *Client) doRequest(ctx context.Context, u string) (*listResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err // network failure, treated as transient by the retry loop
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &rateLimitedSentinel{retryAfter: retryAfterDuration(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("registry returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, &permanentFetchSentinel{status: resp.StatusCode}
	}

	var out listResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &permanentFetchSentinel{status: resp.StatusCode}
	}
	return &out, nil
}

func retryAfterDuration(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
