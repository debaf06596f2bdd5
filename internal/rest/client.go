// Package rest implements the client for the Autotask REST API: zone
// resolution, authenticated paginated queries, and picklist metadata.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/kerkhofftech/autotask-sync/internal/config"
	aterrors "github.com/kerkhofftech/autotask-sync/internal/errors"
	"github.com/kerkhofftech/autotask-sync/internal/logging"
	"github.com/kerkhofftech/autotask-sync/internal/retry"
)

// Raw is one loosely-typed remote record as returned by the API.
type Raw map[string]any

// RemoteID extracts the record's integer identifier. The API returns ids as
// JSON numbers, which decode as float64.
func (r Raw) RemoteID() (int64, bool) {
	v, ok := r["id"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		id, err := n.Int64()
		return id, err == nil
	default:
		return 0, false
	}
}

// FieldInfo is entity field metadata from the entityInformation endpoint.
type FieldInfo struct {
	Name           string          `json:"name"`
	IsPickList     bool            `json:"isPickList"`
	PicklistValues []PicklistValue `json:"picklistValues"`
}

// PicklistValue is one enumeration entry of a picklist field.
type PicklistValue struct {
	Value          string `json:"value"`
	Label          string `json:"label"`
	IsDefaultValue bool   `json:"isDefaultValue"`
	SortOrder      int    `json:"sortOrder"`
	IsActive       bool   `json:"isActive"`
	IsSystem       bool   `json:"isSystem"`
}

// Client issues authenticated requests against the account's API zone.
type Client struct {
	creds       config.AutotaskConfig
	httpClient  *http.Client
	limiter     *rate.Limiter
	retryCfg    retry.Config
	zones       *ZoneCache
	zoneInfoURL string
}

// NewClient creates an API client. A nil zone cache falls back to the
// process-wide DefaultZoneCache.
func NewClient(cfg config.AutotaskConfig, retryCfg config.RetryConfig, zones *ZoneCache) *Client {
	if zones == nil {
		zones = DefaultZoneCache
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 3.0
	}
	return &Client{
		creds:      cfg,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		retryCfg: retry.Config{
			MaxAttempts:  retryCfg.MaxAttempts,
			InitialDelay: retryCfg.InitialDelay,
			MaxDelay:     retryCfg.MaxDelay,
			Multiplier:   retryCfg.Multiplier,
		},
		zones:       zones,
		zoneInfoURL: cfg.ZoneInfoURL,
	}
}

// queryResponse is one page of a query result.
type queryResponse struct {
	Items       []Raw `json:"items"`
	PageDetails struct {
		Count       int     `json:"count"`
		NextPageURL *string `json:"nextPageUrl"`
	} `json:"pageDetails"`
}

// Query fetches all records matching q for the given entity endpoint,
// transparently following server-supplied next-page URLs, and streams each
// raw record to emit. emit returning an error stops the iteration.
func (c *Client) Query(ctx context.Context, entity string, q Query, emit func(Raw) error) error {
	base, err := c.apiBase(ctx)
	if err != nil {
		return err
	}

	body, err := q.Body()
	if err != nil {
		return fmt.Errorf("failed to encode query for %s: %w", entity, err)
	}

	nextURL := fmt.Sprintf("%s/V1.0/%s/query", base, entity)
	method := http.MethodPost

	for nextURL != "" {
		respBody, err := c.do(ctx, method, nextURL, body)
		if err != nil {
			return err
		}

		var page queryResponse
		if err := json.Unmarshal(respBody, &page); err != nil {
			return fmt.Errorf("failed to parse %s query response: %w", entity, err)
		}

		for _, item := range page.Items {
			if err := emit(item); err != nil {
				return err
			}
		}

		nextURL = ""
		if page.PageDetails.NextPageURL != nil && *page.PageDetails.NextPageURL != "" {
			// Cursor pages are followed with GET; the filter is baked into
			// the server-supplied URL.
			nextURL = *page.PageDetails.NextPageURL
			method = http.MethodGet
			body = nil
		}
	}

	return nil
}

// Get fetches exactly one record by its remote identifier. A 404 surfaces
// as a typed not-found error so callers can detect upstream deletions.
func (c *Client) Get(ctx context.Context, entity string, id int64) (Raw, error) {
	base, err := c.apiBase(ctx)
	if err != nil {
		return nil, err
	}

	respBody, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/V1.0/%s/%d", base, entity, id), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Item  Raw   `json:"item"`
		Items []Raw `json:"items"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", entity, err)
	}
	if resp.Item != nil {
		return resp.Item, nil
	}
	if len(resp.Items) > 0 {
		return resp.Items[0], nil
	}
	return nil, aterrors.NewHTTPError(http.StatusNotFound, fmt.Sprintf("%s %d has no item payload", entity, id))
}

// EntityFields fetches the entity's field metadata, including picklist
// enumerations. Picklist endpoints are not paginated; a single call returns
// the complete enumeration.
func (c *Client) EntityFields(ctx context.Context, entity string) ([]FieldInfo, error) {
	base, err := c.apiBase(ctx)
	if err != nil {
		return nil, err
	}

	respBody, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/V1.0/%s/entityInformation/fields", base, entity), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Fields []FieldInfo `json:"fields"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse %s field metadata: %w", entity, err)
	}

	return resp.Fields, nil
}

// PicklistField fetches the enumeration values of one picklist field.
func (c *Client) PicklistField(ctx context.Context, entity, field string) ([]PicklistValue, error) {
	fields, err := c.EntityFields(ctx, entity)
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		if f.Name == field && f.IsPickList {
			return f.PicklistValues, nil
		}
	}
	return nil, fmt.Errorf("entity %s has no picklist field %q", entity, field)
}

// apiBase returns the account's API zone URL, resolving and caching it on
// first use. A failed lookup blocks every entity sync, so the resolution
// itself goes through the retry policy.
func (c *Client) apiBase(ctx context.Context) (string, error) {
	if cached := c.zones.Get(); cached != "" {
		return cached, nil
	}

	lookup := fmt.Sprintf("%s?user=%s", c.zoneInfoURL, url.QueryEscape(c.creds.Username))
	respBody, err := c.do(ctx, http.MethodGet, lookup, nil)
	if err != nil {
		return "", fmt.Errorf("zone lookup failed: %w", err)
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to parse zone information: %w", err)
	}
	if resp.URL == "" {
		return "", fmt.Errorf("zone information carried no url")
	}

	c.zones.Set(resp.URL)
	logging.FromContext(ctx).Info().Str("zone", c.zones.Get()).Msg("resolved API zone")
	return c.zones.Get(), nil
}

// do performs one HTTP call under the rate limiter and the retry policy.
// Transport failures and 5xx responses are retried with backoff; 4xx
// responses surface immediately as typed errors.
func (c *Client) do(ctx context.Context, method, reqURL string, body []byte) ([]byte, error) {
	logger := logging.FromContext(ctx)

	var respBody []byte
	err := retry.Do(ctx, c.retryCfg, aterrors.IsRetryable, func(ctx context.Context, attempt int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("UserName", c.creds.Username)
		req.Header.Set("Secret", c.creds.Secret)
		req.Header.Set("ApiIntegrationCode", c.creds.IntegrationCode)

		logger.Debug().Str("method", method).Str("url", reqURL).Int("attempt", attempt).Msg("autotask request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return aterrors.NewTransportError("request failed", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return aterrors.NewTransportError("failed to read response", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			httpErr := aterrors.NewHTTPError(resp.StatusCode, string(data))
			logger.Error().
				Int("status", resp.StatusCode).
				Str("url", reqURL).
				Str("body", string(data)).
				Msg("autotask request failed")
			return httpErr
		}

		respBody = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return respBody, nil
}
