// Package jsearch fetches postings from the JSearch API on RapidAPI, the
// fallback search provider.
package jsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avanishm/jobdigest/internal/job"
	"github.com/avanishm/jobdigest/internal/provider"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	apiURL       = "https://jsearch.p.rapidapi.com/search"
	apiHost      = "jsearch.p.rapidapi.com"
	providerName = "jsearch"
)

type Client struct {
	apiKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
}

func New(apiKey string, logger *zap.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		APIURL: apiURL,
	}
}

func (c *Client) Name() string { return providerName }

type searchResponse struct {
	Status string           `json:"status"`
	Data   []map[string]any `json:"data"`
}

// Fetch runs a located query per title group, plus a remote-only variant when
// the criteria include remote roles. Per-query failures are logged and
// skipped unless nothing at all succeeded.
func (c *Client) Fetch(ctx context.Context, criteria *job.SearchCriteria) (*provider.Result, error) {
	result := &provider.Result{Postings: &job.Postings{}}

	var firstErr error
	for _, group := range criteria.TitleGroups() {
		query := criteria.Query(group)

		variants := []url.Values{c.params(query+" in "+criteria.Location, false)}
		if criteria.IncludeRemote {
			variants = append(variants, c.params(query, true))
		}

		for _, params := range variants {
			raw, err := c.searchOnce(ctx, params)
			if err != nil {
				c.logger.Warn("jsearch query failed",
					zap.String("query", query),
					zap.Error(err),
				)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			c.collect(raw, result)
		}
	}

	if result.Postings.Len() == 0 && firstErr != nil {
		return nil, firstErr
	}

	return result, nil
}

func (c *Client) params(query string, remoteOnly bool) url.Values {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	params.Set("num_pages", "2")
	params.Set("date_posted", "week")
	params.Set("remote_jobs_only", fmt.Sprintf("%t", remoteOnly))
	return params
}

func (c *Client) searchOnce(ctx context.Context, params url.Values) (*searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL, nil)
	if err != nil {
		return nil, provider.NewError(providerName, provider.KindNetwork, err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", apiHost)
	req.URL.RawQuery = params.Encode()

	c.logger.Debug("jsearch request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, provider.NewError(providerName, provider.KindNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, provider.NewError(providerName, provider.KindAuth, fmt.Errorf("bad status: %s", resp.Status))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, provider.NewError(providerName, provider.KindQuota, fmt.Errorf("bad status: %s", resp.Status))
	case resp.StatusCode != http.StatusOK:
		return nil, provider.NewError(providerName, provider.KindNetwork, fmt.Errorf("bad status: %s", resp.Status))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewError(providerName, provider.KindNetwork, err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, provider.NewError(providerName, provider.KindMalformed, err)
	}

	return &parsed, nil
}

func (c *Client) collect(raw *searchResponse, result *provider.Result) {
	for _, item := range raw.Data {
		var record rawJob

		cfg := &mapstructure.DecoderConfig{
			Result:           &record,
			TagName:          "json",
			WeaklyTypedInput: true,
		}
		decoder, _ := mapstructure.NewDecoder(cfg)
		if err := decoder.Decode(item); err != nil {
			c.logger.Debug("undecodable jsearch record", zap.Error(err))
			result.Rejected++
			continue
		}

		posting, err := record.Normalize()
		if err != nil {
			c.logger.Debug("rejecting jsearch record", zap.Error(err))
			result.Rejected++
			continue
		}

		result.Postings.Append(posting)
	}
}
