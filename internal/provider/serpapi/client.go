// Package serpapi fetches postings from the SerpAPI Google Jobs engine, the
// primary search provider.
package serpapi

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
	apiURL       = "https://serpapi.com/search"
	providerName = "serpapi"
	// Max results per query the google_jobs engine returns in one page.
	resultsPerQuery = "20"
	// SerpAPI ltype value for remote-only listings.
	remoteListingType = "1"
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
	Jobs  []map[string]any `json:"jobs_results"`
	Error string           `json:"error"`
}

// Fetch runs one query per title group, plus a remote variant when the
// criteria include remote roles. Individual query failures are logged and
// skipped; the provider fails only when every query failed.
func (c *Client) Fetch(ctx context.Context, criteria *job.SearchCriteria) (*provider.Result, error) {
	result := &provider.Result{Postings: &job.Postings{}}

	var firstErr error
	for _, group := range criteria.TitleGroups() {
		query := criteria.Query(group)

		variants := []url.Values{c.params(query, criteria.Location, false)}
		if criteria.IncludeRemote {
			variants = append(variants, c.params(query, criteria.Location, true))
		}

		for _, params := range variants {
			raw, err := c.searchOnce(ctx, params)
			if err != nil {
				c.logger.Warn("serpapi query failed",
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

func (c *Client) params(query, location string, remote bool) url.Values {
	params := url.Values{}
	params.Set("engine", "google_jobs")
	params.Set("q", query)
	params.Set("location", location)
	params.Set("api_key", c.apiKey)
	params.Set("num", resultsPerQuery)
	if remote {
		params.Set("ltype", remoteListingType)
	}
	return params
}

func (c *Client) searchOnce(ctx context.Context, params url.Values) (*searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL, nil)
	if err != nil {
		return nil, provider.NewError(providerName, provider.KindNetwork, err)
	}
	req.URL.RawQuery = params.Encode()

	c.logger.Debug("serpapi request", zap.String("url", req.URL.Redacted()))

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

	if parsed.Error != "" {
		return nil, provider.NewError(providerName, provider.KindMalformed, fmt.Errorf("api error: %s", parsed.Error))
	}

	return &parsed, nil
}

func (c *Client) collect(raw *searchResponse, result *provider.Result) {
	for _, item := range raw.Jobs {
		var record rawJob

		cfg := &mapstructure.DecoderConfig{
			Result:  &record,
			TagName: "json",
		}
		decoder, _ := mapstructure.NewDecoder(cfg)
		if err := decoder.Decode(item); err != nil {
			c.logger.Debug("undecodable serpapi record", zap.Error(err))
			result.Rejected++
			continue
		}

		posting, err := record.Normalize()
		if err != nil {
			c.logger.Debug("rejecting serpapi record", zap.Error(err))
			result.Rejected++
			continue
		}

		result.Postings.Append(posting)
	}
}
