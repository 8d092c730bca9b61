package serpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avanishm/jobdigest/internal/job"
	"github.com/avanishm/jobdigest/internal/provider"

	"go.uber.org/zap"
)

func testCriteria() *job.SearchCriteria {
	return &job.SearchCriteria{
		Titles:   []string{"VP of Engineering"},
		Location: "Chicago, IL",
	}
}

func newTestClient(server *httptest.Server) *Client {
	client := New("test-key", zap.NewNop())
	client.APIURL = server.URL
	client.HTTPClient = server.Client()
	return client
}

func TestFetchCollectsAndRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("engine") != "google_jobs" {
			t.Errorf("unexpected engine parameter: %s", r.URL.Query().Get("engine"))
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("expected the api key to be sent")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"jobs_results": [
				{
					"title": "VP of Engineering",
					"company_name": "Acme Robotics",
					"location": "Chicago, IL",
					"detected_extensions": {"salary": "$300K", "posted_at": "2 days ago"}
				},
				{
					"company_name": "No Title Corp"
				}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	result, err := client.Fetch(context.Background(), testCriteria())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Postings.Len() != 1 {
		t.Fatalf("expected 1 posting, got %d", result.Postings.Len())
	}

	if result.Rejected != 1 {
		t.Fatalf("expected 1 rejected record, got %d", result.Rejected)
	}

	posting := result.Postings.Items[0]
	if posting.Company != "Acme Robotics" || posting.SalaryEstimate == nil {
		t.Fatalf("unexpected posting: %+v", posting)
	}
}

func TestFetchRemoteVariant(t *testing.T) {
	requests := 0
	remoteRequests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("ltype") == remoteListingType {
			remoteRequests++
		}
		w.Write([]byte(`{"jobs_results": []}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	criteria := testCriteria()
	criteria.IncludeRemote = true

	if _, err := client.Fetch(context.Background(), criteria); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if requests != 2 || remoteRequests != 1 {
		t.Fatalf("expected a located and a remote query, got %d requests (%d remote)", requests, remoteRequests)
	}
}

func TestFetchStatusMapping(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		expected provider.Kind
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, expected: provider.KindAuth},
		{name: "forbidden", status: http.StatusForbidden, expected: provider.KindAuth},
		{name: "rate limited", status: http.StatusTooManyRequests, expected: provider.KindQuota},
		{name: "server error", status: http.StatusInternalServerError, expected: provider.KindNetwork},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			client := newTestClient(server)

			_, err := client.Fetch(context.Background(), testCriteria())
			if err == nil {
				t.Fatalf("expected an error for status %d", tc.status)
			}

			var providerErr *provider.Error
			if !errors.As(err, &providerErr) {
				t.Fatalf("expected a provider error, got %T", err)
			}

			if providerErr.Kind != tc.expected {
				t.Fatalf("expected kind %s, got %s", tc.expected, providerErr.Kind)
			}
		})
	}
}

func TestFetchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error": "Your searches for the month are exhausted."}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.Fetch(context.Background(), testCriteria())
	if err == nil {
		t.Fatalf("expected an error from the api error field")
	}

	var providerErr *provider.Error
	if !errors.As(err, &providerErr) || providerErr.Kind != provider.KindMalformed {
		t.Fatalf("expected a malformed-kind error, got %v", err)
	}
}

func TestFetchPartialQueryFailure(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{
			"jobs_results": [
				{"title": "CTO", "company_name": "Acme"}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	criteria := &job.SearchCriteria{
		Titles: []string{
			"VP of Engineering", "Head of Engineering", "CTO",
			"Director of Engineering", "VP of Technology",
		},
		Location: "Chicago, IL",
	}

	result, err := client.Fetch(context.Background(), criteria)
	if err != nil {
		t.Fatalf("expected the surviving query to carry the run: %v", err)
	}

	if result.Postings.Len() != 1 {
		t.Fatalf("expected 1 posting from the second query, got %d", result.Postings.Len())
	}
}
