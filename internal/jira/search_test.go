package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedSearch serves /search/jql from pages keyed by the incoming token.
func pagedSearch(t *testing.T, pages map[string]SearchResponse) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/3/search/jql" {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		page, ok := pages[req.NextPageToken]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"errorMessages": []string{"unknown token " + req.NextPageToken},
			})
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func issues(keys ...string) []Issue {
	out := make([]Issue, 0, len(keys))
	for _, k := range keys {
		out = append(out, Issue{ID: k, Key: k, Fields: NewFields(map[string]any{"summary": k})})
	}
	return out
}

func issueKeys(is []Issue) []string {
	keys := make([]string, 0, len(is))
	for _, i := range is {
		keys = append(keys, i.Key)
	}
	return keys
}

func TestFetchAll_FollowsTokens(t *testing.T) {
	m := newMockJira(t, pagedSearch(t, map[string]SearchResponse{
		"":  {Issues: issues("FSA-1", "FSA-2"), NextPageToken: "B"},
		"B": {Issues: issues("FSA-3", "FSA-4"), NextPageToken: "C"},
		"C": {Issues: issues("FSA-5", "FSA-6"), IsLast: true},
	}))
	c := newDirectClient(t, m)

	got, info := c.FetchAll(context.Background(), Query{
		JQL:      "project = FSA",
		Fields:   []string{"summary", "status"},
		PageSize: 600,
	})

	assert.Equal(t, []string{"FSA-1", "FSA-2", "FSA-3", "FSA-4", "FSA-5", "FSA-6"}, issueKeys(got))
	assert.Equal(t, 3, m.Calls())
	assert.Equal(t, http.StatusOK, info.Status)
	assert.Equal(t, 6, info.Count)
	assert.False(t, info.Failed())

	var tokens []string
	for _, r := range m.Requests() {
		var req SearchRequest
		require.NoError(t, json.Unmarshal(r.Body, &req))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "project = FSA", req.JQL)
		assert.Equal(t, 600, req.MaxResults)
		assert.Equal(t, []string{"summary", "status"}, req.Fields)
		tokens = append(tokens, req.NextPageToken)
	}
	assert.Equal(t, []string{"", "B", "C"}, tokens)

	last, ok := c.Recorder().Last()
	require.True(t, ok)
	assert.Equal(t, 6, last.Count)
}

func TestFetchAll_PageCounts(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("%d pages", n), func(t *testing.T) {
			pages := map[string]SearchResponse{}
			var want []string
			for p := 0; p < n; p++ {
				token := ""
				if p > 0 {
					token = fmt.Sprintf("t%d", p)
				}
				next := ""
				if p < n-1 {
					next = fmt.Sprintf("t%d", p+1)
				}
				keys := []string{fmt.Sprintf("FSA-%d", p*2+1), fmt.Sprintf("FSA-%d", p*2+2)}
				want = append(want, keys...)
				pages[token] = SearchResponse{Issues: issues(keys...), NextPageToken: next}
			}

			m := newMockJira(t, pagedSearch(t, pages))
			got, info := newDirectClient(t, m).FetchAll(context.Background(), Query{JQL: "x"})

			assert.Equal(t, want, issueKeys(got))
			assert.Equal(t, n, m.Calls())
			assert.Equal(t, len(want), info.Count)
		})
	}
}

func TestFetchAll_EmptyResult(t *testing.T) {
	m := newMockJira(t, pagedSearch(t, map[string]SearchResponse{
		"": {Issues: []Issue{}},
	}))

	got, info := newDirectClient(t, m).FetchAll(context.Background(), Query{JQL: "x"})
	assert.Empty(t, got)
	assert.Equal(t, http.StatusOK, info.Status)
	assert.Zero(t, info.Count)
}

func TestFetchAll_DefaultPageSize(t *testing.T) {
	m := newMockJira(t, pagedSearch(t, map[string]SearchResponse{"": {}}))
	newDirectClient(t, m).FetchAll(context.Background(), Query{JQL: "x"})

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	var req SearchRequest
	require.NoError(t, json.Unmarshal(reqs[0].Body, &req))
	assert.Equal(t, DefaultPageSize, req.MaxResults)
}

func TestFetchAll_FailureMidChainDiscardsEverything(t *testing.T) {
	m := newMockJira(t, func(w http.ResponseWriter, r *http.Request) {
		var req SearchRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.NextPageToken == "" {
			writeJSON(w, http.StatusOK, SearchResponse{Issues: issues("FSA-1", "FSA-2"), NextPageToken: "B"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"errorMessages": []string{"boom"},
		})
	})
	c := newDirectClient(t, m)

	got, info := c.FetchAll(context.Background(), Query{JQL: "project = FSA"})

	assert.Empty(t, got)
	assert.Equal(t, 2, m.Calls())
	assert.Equal(t, http.StatusInternalServerError, info.Status)
	assert.True(t, info.Failed())
	assert.Equal(t, map[string]any{"errorMessages": []any{"boom"}}, info.Error)

	params, ok := info.Params.(SearchRequest)
	require.True(t, ok)
	assert.Equal(t, "B", params.NextPageToken)

	last, ok := c.Recorder().Last()
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, last.Status)
}

func TestFetchAll_RawTextError(t *testing.T) {
	m := newMockJira(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	})

	got, info := newDirectClient(t, m).FetchAll(context.Background(), Query{JQL: "x"})
	assert.Empty(t, got)
	assert.Equal(t, http.StatusBadGateway, info.Status)
	assert.Equal(t, "upstream unavailable", info.Error)
}

func TestFetchAll_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	site := srv.URL
	srv.Close()

	c, err := NewClient(Direct{SiteURL: site}, Credentials{Email: "a", APIToken: "b"})
	require.NoError(t, err)

	got, info := c.FetchAll(context.Background(), Query{JQL: "x"})
	assert.Empty(t, got)
	assert.Equal(t, StatusTransportFailure, info.Status)
	assert.Equal(t, site+"/rest/api/3/search/jql", info.URL)
	assert.NotEmpty(t, info.Error)
}

func TestFetchAll_MalformedBody(t *testing.T) {
	m := newMockJira(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{not json"))
	})

	got, info := newDirectClient(t, m).FetchAll(context.Background(), Query{JQL: "x"})
	assert.Empty(t, got)
	assert.Equal(t, http.StatusOK, info.Status)
	assert.NotNil(t, info.Error)
}

func TestFetchAll_Reconcile(t *testing.T) {
	m := newMockJira(t, pagedSearch(t, map[string]SearchResponse{"": {}}))
	newDirectClient(t, m).FetchAll(context.Background(), Query{JQL: "x", Reconcile: true})

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, string(reqs[0].Body), `"reconcileIssues":[]`)
}

func TestParseFieldList(t *testing.T) {
	assert.Equal(t, []string{"summary", "status", "customfield_1"}, ParseFieldList(" summary, status,,customfield_1 "))
	assert.Nil(t, ParseFieldList(""))
}

func TestParseJQL(t *testing.T) {
	m := newMockJira(t, func(w http.ResponseWriter, r *http.Request) {
		var req parseRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "STRICT", req.Validation)
		writeJSON(w, http.StatusOK, ParseResult{Queries: []ParsedQuery{{
			Query:  req.Queries[0],
			Errors: []string{"Field 'projekt' does not exist."},
		}}})
	})

	res, err := newDirectClient(t, m).ParseJQL(context.Background(), "projekt = FSA")
	require.NoError(t, err)
	assert.False(t, res.Valid())
	assert.Equal(t, "/rest/api/3/jql/parse", m.Requests()[0].Path)
}

func TestApproximateCount(t *testing.T) {
	m := newMockJira(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"count": 42})
	})

	n, err := newDirectClient(t, m).ApproximateCount(context.Background(), "project = FSA")
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestGetIssue(t *testing.T) {
	m := newMockJira(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id":  "10001",
			"key": "FSA-7",
			"fields": map[string]any{
				"status": map[string]any{"name": "Agendado", "id": "11481"},
			},
		})
	})

	issue, err := newDirectClient(t, m).GetIssue(context.Background(), "FSA-7", "status")
	require.NoError(t, err)
	assert.Equal(t, "Agendado", issue.Fields.Status().Name)

	req := m.Requests()[0]
	assert.Equal(t, "/rest/api/3/issue/FSA-7", req.Path)
	assert.Equal(t, "fields=status", req.Query)
}
