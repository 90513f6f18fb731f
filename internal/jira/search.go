package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Query is one enhanced-search request: JQL, the fields to project and the
// page size hint. The remote service enforces its own upper bound on
// PageSize; the client does not cap it.
type Query struct {
	JQL       string
	Fields    []string
	PageSize  int
	Reconcile bool
}

// DefaultPageSize is used when a Query leaves PageSize at zero.
const DefaultPageSize = 100

// ParseFieldList splits a comma separated field list, dropping blanks.
func ParseFieldList(s string) []string {
	var fields []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// FetchAll follows nextPageToken until the server stops returning one and
// returns every issue in page order.
//
// The result is all-or-nothing: if any page fails (non-200 status or
// transport error) the returned slice is empty and the DebugInfo describes
// the failing request. A partial list would silently under-report tickets.
func (c *Client) FetchAll(ctx context.Context, q Query) ([]Issue, DebugInfo) {
	const path = "/search/jql"

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var (
		issues []Issue
		token  string
		last   SearchRequest
		pages  int
	)

	for {
		req := SearchRequest{
			JQL:           q.JQL,
			MaxResults:    pageSize,
			Fields:        q.Fields,
			NextPageToken: token,
		}
		if q.Reconcile {
			req.ReconcileIssues = &[]int{}
		}
		last = req

		resp, err := c.Do(ctx, http.MethodPost, path, req, nil)
		if err != nil {
			return nil, DebugInfo{
				URL:    c.base + path,
				Method: http.MethodPost,
				Params: req,
				Status: StatusTransportFailure,
				Error:  err.Error(),
			}
		}

		if resp.StatusCode != http.StatusOK {
			return nil, DebugInfo{
				URL:    resp.URL,
				Method: http.MethodPost,
				Params: req,
				Status: resp.StatusCode,
				Error:  resp.Payload(),
			}
		}

		var page SearchResponse
		if err := resp.Decode(&page); err != nil {
			info := DebugInfo{
				URL:    resp.URL,
				Method: http.MethodPost,
				Params: req,
				Status: resp.StatusCode,
				Error:  err.Error(),
			}
			c.recorder.record(info)
			return nil, info
		}

		issues = append(issues, page.Issues...)
		pages++
		token = page.NextPageToken

		if token == "" {
			break
		}
	}

	info := DebugInfo{
		URL:    c.base + path,
		Method: http.MethodPost,
		Params: last,
		Status: http.StatusOK,
		Count:  len(issues),
	}
	c.recorder.record(info)

	c.logger.Debug("jira search complete",
		"jql", q.JQL, "pages", pages, "issues", len(issues))

	return issues, info
}

// WhoAmI returns the authenticated principal. Any status other than 200 is
// a failed identity check.
func (c *Client) WhoAmI(ctx context.Context) (*Myself, error) {
	var me Myself
	if err := c.get(ctx, "/myself", nil, &me); err != nil {
		return nil, fmt.Errorf("validating Jira connection: %w", err)
	}
	return &me, nil
}

// ParseJQL validates a query with strict validation.
func (c *Client) ParseJQL(ctx context.Context, jql string) (*ParseResult, error) {
	body := parseRequest{Queries: []string{jql}, Validation: "STRICT"}

	var result ParseResult
	if err := c.post(ctx, "/jql/parse", body, &result); err != nil {
		return nil, fmt.Errorf("parsing JQL: %w", err)
	}
	return &result, nil
}

// ApproximateCount returns the server's approximate match count for jql.
func (c *Client) ApproximateCount(ctx context.Context, jql string) (int, error) {
	var result countResponse
	if err := c.post(ctx, "/search/approximate-count", countRequest{JQL: jql}, &result); err != nil {
		return 0, fmt.Errorf("counting JQL matches: %w", err)
	}
	return result.Count, nil
}

// GetIssue fetches a single issue restricted to fields (all fields when
// none are given).
func (c *Client) GetIssue(ctx context.Context, key string, fields ...string) (*Issue, error) {
	var query url.Values
	if len(fields) > 0 {
		query = url.Values{"fields": {strings.Join(fields, ",")}}
	}

	var issue Issue
	if err := c.get(ctx, "/issue/"+url.PathEscape(key), query, &issue); err != nil {
		return nil, fmt.Errorf("fetching Jira issue %s: %w", key, err)
	}
	return &issue, nil
}
