package jira

// SearchRequest is the body of POST /search/jql.
type SearchRequest struct {
	JQL             string   `json:"jql"`
	MaxResults      int      `json:"maxResults"`
	Fields          []string `json:"fields"`
	NextPageToken   string   `json:"nextPageToken,omitempty"`
	ReconcileIssues *[]int   `json:"reconcileIssues,omitempty"`
}

// SearchResponse is one page of POST /search/jql.
type SearchResponse struct {
	Issues        []Issue `json:"issues"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
	IsLast        bool    `json:"isLast,omitempty"`
}

// Issue represents a single Jira issue. Fields are kept raw because most of
// the interesting ones are tenant-specific custom fields.
type Issue struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Self   string `json:"self,omitempty"`
	Fields Fields `json:"fields"`
}

// Status represents the status of a Jira issue.
type Status struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Transition represents a possible status transition for a Jira issue.
type Transition struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	To   TransitionTo `json:"to"`
}

// TransitionTo describes the target status of a transition.
type TransitionTo struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// TransitionsResponse wraps the list of transitions returned by the API.
type TransitionsResponse struct {
	Transitions []Transition `json:"transitions"`
}

// transitionRequest is the body of POST /issue/{key}/transitions.
type transitionRequest struct {
	Transition transitionRef  `json:"transition"`
	Fields     map[string]any `json:"fields,omitempty"`
}

type transitionRef struct {
	ID string `json:"id"`
}

// Myself is the response from GET /myself.
type Myself struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	Active       bool   `json:"active"`
	TimeZone     string `json:"timeZone,omitempty"`
}

// parseRequest is the body of POST /jql/parse.
type parseRequest struct {
	Queries    []string `json:"queries"`
	Validation string   `json:"validation"`
}

// ParseResult is the response of POST /jql/parse.
type ParseResult struct {
	Queries []ParsedQuery `json:"queries"`
}

// ParsedQuery is the verdict for one query in a ParseResult.
type ParsedQuery struct {
	Query  string   `json:"query"`
	Errors []string `json:"errors,omitempty"`
}

// Valid reports whether every query parsed without errors.
func (p *ParseResult) Valid() bool {
	for _, q := range p.Queries {
		if len(q.Errors) > 0 {
			return false
		}
	}
	return true
}

// countRequest is the body of POST /search/approximate-count.
type countRequest struct {
	JQL string `json:"jql"`
}

// countResponse is the response of POST /search/approximate-count.
type countResponse struct {
	Count int `json:"count"`
}
