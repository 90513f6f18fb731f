package jira

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// routedHost is the Atlassian API gateway used by the routed ("ex") mode.
const routedHost = "https://api.atlassian.com/ex/jira"

// apiPath is the REST API v3 root appended to every base URL.
const apiPath = "/rest/api/3"

// Credentials are the account email and API token used for Basic auth.
type Credentials struct {
	Email    string
	APIToken string
}

// Mode selects how the client addresses Jira. It is a closed set:
// Direct and Routed are the only implementations.
type Mode interface {
	// Name is a short label used in logs and diagnostics.
	Name() string

	baseURL() string
	authorize(req *http.Request, creds Credentials)
	validate() error
}

// Direct talks to the tenant's own site, e.g. https://acme.atlassian.net.
// The standard Basic auth mechanism of net/http is used.
type Direct struct {
	SiteURL string
}

// Name returns "direct".
func (Direct) Name() string { return "direct" }

func (d Direct) baseURL() string {
	return strings.TrimRight(d.SiteURL, "/") + apiPath
}

func (Direct) authorize(req *http.Request, creds Credentials) {
	req.SetBasicAuth(creds.Email, creds.APIToken)
}

func (d Direct) validate() error {
	if strings.TrimSpace(d.SiteURL) == "" {
		return &ConfigError{Field: "site_url", Message: "site URL is required in direct mode"}
	}
	return nil
}

// Routed talks to the Atlassian API gateway using the tenant cloud id.
// The gateway rejects client-managed auth, so the Basic header is built by hand.
type Routed struct {
	CloudID string
}

// Name returns "routed".
func (Routed) Name() string { return "routed" }

func (r Routed) baseURL() string {
	return routedHost + "/" + strings.TrimSpace(r.CloudID) + apiPath
}

func (Routed) authorize(req *http.Request, creds Credentials) {
	token := base64.StdEncoding.EncodeToString(
		[]byte(creds.Email + ":" + creds.APIToken),
	)
	req.Header.Set("Authorization", "Basic "+token)
}

func (r Routed) validate() error {
	if strings.TrimSpace(r.CloudID) == "" {
		return &ConfigError{Field: "cloud_id", Message: "cloud id is required in routed mode"}
	}
	return nil
}

// ParseMode builds a Mode from its configuration name. An unknown name is a
// ConfigError; missing site URL or cloud id are reported by NewClient.
func ParseMode(name, siteURL, cloudID string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "routed", "ex":
		return Routed{CloudID: cloudID}, nil
	case "direct", "site":
		return Direct{SiteURL: siteURL}, nil
	default:
		return nil, &ConfigError{Field: "mode", Message: "unknown mode " + name}
	}
}
