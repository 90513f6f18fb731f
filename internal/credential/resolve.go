package credential

import (
	"os"
	"strings"

	"github.com/nhle/field-service/internal/jira"
	"github.com/nhle/field-service/internal/model"
)

// EnvAPIToken overrides every other token source.
const EnvAPIToken = "FSDASH_API_TOKEN"

// Sources are where Resolve looks for what the config file lacks.
type Sources struct {
	// Getenv defaults to os.Getenv.
	Getenv func(string) string

	// Secrets is the parsed secrets file; nil for none.
	Secrets *Secrets

	// Keyring defaults to Get. It is consulted for the token last.
	Keyring func(key string) (string, error)
}

// Resolve combines the config with the secrets file, the environment and
// the keyring into the client's mode and credentials. Config values win
// over the secrets file; the token comes from the environment, then the
// secrets file, then the keyring. Incomplete results are left for
// jira.NewClient to reject.
func Resolve(cfg model.JiraConfig, src Sources) (jira.Mode, jira.Credentials, error) {
	getenv := src.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	lookup := src.Keyring
	if lookup == nil {
		lookup = Get
	}
	sec := src.Secrets
	if sec == nil {
		sec = &Secrets{}
	}

	modeName := cfg.Mode
	if strings.TrimSpace(modeName) == "" && sec.UseExAPI != nil && !*sec.UseExAPI {
		modeName = "direct"
	}

	mode, err := jira.ParseMode(
		modeName,
		first(cfg.SiteURL, sec.SiteURL),
		first(cfg.CloudID, sec.CloudID),
	)
	if err != nil {
		return nil, jira.Credentials{}, err
	}

	creds := jira.Credentials{
		Email:    first(cfg.Email, sec.Email),
		APIToken: first(getenv(EnvAPIToken), sec.APIToken),
	}
	if creds.APIToken == "" {
		if tok, err := lookup(KeyAPIToken); err == nil {
			creds.APIToken = tok
		}
	}

	return mode, creds, nil
}

func first(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
