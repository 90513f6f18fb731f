package credential

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SecretsFileName is the secrets file kept next to the config file.
const SecretsFileName = "secrets.toml"

// Secrets is the flat key file for deployments that keep credentials out of
// the config file.
type Secrets struct {
	Email    string `toml:"EMAIL,omitempty"`
	APIToken string `toml:"API_TOKEN,omitempty"`
	CloudID  string `toml:"CLOUD_ID,omitempty"`
	SiteURL  string `toml:"SITE_URL,omitempty"`

	// UseExAPI selects the routed gateway; nil means unset.
	UseExAPI *bool `toml:"USE_EX_API,omitempty"`
}

// LoadSecrets reads path. A missing file yields empty Secrets.
func LoadSecrets(path string) (*Secrets, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Secrets{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets %s: %w", path, err)
	}

	var s Secrets
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing secrets %s: %w", path, err)
	}
	return &s, nil
}

// SaveSecrets writes s to path, readable by the owner only.
func SaveSecrets(path string, s *Secrets) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating secrets directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("opening secrets %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("writing secrets %s: %w", path, err)
	}
	return nil
}
