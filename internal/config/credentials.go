package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SiteCredential is one site entry in the credentials file.
type SiteCredential struct {
	Enabled    *bool  `yaml:"enabled"` // absent means enabled
	Credential string `yaml:"credential"`
}

// Credentials maps site IDs to their credential entries.
type Credentials struct {
	Sites map[string]SiteCredential `yaml:"sites"`
}

// LoadCredentials reads and parses the YAML credentials file.
// A missing file is not an error: it yields an empty set, so the
// service can start before any site is configured.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Credentials{Sites: map[string]SiteCredential{}}, nil
		}
		return nil, fmt.Errorf("read credentials file %s: %w", path, err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials file %s: %w", path, err)
	}
	if creds.Sites == nil {
		creds.Sites = map[string]SiteCredential{}
	}
	return &creds, nil
}

// CredentialMap returns the site-to-credential map the batch engine
// consumes, skipping entries with an empty credential.
func (c *Credentials) CredentialMap() map[string]string {
	out := make(map[string]string, len(c.Sites))
	for id, site := range c.Sites {
		if site.Credential != "" {
			out[id] = site.Credential
		}
	}
	return out
}

// DisabledSites returns the IDs explicitly disabled in the file.
func (c *Credentials) DisabledSites() []string {
	var out []string
	for id, site := range c.Sites {
		if site.Enabled != nil && !*site.Enabled {
			out = append(out, id)
		}
	}
	return out
}
