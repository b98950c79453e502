package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/workflowpro/qaharness/models"
)

// ErrUnknownTenant is returned when a tenant id is not configured.
var ErrUnknownTenant = errors.New("unknown tenant")

var defaultTenantIDs = []string{"company1", "company2", "company3"}

// registryFile is the optional on-disk override for the tenant table.
type registryFile struct {
	Tenants []models.TenantConfig `yaml:"tenants"`
}

// TenantRegistry holds the static per-tenant configuration. It is
// populated once at startup and read-only afterwards.
type TenantRegistry struct {
	settings *Settings
	tenants  map[string]models.TenantConfig
}

// NewTenantRegistry builds the registry from the built-in tenant table,
// merged with an optional tenants.yaml (or tenants.yml) file in the
// working directory. Admin passwords come from <TENANT>_PASSWORD
// environment variables when set.
func NewTenantRegistry(settings *Settings, fs afero.Fs) (*TenantRegistry, error) {
	tenants := make(map[string]models.TenantConfig, len(defaultTenantIDs))
	for _, id := range defaultTenantIDs {
		tenants[id] = models.TenantConfig{
			TenantID:      id,
			Subdomain:     id,
			AdminEmail:    fmt.Sprintf("admin@%s.com", id),
			AdminPassword: tenantPassword(id),
		}
	}

	path, err := findRegistryFile(fs)
	if err == nil {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read tenant file %s: %w", path, err)
		}
		var file registryFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse tenant file %s: %w", path, err)
		}
		for _, t := range file.Tenants {
			if t.TenantID == "" {
				return nil, fmt.Errorf("tenant file %s: entry without tenantId", path)
			}
			if t.Subdomain == "" {
				t.Subdomain = t.TenantID
			}
			if t.AdminPassword == "" {
				t.AdminPassword = tenantPassword(t.TenantID)
			}
			tenants[t.TenantID] = t
		}
	}

	return &TenantRegistry{settings: settings, tenants: tenants}, nil
}

// findRegistryFile looks for a tenant table file in the working directory.
func findRegistryFile(fs afero.Fs) (string, error) {
	for _, name := range []string{"tenants.yml", "tenants.yaml"} {
		if _, err := fs.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no tenant file found in the working directory")
}

func tenantPassword(tenantID string) string {
	if pw := os.Getenv(strings.ToUpper(tenantID) + "_PASSWORD"); pw != "" {
		return pw
	}
	return "password123"
}

// Get returns the configuration for a tenant id.
func (r *TenantRegistry) Get(tenantID string) (models.TenantConfig, error) {
	t, ok := r.tenants[tenantID]
	if !ok {
		return models.TenantConfig{}, fmt.Errorf("%w: %q", ErrUnknownTenant, tenantID)
	}
	return t, nil
}

// BaseURL returns the application URL for a tenant in the active
// environment.
func (r *TenantRegistry) BaseURL(tenantID string) (string, error) {
	t, err := r.Get(tenantID)
	if err != nil {
		return "", err
	}
	return r.settings.TenantBaseURL(t.Subdomain), nil
}

// IDs returns the configured tenant ids in sorted order.
func (r *TenantRegistry) IDs() []string {
	ids := make([]string, 0, len(r.tenants))
	for id := range r.tenants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
