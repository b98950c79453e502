package models

// TenantConfig holds the static configuration for a single tenant.
type TenantConfig struct {
	TenantID      string `json:"tenantId" yaml:"tenantId"`
	Subdomain     string `json:"subdomain" yaml:"subdomain"`
	AdminEmail    string `json:"adminEmail" yaml:"adminEmail"`
	AdminPassword string `json:"adminPassword" yaml:"adminPassword"`
}
