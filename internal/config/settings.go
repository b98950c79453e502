// Package config provides environment settings and the tenant registry
// for the WorkFlow Pro test harness.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Environment identifies a deployment the tests run against.
type Environment string

const (
	EnvLocal      Environment = "local"
	EnvStaging    Environment = "staging"
	EnvProduction Environment = "production"
)

// Browser identifies the browser used for UI tests.
type Browser string

const (
	BrowserChromium Browser = "chromium"
	BrowserFirefox  Browser = "firefox"
	BrowserWebkit   Browser = "webkit"
)

// Default timeouts applied to browser and HTTP interactions.
const (
	DefaultTimeout    = 15 * time.Second
	ElementTimeout    = 10 * time.Second
	NavigationTimeout = 30 * time.Second
)

var apiEndpoints = map[Environment]string{
	EnvLocal:      "http://localhost:8000/api/v1",
	EnvStaging:    "https://api.staging.workflowpro.com/api/v1",
	EnvProduction: "https://api.workflowpro.com/api/v1",
}

// BrowserStackConfig holds BrowserStack cloud-testing credentials.
type BrowserStackConfig struct {
	Username    string
	AccessKey   string
	ProjectName string
	BuildName   string
}

// HubURL returns the authenticated BrowserStack hub endpoint.
func (b BrowserStackConfig) HubURL() string {
	return fmt.Sprintf("https://%s:%s@hub-cloud.browserstack.com/wd/hub", b.Username, b.AccessKey)
}

// Settings holds the harness-wide configuration resolved from the
// environment.
type Settings struct {
	Environment  Environment
	Browser      Browser
	Headless     bool
	BrowserStack *BrowserStackConfig
}

// LoadSettings resolves settings from environment variables. Unrecognized
// TEST_ENV or TEST_BROWSER values fall back to the defaults instead of
// failing, so a misconfigured shell cannot break every test.
func LoadSettings() *Settings {
	v := viper.New()
	v.SetDefault("env", string(EnvStaging))
	v.SetDefault("browser", string(BrowserChromium))
	v.SetDefault("headless", true)

	_ = v.BindEnv("env", "TEST_ENV")
	_ = v.BindEnv("browser", "TEST_BROWSER")
	_ = v.BindEnv("headless", "HEADLESS")
	_ = v.BindEnv("browserstack_username", "BROWSERSTACK_USERNAME")
	_ = v.BindEnv("browserstack_access_key", "BROWSERSTACK_ACCESS_KEY")

	s := &Settings{
		Environment: parseEnvironment(v.GetString("env")),
		Browser:     parseBrowser(v.GetString("browser")),
		Headless:    v.GetBool("headless"),
	}

	user := v.GetString("browserstack_username")
	key := v.GetString("browserstack_access_key")
	if user != "" && key != "" {
		s.BrowserStack = &BrowserStackConfig{
			Username:    user,
			AccessKey:   key,
			ProjectName: "WorkFlow Pro Tests",
			BuildName:   "Automated Tests",
		}
	}

	return s
}

func parseEnvironment(raw string) Environment {
	switch Environment(raw) {
	case EnvLocal, EnvStaging, EnvProduction:
		return Environment(raw)
	default:
		return EnvStaging
	}
}

func parseBrowser(raw string) Browser {
	switch Browser(raw) {
	case BrowserChromium, BrowserFirefox, BrowserWebkit:
		return Browser(raw)
	default:
		return BrowserChromium
	}
}

// APIBaseURL returns the REST API endpoint for the active environment.
func (s *Settings) APIBaseURL() string {
	return apiEndpoints[s.Environment]
}

// TenantBaseURL returns the application URL for a tenant subdomain in the
// active environment. Local development serves every tenant from one host.
func (s *Settings) TenantBaseURL(subdomain string) string {
	switch s.Environment {
	case EnvLocal:
		return "http://localhost:3000"
	case EnvStaging:
		return fmt.Sprintf("https://%s.staging.workflowpro.com", subdomain)
	default:
		return fmt.Sprintf("https://%s.workflowpro.com", subdomain)
	}
}
