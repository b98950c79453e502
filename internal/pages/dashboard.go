package pages

import (
	"fmt"
	"strings"
	"time"
)

// Dashboard page selectors.
const (
	welcomeMessage   = ".welcome-message"
	projectCard      = ".project-card"
	createProjectBtn = ".create-project-btn"
	projectName      = ".project-name"
	logoutBtn        = "#logout-btn"
	settingsLink     = ".settings-link"
)

// DashboardPage drives the post-login dashboard: project visibility,
// tenant isolation checks, and navigation.
type DashboardPage struct {
	*Page
}

// NewDashboardPage wraps a page object for the dashboard.
func NewDashboardPage(page *Page) *DashboardPage {
	return &DashboardPage{Page: page}
}

// WaitLoaded blocks until the browser is on the dashboard.
func (d *DashboardPage) WaitLoaded(timeout time.Duration) error {
	return d.WaitForURLContains("/dashboard", timeout)
}

// Loaded reports whether the dashboard appeared within a short window.
func (d *DashboardPage) Loaded() bool {
	return d.WaitLoaded(5*time.Second) == nil
}

// WelcomeMessage returns the greeting text, empty when absent.
func (d *DashboardPage) WelcomeMessage() string {
	if !d.IsVisible(welcomeMessage) {
		return ""
	}
	text, err := d.Text(welcomeMessage)
	if err != nil {
		return ""
	}
	return text
}

// ProjectVisible reports whether a project card with the given name is on
// the dashboard.
func (d *DashboardPage) ProjectVisible(name string) (bool, error) {
	names, err := d.ProjectNames()
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if strings.Contains(n, name) {
			return true, nil
		}
	}
	return false, nil
}

// ProjectNames returns the names of every visible project card. Cards
// without a name element contribute their full text, matching how
// placeholder cards render.
func (d *DashboardPage) ProjectNames() ([]string, error) {
	names, err := d.TextAll(projectCard + " " + projectName)
	if err != nil {
		return nil, err
	}
	if len(names) > 0 {
		return names, nil
	}
	return d.TextAll(projectCard)
}

// ProjectCount returns the number of project cards shown.
func (d *DashboardPage) ProjectCount() (int, error) {
	return d.Count(projectCard)
}

// OpenProject clicks the card for a named project.
func (d *DashboardPage) OpenProject(name string) error {
	names, err := d.ProjectNames()
	if err != nil {
		return err
	}
	for i, n := range names {
		if strings.Contains(n, name) {
			selector := fmt.Sprintf("%s:nth-of-type(%d)", projectCard, i+1)
			return d.Click(selector)
		}
	}
	return fmt.Errorf("project %q not found on dashboard", name)
}

// CreateProject clicks the create-project button.
func (d *DashboardPage) CreateProject() error {
	return d.Click(createProjectBtn)
}

// NoCrossTenantData verifies that no project card mentions the excluded
// tenant.
func (d *DashboardPage) NoCrossTenantData(excludedTenant string) (bool, error) {
	cards, err := d.TextAll(projectCard)
	if err != nil {
		return false, err
	}
	for _, text := range cards {
		if strings.Contains(text, excludedTenant) {
			return false, nil
		}
	}
	return true, nil
}

// Logout clicks the logout button and waits for the login page.
func (d *DashboardPage) Logout() error {
	if err := d.Click(logoutBtn); err != nil {
		return err
	}
	return d.WaitForURLContains("/login", 0)
}

// OpenSettings navigates to the settings page.
func (d *DashboardPage) OpenSettings() error {
	if err := d.Click(settingsLink); err != nil {
		return err
	}
	return d.WaitForURLContains("/settings", 0)
}
