package pages

import (
	"strings"

	"github.com/workflowpro/qaharness/internal/config"
)

// Login page selectors.
const (
	emailInput    = "#email"
	passwordInput = "#password"
	loginButton   = "#login-btn"
	errorMessage  = ".error-message"
	twoFAInput    = "#two-fa-code"
	twoFASubmit   = "#two-fa-submit"
)

// LoginPage drives the login screen of a tenant application.
type LoginPage struct {
	*Page
	BaseURL string
}

// NewLoginPage builds a login page object for a tenant base URL.
func NewLoginPage(page *Page, baseURL string) *LoginPage {
	return &LoginPage{Page: page, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Open navigates to the login form and waits for it to render.
func (l *LoginPage) Open() error {
	if err := l.Navigate(l.BaseURL + "/login"); err != nil {
		return err
	}
	return l.WaitVisible(emailInput)
}

// Login opens the form and submits the given credentials.
func (l *LoginPage) Login(email, password string) error {
	if err := l.Open(); err != nil {
		return err
	}
	if err := l.Fill(emailInput, email); err != nil {
		return err
	}
	if err := l.Fill(passwordInput, password); err != nil {
		return err
	}
	return l.Click(loginButton)
}

// LoginWith2FA submits credentials and, when prompted, the 2FA code.
func (l *LoginPage) LoginWith2FA(email, password, code string) error {
	if err := l.Login(email, password); err != nil {
		return err
	}
	if !l.IsVisible(twoFAInput) {
		return nil
	}
	if err := l.Fill(twoFAInput, code); err != nil {
		return err
	}
	return l.Click(twoFASubmit)
}

// LoginSucceeded reports whether the browser landed on the dashboard.
func (l *LoginPage) LoginSucceeded() bool {
	return l.WaitForURLContains("/dashboard", config.DefaultTimeout) == nil
}

// ErrorMessage returns the login error text, empty when none is shown.
func (l *LoginPage) ErrorMessage() string {
	if !l.IsVisible(errorMessage) {
		return ""
	}
	text, err := l.Text(errorMessage)
	if err != nil {
		return ""
	}
	return text
}
