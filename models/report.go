package models

import "time"

// HostInfo describes the machine a test run executed on.
type HostInfo struct {
	Hostname string `json:"hostname" yaml:"hostname"`
	OS       string `json:"os" yaml:"os"`
	Platform string `json:"platform" yaml:"platform"`
	CPUCount int    `json:"cpuCount" yaml:"cpuCount"`
}

// TestResult is the outcome of a single test.
type TestResult struct {
	Name     string        `json:"name" yaml:"name"`
	Package  string        `json:"package" yaml:"package"`
	Status   string        `json:"status" yaml:"status"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Output   string        `json:"output,omitempty" yaml:"output,omitempty"`
}

// RunReport aggregates the results of one harness invocation.
type RunReport struct {
	RunID       string       `json:"runId" yaml:"runId"`
	Environment string       `json:"environment" yaml:"environment"`
	Browser     string       `json:"browser" yaml:"browser"`
	Host        HostInfo     `json:"host" yaml:"host"`
	StartedAt   time.Time    `json:"startedAt" yaml:"startedAt"`
	FinishedAt  time.Time    `json:"finishedAt" yaml:"finishedAt"`
	Results     []TestResult `json:"results" yaml:"results"`
}

// Passed reports whether every test in the run passed.
func (r RunReport) Passed() bool {
	for _, res := range r.Results {
		if res.Status == "fail" {
			return false
		}
	}
	return true
}
