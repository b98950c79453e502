// Package runner executes test suites through the go toolchain and
// collects their results.
package runner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/workflowpro/qaharness/internal/config"
	"github.com/workflowpro/qaharness/internal/report"
	"github.com/workflowpro/qaharness/models"
	"github.com/workflowpro/qaharness/utils/common"
)

// Options selects what to run and how.
type Options struct {
	Packages string // package pattern, e.g. ./tests/...
	Pattern  string // -run regexp, empty for all
	Parallel int    // -parallel value, 0 for the go default
}

// Runner shells out to `go test` and turns its JSON event stream into a
// run report.
type Runner struct {
	Executor common.CommandExecutor
	Settings *config.Settings
	Logger   *zap.Logger
}

// New returns a runner over the given executor.
func New(executor common.CommandExecutor, settings *config.Settings, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Executor: executor, Settings: settings, Logger: logger}
}

// testEvent mirrors the go test -json event stream.
type testEvent struct {
	Action  string  `json:"Action"`
	Package string  `json:"Package"`
	Test    string  `json:"Test"`
	Elapsed float64 `json:"Elapsed"`
	Output  string  `json:"Output"`
}

// Run executes the selected tests and returns a populated report. A
// failing suite is not an error here: failures are recorded in the
// report and left to the caller to act on.
func (r *Runner) Run(ctx context.Context, opts Options) (*models.RunReport, error) {
	if _, err := r.Executor.LookPath("go"); err != nil {
		return nil, fmt.Errorf("go toolchain not found: %w", err)
	}

	packages := opts.Packages
	if packages == "" {
		packages = "./tests/..."
	}

	args := []string{"test", packages, "-json", "-count=1"}
	if opts.Pattern != "" {
		args = append(args, "-run", opts.Pattern)
	}
	if opts.Parallel > 0 {
		args = append(args, "-parallel", strconv.Itoa(opts.Parallel))
	}

	rep := report.NewRunReport(r.Settings)
	r.Logger.Info("starting test run",
		zap.String("run_id", rep.RunID),
		zap.String("packages", packages),
		zap.String("pattern", opts.Pattern),
		zap.Int("parallel", opts.Parallel),
	)

	output, runErr := r.Executor.RunCommand("go", args...)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	results, parseErr := parseEvents(output)
	rep.Results = results
	rep.FinishedAt = time.Now()

	// go test exits non-zero on test failure; that is a report outcome,
	// not a harness error. Only a run that produced no results at all is
	// treated as broken.
	if len(results) == 0 {
		if runErr != nil {
			return nil, fmt.Errorf("test run produced no results: %w, output: %s", runErr, string(output))
		}
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse test output: %w", parseErr)
		}
	}

	r.Logger.Info("test run finished",
		zap.String("run_id", rep.RunID),
		zap.Int("tests", len(rep.Results)),
		zap.Bool("passed", rep.Passed()),
	)
	return rep, nil
}

// parseEvents folds the -json event stream into per-test results.
func parseEvents(output []byte) ([]models.TestResult, error) {
	type key struct{ pkg, test string }
	buffers := make(map[key]*bytes.Buffer)

	var results []models.TestResult
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var ev testEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		if ev.Test == "" {
			continue
		}
		k := key{ev.Package, ev.Test}
		switch ev.Action {
		case "output":
			buf, ok := buffers[k]
			if !ok {
				buf = &bytes.Buffer{}
				buffers[k] = buf
			}
			buf.WriteString(ev.Output)
		case "pass", "fail", "skip":
			res := models.TestResult{
				Name:     ev.Test,
				Package:  ev.Package,
				Status:   ev.Action,
				Duration: time.Duration(ev.Elapsed * float64(time.Second)),
			}
			if ev.Action == "fail" {
				if buf, ok := buffers[k]; ok {
					res.Output = buf.String()
				}
			}
			results = append(results, res)
			delete(buffers, k)
		}
	}
	if err := scanner.Err(); err != nil {
		return results, err
	}
	return results, nil
}
