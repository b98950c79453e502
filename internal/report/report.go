// Package report builds and writes run reports.
package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/workflowpro/qaharness/internal/config"
	"github.com/workflowpro/qaharness/models"
)

// Format selects the report output format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJUnit Format = "junit"
)

// ParseFormat validates a report-format flag value.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case FormatJSON, FormatJUnit:
		return Format(raw), nil
	default:
		return "", fmt.Errorf("unsupported report format %q (want json or junit)", raw)
	}
}

// NewRunReport starts a report for one harness invocation, stamped with a
// fresh run id and the host it executes on.
func NewRunReport(settings *config.Settings) *models.RunReport {
	return &models.RunReport{
		RunID:       uuid.NewString(),
		Environment: string(settings.Environment),
		Browser:     string(settings.Browser),
		Host:        hostInfo(),
		StartedAt:   time.Now(),
	}
}

// hostInfo collects machine metadata, degrading to runtime values when
// the probes fail.
func hostInfo() models.HostInfo {
	info := models.HostInfo{
		OS:       runtime.GOOS,
		CPUCount: runtime.NumCPU(),
	}
	if hi, err := host.Info(); err == nil {
		info.Hostname = hi.Hostname
		info.OS = hi.OS
		info.Platform = hi.Platform
	}
	if count, err := cpu.Counts(true); err == nil && count > 0 {
		info.CPUCount = count
	}
	return info
}

// Writer persists run reports through an afero filesystem.
type Writer struct {
	FS     afero.Fs
	Logger *zap.Logger
}

// NewWriter returns a report writer over the given filesystem.
func NewWriter(fs afero.Fs, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{FS: fs, Logger: logger}
}

// Write serializes the report into dir in the requested format and
// returns the file path.
func (w *Writer) Write(r *models.RunReport, format Format, dir string) (string, error) {
	if err := w.FS.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	var (
		data []byte
		err  error
		ext  string
	)
	switch format {
	case FormatJUnit:
		data, err = marshalJUnit(r)
		ext = "xml"
	default:
		data, err = json.MarshalIndent(r, "", "  ")
		ext = "json"
	}
	if err != nil {
		return "", fmt.Errorf("failed to serialize report: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run-%s.%s", r.RunID, ext))
	if err := afero.WriteFile(w.FS, path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	w.Logger.Info("report written",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("tests", len(r.Results)),
	)
	return path, nil
}
