// Package filesystem stores reports as files in a directory.
package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/pitchroom/domain/report"
)

// ReportStore implements report.Store as a directory of exported reports.
// Each report is written as report_<stamp>_<id>.json with a .txt rendering
// beside it.
type ReportStore struct {
	basePath string
	withText bool
}

// NewReportStore creates a filesystem report store rooted at basePath.
func NewReportStore(basePath string) (*ReportStore, error) {
	if err := os.MkdirAll(basePath, 0750); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &ReportStore{basePath: basePath, withText: true}, nil
}

// Dir returns the directory reports are written to.
func (s *ReportStore) Dir() string {
	return s.basePath
}

// Save writes the JSON and text renderings of a new report.
func (s *ReportStore) Save(ctx context.Context, r *report.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.ID == "" {
		return report.ErrInvalidReportID
	}

	if _, err := s.find(r.ID); err == nil {
		return report.ErrReportExists
	} else if !errors.Is(err, report.ErrReportNotFound) {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	stem := filepath.Join(s.basePath, report.FileStem(r))
	if err := writeExclusive(stem+report.FormatJSON.Extension(), data); err != nil {
		return err
	}

	if s.withText {
		if err := os.WriteFile(stem+report.FormatText.Extension(), []byte(report.Text(r)), 0600); err != nil {
			_ = os.Remove(stem + report.FormatJSON.Extension()) // #nosec G104 -- best-effort cleanup in error path
			return fmt.Errorf("failed to write text report: %w", err)
		}
	}
	return nil
}

// Get loads a report by ID.
func (s *ReportStore) Get(ctx context.Context, id string) (*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, report.ErrInvalidReportID
	}

	path, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return readReport(path)
}

// Delete removes both renderings of a report.
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return report.ErrInvalidReportID
	}

	path, err := s.find(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	txt := strings.TrimSuffix(path, report.FormatJSON.Extension()) + report.FormatText.Extension()
	if err := os.Remove(txt); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete text report: %w", err)
	}
	return nil
}

// List loads every report in the directory and applies filter.
func (s *ReportStore) List(ctx context.Context, filter report.ListFilter) ([]*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paths, err := filepath.Glob(filepath.Join(s.basePath, "report_*"+report.FormatJSON.Extension()))
	if err != nil {
		return nil, err
	}

	all := make([]*report.Report, 0, len(paths))
	for _, p := range paths {
		r, err := readReport(p)
		if err != nil {
			continue // Skip foreign or malformed files
		}
		all = append(all, r)
	}
	return filter.Apply(all), nil
}

// find returns the JSON path of the report with the given ID.
func (s *ReportStore) find(id string) (string, error) {
	if strings.ContainsAny(id, `/\*?[`) {
		return "", report.ErrInvalidReportID
	}
	matches, err := filepath.Glob(filepath.Join(s.basePath, "report_*_"+id+report.FormatJSON.Extension()))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", report.ErrReportNotFound
	}
	return matches[0], nil
}

func readReport(path string) (*report.Report, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is built from the store directory
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return report.Decode(data)
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600) // #nosec G304 -- path is built from the store directory
	if errors.Is(err, fs.ErrExist) {
		return report.ErrReportExists
	}
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path) // #nosec G104 -- best-effort cleanup in error path
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}
