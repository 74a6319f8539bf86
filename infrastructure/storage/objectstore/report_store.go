package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/pitchroom/domain/report"
)

const (
	jsonDir = "reports/"
	textDir = "text/"
)

// ReportStore implements report.Store on top of a bucket Client. Reports
// live at <prefix>reports/<id>.json with a text rendering at
// <prefix>text/report_<stamp>_<id>.txt.
type ReportStore struct {
	client Client
	prefix string
}

// NewReportStore creates a bucket-backed report store.
func NewReportStore(client Client, prefix string) (*ReportStore, error) {
	if client == nil {
		return nil, errors.New("objectstore: client is required")
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &ReportStore{client: client, prefix: prefix}, nil
}

func (s *ReportStore) jsonPath(id string) string {
	return s.prefix + jsonDir + id + report.FormatJSON.Extension()
}

func (s *ReportStore) textPath(r *report.Report) string {
	return s.prefix + textDir + report.FileStem(r) + report.FormatText.Extension()
}

// Save uploads both renderings of a new report.
func (s *ReportStore) Save(ctx context.Context, r *report.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.ID == "" {
		return report.ErrInvalidReportID
	}

	data, err := report.Export(r, string(report.FormatJSON))
	if err != nil {
		return err
	}

	if err := s.client.Create(ctx, s.jsonPath(r.ID), data, "application/json"); err != nil {
		if errors.Is(err, ErrObjectExists) {
			return report.ErrReportExists
		}
		return fmt.Errorf("failed to upload report: %w", err)
	}

	if err := s.client.Put(ctx, s.textPath(r), []byte(report.Text(r)), "text/plain; charset=utf-8"); err != nil {
		_ = s.client.Delete(ctx, s.jsonPath(r.ID))
		return fmt.Errorf("failed to upload text report: %w", err)
	}
	return nil
}

// Get downloads a report by ID.
func (s *ReportStore) Get(ctx context.Context, id string) (*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, report.ErrInvalidReportID
	}

	data, err := s.client.Get(ctx, s.jsonPath(id))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, report.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to download report: %w", err)
	}
	return report.Decode(data)
}

// Delete removes both renderings of a report.
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.client.Delete(ctx, s.jsonPath(id)); err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return report.ErrReportNotFound
		}
		return fmt.Errorf("failed to delete report: %w", err)
	}

	// Text rendering is best effort
	_ = s.client.Delete(ctx, s.textPath(r))
	return nil
}

// List downloads every report under the prefix and applies filter.
func (s *ReportStore) List(ctx context.Context, filter report.ListFilter) ([]*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names, err := s.client.List(ctx, s.prefix+jsonDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	all := make([]*report.Report, 0, len(names))
	for _, name := range names {
		if !strings.HasSuffix(name, report.FormatJSON.Extension()) {
			continue
		}
		data, err := s.client.Get(ctx, name)
		if err != nil {
			if errors.Is(err, ErrObjectNotFound) {
				continue // Deleted since listing
			}
			return nil, err
		}
		r, err := report.Decode(data)
		if err != nil {
			continue
		}
		all = append(all, r)
	}
	return filter.Apply(all), nil
}

var _ report.Store = (*ReportStore)(nil)
