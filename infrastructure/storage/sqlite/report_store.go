package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/felixgeelhaar/pitchroom/domain/report"
)

// ReportStore is a SQLite-backed implementation of report.Store.
type ReportStore struct {
	db *sql.DB
}

// NewReportStore opens a SQLite report store with the given configuration.
func NewReportStore(cfg Config, opts ...Option) (*ReportStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &ReportStore{db: db}

	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return s, nil
}

// NewReportStoreFromDB creates a report store from an existing database connection.
func NewReportStoreFromDB(db *sql.DB) (*ReportStore, error) {
	s := &ReportStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// migrate creates the reports table if it doesn't exist.
func (s *ReportStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			deal_closed INTEGER NOT NULL,
			report_date INTEGER NOT NULL,
			data BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_reports_session_id ON reports(session_id);
		CREATE INDEX IF NOT EXISTS idx_reports_date ON reports(report_date);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	return nil
}

// Save persists a new report.
func (s *ReportStore) Save(ctx context.Context, r *report.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.ID == "" {
		return report.ErrInvalidReportID
	}

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, session_id, deal_closed, report_date, data) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.SessionID, r.NegotiationResult.DealClosed, r.SessionInfo.Date.UnixNano(), data,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return report.ErrReportExists
		}
		return err
	}
	return nil
}

// Get retrieves a report by ID.
func (s *ReportStore) Get(ctx context.Context, id string) (*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, report.ErrInvalidReportID
	}

	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM reports WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, report.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return report.Decode(data)
}

// Delete removes a report by ID.
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return report.ErrInvalidReportID
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return report.ErrReportNotFound
	}
	return nil
}

// List returns reports matching the filter, newest first.
func (s *ReportStore) List(ctx context.Context, filter report.ListFilter) ([]*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query, args := buildReportQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	reports := []*report.Report{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		r, err := report.Decode(data)
		if err != nil {
			continue // Skip malformed entries
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// Close closes the database connection.
func (s *ReportStore) Close() error {
	return s.db.Close()
}

func buildReportQuery(filter report.ListFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.SessionID != "" {
		conditions = append(conditions, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.DealClosed != nil {
		conditions = append(conditions, "deal_closed = ?")
		args = append(args, *filter.DealClosed)
	}
	if !filter.FromTime.IsZero() {
		conditions = append(conditions, "report_date >= ?")
		args = append(args, filter.FromTime.UnixNano())
	}

	query := "SELECT data FROM reports"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY report_date DESC"

	// SQLite only accepts OFFSET after a LIMIT; -1 means unbounded.
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := -1
		if filter.Limit > 0 {
			limit = filter.Limit
		}
		query += " LIMIT ?"
		args = append(args, limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	return query, args
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
