package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/pitchroom/domain/report"
)

const uniqueViolation = "23505"

// ReportStore is a PostgreSQL-backed implementation of report.Store.
type ReportStore struct {
	pool   *pgxpool.Pool
	schema string
}

// NewReportStore creates a new PostgreSQL report store.
func NewReportStore(pool *pgxpool.Pool, schema string) *ReportStore {
	if schema == "" {
		schema = "public"
	}
	return &ReportStore{
		pool:   pool,
		schema: schema,
	}
}

// tableName returns the fully qualified table name.
func (s *ReportStore) tableName() string {
	return fmt.Sprintf("%s.reports", s.schema)
}

// Migrate creates the reports table if it doesn't exist.
func (s *ReportStore) Migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			deal_closed BOOLEAN NOT NULL,
			report_date TIMESTAMPTZ NOT NULL,
			data JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS reports_session_id_idx ON %[1]s (session_id);
		CREATE INDEX IF NOT EXISTS reports_date_idx ON %[1]s (report_date DESC);
	`, s.tableName())

	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	return nil
}

// Save persists a new report.
func (s *ReportStore) Save(ctx context.Context, r *report.Report) error {
	if r.ID == "" {
		return report.ErrInvalidReportID
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, session_id, deal_closed, report_date, data)
		VALUES ($1, $2, $3, $4, $5)
	`, s.tableName())

	_, err = s.pool.Exec(ctx, query,
		r.ID,
		r.SessionID,
		r.NegotiationResult.DealClosed,
		r.SessionInfo.Date,
		data,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return report.ErrReportExists
		}
		return s.wrapError(err)
	}
	return nil
}

// Get retrieves a report by ID.
func (s *ReportStore) Get(ctx context.Context, id string) (*report.Report, error) {
	if id == "" {
		return nil, report.ErrInvalidReportID
	}

	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = $1`, s.tableName())

	var data []byte
	if err := s.pool.QueryRow(ctx, query, id).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, report.ErrReportNotFound
		}
		return nil, s.wrapError(err)
	}
	return report.Decode(data)
}

// Delete removes a report by ID.
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return report.ErrInvalidReportID
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.tableName())

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return s.wrapError(err)
	}
	if tag.RowsAffected() == 0 {
		return report.ErrReportNotFound
	}
	return nil
}

// List returns reports matching the filter, newest first.
func (s *ReportStore) List(ctx context.Context, filter report.ListFilter) ([]*report.Report, error) {
	query, args := s.buildListQuery(filter)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, s.wrapError(err)
	}
	defer rows.Close()

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

// buildListQuery builds the SQL query for listing reports.
func (s *ReportStore) buildListQuery(filter report.ListFilter) (string, []any) {
	var conditions []string
	var args []any
	argNum := 1

	if filter.SessionID != "" {
		conditions = append(conditions, fmt.Sprintf("session_id = $%d", argNum))
		args = append(args, filter.SessionID)
		argNum++
	}
	if filter.DealClosed != nil {
		conditions = append(conditions, fmt.Sprintf("deal_closed = $%d", argNum))
		args = append(args, *filter.DealClosed)
		argNum++
	}
	if !filter.FromTime.IsZero() {
		conditions = append(conditions, fmt.Sprintf("report_date >= $%d", argNum))
		args = append(args, filter.FromTime)
		argNum++
	}

	query := fmt.Sprintf("SELECT data FROM %s", s.tableName())
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY report_date DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	return query, args
}

// wrapError wraps database errors with package errors.
func (s *ReportStore) wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrOperationTimeout, err)
	}
	return errors.Join(ErrConnectionFailed, err)
}

var _ report.Store = (*ReportStore)(nil)
