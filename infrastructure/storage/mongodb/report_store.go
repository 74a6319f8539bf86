package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/felixgeelhaar/pitchroom/domain/report"
)

// reportDocument is the MongoDB document representation of a report.
type reportDocument struct {
	ID         string    `bson:"_id"`
	SessionID  string    `bson:"session_id"`
	DealClosed bool      `bson:"deal_closed"`
	ReportDate time.Time `bson:"report_date"`
	Data       string    `bson:"data"`
}

// ReportStore is a MongoDB-backed implementation of report.Store.
type ReportStore struct {
	collection   *mongo.Collection
	queryTimeout time.Duration
}

// NewReportStore creates a new MongoDB report store.
func NewReportStore(client *Client, collectionName string) *ReportStore {
	if collectionName == "" {
		collectionName = "reports"
	}
	return &ReportStore{
		collection:   client.Collection(collectionName),
		queryTimeout: client.config.QueryTimeout,
	}
}

func (s *ReportStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// EnsureIndexes creates the indexes List relies on.
func (s *ReportStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}}},
		{Keys: bson.D{{Key: "report_date", Value: -1}}},
	})
	return s.wrapError(err)
}

// Save persists a new report.
func (s *ReportStore) Save(ctx context.Context, r *report.Report) error {
	if r.ID == "" {
		return report.ErrInvalidReportID
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	doc, err := toDocument(r)
	if err != nil {
		return err
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
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

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var doc reportDocument
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, report.ErrReportNotFound
		}
		return nil, s.wrapError(err)
	}
	return report.Decode([]byte(doc.Data))
}

// Delete removes a report by ID.
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return report.ErrInvalidReportID
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return s.wrapError(err)
	}
	if result.DeletedCount == 0 {
		return report.ErrReportNotFound
	}
	return nil
}

// List returns reports matching the filter, newest first.
func (s *ReportStore) List(ctx context.Context, filter report.ListFilter) ([]*report.Report, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cursor, err := s.collection.Find(ctx, buildFilter(filter), buildFindOptions(filter))
	if err != nil {
		return nil, s.wrapError(err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	reports := []*report.Report{}
	for cursor.Next(ctx) {
		var doc reportDocument
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		r, err := report.Decode([]byte(doc.Data))
		if err != nil {
			continue
		}
		reports = append(reports, r)
	}
	return reports, s.wrapError(cursor.Err())
}

// buildFilter constructs a MongoDB filter from the list filter.
func buildFilter(filter report.ListFilter) bson.M {
	mongoFilter := bson.M{}

	if filter.SessionID != "" {
		mongoFilter["session_id"] = filter.SessionID
	}
	if filter.DealClosed != nil {
		mongoFilter["deal_closed"] = *filter.DealClosed
	}
	if !filter.FromTime.IsZero() {
		mongoFilter["report_date"] = bson.M{"$gte": filter.FromTime}
	}

	return mongoFilter
}

// buildFindOptions constructs MongoDB find options from the list filter.
func buildFindOptions(filter report.ListFilter) *options.FindOptions {
	opts := options.Find()
	opts.SetSort(bson.D{{Key: "report_date", Value: -1}})

	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	return opts
}

func toDocument(r *report.Report) (*reportDocument, error) {
	data, err := report.Export(r, string(report.FormatJSON))
	if err != nil {
		return nil, err
	}
	return &reportDocument{
		ID:         r.ID,
		SessionID:  r.SessionID,
		DealClosed: r.NegotiationResult.DealClosed,
		ReportDate: r.SessionInfo.Date,
		Data:       string(data),
	}, nil
}

// wrapError wraps MongoDB errors with package errors.
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
