package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/felixgeelhaar/pitchroom/domain/report"
)

// reportItem represents a report in DynamoDB. The full report is kept as
// JSON; the other attributes exist for filtering.
type reportItem struct {
	ID         string `dynamodbav:"id"`
	SessionID  string `dynamodbav:"session_id"`
	DealClosed bool   `dynamodbav:"deal_closed"`
	ReportTS   int64  `dynamodbav:"report_ts"`
	Data       string `dynamodbav:"data"`
}

// ReportStore is a DynamoDB-backed implementation of report.Store.
type ReportStore struct {
	client       *dynamodb.Client
	tableName    string
	queryTimeout time.Duration
}

// NewReportStore creates a new DynamoDB report store.
func NewReportStore(client *Client) *ReportStore {
	return &ReportStore{
		client:       client.DynamoDB(),
		tableName:    client.config.ReportsTableName,
		queryTimeout: client.config.QueryTimeout,
	}
}

func (s *ReportStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// Save persists a new report.
func (s *ReportStore) Save(ctx context.Context, r *report.Report) error {
	if r.ID == "" {
		return report.ErrInvalidReportID
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	item, err := toItem(r)
	if err != nil {
		return err
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}

	// Use condition expression to prevent overwriting existing items
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
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

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, s.wrapError(err)
	}
	if result.Item == nil {
		return nil, report.ErrReportNotFound
	}

	var item reportItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, err
	}
	return report.Decode([]byte(item.Data))
}

// Delete removes a report by ID.
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return report.ErrInvalidReportID
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return report.ErrReportNotFound
		}
		return s.wrapError(err)
	}
	return nil
}

// List scans the table with the filter's predicates pushed down, then
// orders and pages the result.
func (s *ReportStore) List(ctx context.Context, filter report.ListFilter) ([]*report.Report, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	scanInput := &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	}

	expr, ok, err := buildFilter(filter)
	if err != nil {
		return nil, err
	}
	if ok {
		scanInput.FilterExpression = expr.Filter()
		scanInput.ExpressionAttributeNames = expr.Names()
		scanInput.ExpressionAttributeValues = expr.Values()
	}

	var all []*report.Report
	paginator := dynamodb.NewScanPaginator(s.client, scanInput)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, s.wrapError(err)
		}

		for _, av := range page.Items {
			var item reportItem
			if err := attributevalue.UnmarshalMap(av, &item); err != nil {
				continue
			}
			r, err := report.Decode([]byte(item.Data))
			if err != nil {
				continue
			}
			all = append(all, r)
		}
	}

	return filter.Apply(all), nil
}

// buildFilter translates the filter predicates into a scan expression.
// ok is false when there is nothing to filter on.
func buildFilter(filter report.ListFilter) (expression.Expression, bool, error) {
	var conds []expression.ConditionBuilder

	if filter.SessionID != "" {
		conds = append(conds, expression.Name("session_id").Equal(expression.Value(filter.SessionID)))
	}
	if filter.DealClosed != nil {
		conds = append(conds, expression.Name("deal_closed").Equal(expression.Value(*filter.DealClosed)))
	}
	if !filter.FromTime.IsZero() {
		conds = append(conds, expression.Name("report_ts").GreaterThanEqual(expression.Value(filter.FromTime.UnixNano())))
	}

	if len(conds) == 0 {
		return expression.Expression{}, false, nil
	}

	cond := conds[0]
	for _, c := range conds[1:] {
		cond = cond.And(c)
	}

	expr, err := expression.NewBuilder().WithFilter(cond).Build()
	if err != nil {
		return expression.Expression{}, false, err
	}
	return expr, true, nil
}

func toItem(r *report.Report) (*reportItem, error) {
	data, err := report.Export(r, string(report.FormatJSON))
	if err != nil {
		return nil, err
	}
	return &reportItem{
		ID:         r.ID,
		SessionID:  r.SessionID,
		DealClosed: r.NegotiationResult.DealClosed,
		ReportTS:   r.SessionInfo.Date.UnixNano(),
		Data:       string(data),
	}, nil
}

// wrapError wraps DynamoDB errors with package errors.
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
