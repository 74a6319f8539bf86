package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/pitchroom/domain/report"
)

// Errors
var (
	ErrConnectionFailed = errors.New("redis: connection failed")
	ErrOperationTimeout = errors.New("redis: operation timed out")
)

// ReportStore is a Redis-backed implementation of report.Store. Reports are
// kept as JSON strings with a sorted-set index scored by report date.
type ReportStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewReportStore connects to Redis with the given configuration.
func NewReportStore(cfg Config, opts ...ConfigOption) (*ReportStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	return NewReportStoreFromClient(client, cfg.KeyPrefix, cfg.TTL), nil
}

// NewReportStoreFromClient creates a report store from an existing client.
func NewReportStoreFromClient(client *redis.Client, keyPrefix string, ttl time.Duration) *ReportStore {
	return &ReportStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (s *ReportStore) reportKey(id string) string {
	return s.keyPrefix + "report:" + id
}

func (s *ReportStore) indexKey() string {
	return s.keyPrefix + "reports:by_date"
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

	ok, err := s.client.SetNX(ctx, s.reportKey(r.ID), data, s.ttl).Result()
	if err != nil {
		return s.wrapError(err)
	}
	if !ok {
		return report.ErrReportExists
	}

	score := float64(r.SessionInfo.Date.UnixNano())
	if err := s.client.ZAdd(ctx, s.indexKey(), redis.Z{Score: score, Member: r.ID}).Err(); err != nil {
		return s.wrapError(err)
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

	data, err := s.client.Get(ctx, s.reportKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, report.ErrReportNotFound
		}
		return nil, s.wrapError(err)
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

	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, s.reportKey(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return s.wrapError(err)
	}
	if del.Val() == 0 {
		return report.ErrReportNotFound
	}
	return nil
}

// List returns reports matching the filter, newest first. Index members
// whose report has expired are pruned.
func (s *ReportStore) List(ctx context.Context, filter report.ListFilter) ([]*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lo := "-inf"
	if !filter.FromTime.IsZero() {
		lo = strconv.FormatInt(filter.FromTime.UnixNano(), 10)
	}

	ids, err := s.client.ZRevRangeByScore(ctx, s.indexKey(), &redis.ZRangeBy{Min: lo, Max: "+inf"}).Result()
	if err != nil {
		return nil, s.wrapError(err)
	}
	if len(ids) == 0 {
		return []*report.Report{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.reportKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, s.wrapError(err)
	}

	var stale []any
	all := make([]*report.Report, 0, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		r, err := report.Decode([]byte(str))
		if err != nil {
			continue
		}
		all = append(all, r)
	}

	if len(stale) > 0 {
		_ = s.client.ZRem(ctx, s.indexKey(), stale...).Err()
	}

	return filter.Apply(all), nil
}

// Close closes the client.
func (s *ReportStore) Close() error {
	return s.client.Close()
}

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
