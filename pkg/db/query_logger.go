package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hbnb-dev/hbnb-backend/pkg/logger"
)

// queryLogger routes GORM's trace output into the service logger. Only slow
// statements and unexpected failures are reported, and SQL text is never
// logged.
type queryLogger struct {
	logg *logger.Logger
	slow time.Duration
}

func newQueryLogger(logg *logger.Logger, slow time.Duration) gormlogger.Interface {
	if logg == nil {
		return gormlogger.Discard
	}
	return &queryLogger{logg: logg, slow: slow}
}

func (q *queryLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return q }

func (q *queryLogger) Info(context.Context, string, ...any) {}

func (q *queryLogger) Warn(ctx context.Context, msg string, _ ...any) {
	q.logg.Warn(q.logg.WithField(ctx, "gorm", msg), "db.warning")
}

func (q *queryLogger) Error(ctx context.Context, msg string, _ ...any) {
	q.logg.Error(ctx, "db.error", errors.New(msg))
}

func (q *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !IsUniqueViolation(err):
		q.logg.Error(q.withStatement(ctx, elapsed, fc), "db.query_failed", err)
	case q.slow > 0 && elapsed > q.slow:
		q.logg.Warn(q.withStatement(ctx, elapsed, fc), "db.slow_query")
	}
}

func (q *queryLogger) withStatement(ctx context.Context, elapsed time.Duration, fc func() (string, int64)) context.Context {
	_, rows := fc()
	return q.logg.WithFields(ctx, map[string]any{
		"duration_ms": elapsed.Milliseconds(),
		"rows":        rows,
	})
}
