package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables in spans; never in production
	SlowQueryThresh time.Duration // default: 200ms
	DBName          string
}

// DefaultDBTracingConfig returns the default database tracing configuration
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBName:          "foodbank",
	}
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db and annotates its spans with
// affected rows, slow queries and guarded updates that matched nothing
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = DefaultDBTracingConfig().SlowQueryThresh
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateSpan(tx, cfg.SlowQueryThresh) }

	// after hooks sit between the gorm operation and otelgorm closing its span
	cb := db.Callback()
	registrations := []error{
		cb.Create().Before("gorm:create").Register("foodbank:before_create", before),
		cb.Create().After("gorm:create").Before("otel:after:create").Register("foodbank:after_create", after),
		cb.Query().Before("gorm:query").Register("foodbank:before_query", before),
		cb.Query().After("gorm:query").Before("otel:after:select").Register("foodbank:after_query", after),
		cb.Update().Before("gorm:update").Register("foodbank:before_update", before),
		cb.Update().After("gorm:update").Before("otel:after:update").Register("foodbank:after_update", after),
		cb.Raw().Before("gorm:raw").Register("foodbank:before_raw", before),
		cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("foodbank:after_raw", after),
	}
	if err := errors.Join(registrations...); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh))
	return nil
}

func annotateSpan(tx *gorm.DB, slowThresh time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		RecordError(span, tx.Error)
	}

	// a guarded update that matched no row lost a concurrent write
	if tx.Error == nil && tx.Statement.RowsAffected == 0 && isUpdate(tx) {
		span.AddEvent("guarded_update_missed")
	}

	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > slowThresh {
			span.SetAttributes(attribute.Bool("db.slow_query", true))
			span.AddEvent("slow_query", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", slowThresh.Milliseconds()),
			))
		}
	}
}

func isUpdate(tx *gorm.DB) bool {
	_, ok := tx.Statement.Clauses["SET"]
	return ok
}
