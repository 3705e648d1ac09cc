package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipenest_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recipenest_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheResults counts cache lookups by key family and outcome (hit/miss).
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipenest_cache_results_total",
		Help: "Total cache lookups by key family and outcome",
	}, []string{"family", "outcome"})

	// FeedRequests counts feed page requests by feed type.
	FeedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipenest_feed_requests_total",
		Help: "Total feed page requests by feed type",
	}, []string{"feed"})

	// MediaUploads counts media uploads by kind (avatar, recipe_image).
	MediaUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipenest_media_uploads_total",
		Help: "Total media uploads by kind",
	}, []string{"kind"})
)

const queryStartKey = "observability:query_start"

func queryStart(tx *gorm.DB) {
	tx.InstanceSet(queryStartKey, time.Now())
}

func queryDone(operation string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		table := tx.Statement.Table
		if table == "" {
			table = "unknown"
		}
		DatabaseQueryLatency.WithLabelValues(operation, table).
			Observe(time.Since(start).Seconds())
	}
}

// RegisterDatabaseMetrics hooks GORM callbacks so every statement feeds
// DatabaseQueryLatency, labeled by operation and table.
func RegisterDatabaseMetrics(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("metrics:create_start", queryStart); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("metrics:create_done", queryDone("create")); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("metrics:query_start", queryStart); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("metrics:query_done", queryDone("query")); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("metrics:update_start", queryStart); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("metrics:update_done", queryDone("update")); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("metrics:delete_start", queryStart); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("metrics:delete_done", queryDone("delete")); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("metrics:row_start", queryStart); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("metrics:row_done", queryDone("row")); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("metrics:raw_start", queryStart); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("metrics:raw_done", queryDone("raw"))
}
