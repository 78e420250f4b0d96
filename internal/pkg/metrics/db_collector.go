package metrics

import (
	"database/sql"
)

// StatsProvider is satisfied by *sql.DB and *sqlx.DB.
type StatsProvider interface {
	Stats() sql.DBStats
}

// RecordDBPoolMetrics updates database pool metrics.
func RecordDBPoolMetrics(db StatsProvider) {
	stats := db.Stats()

	DBPoolConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
	DBPoolConnections.WithLabelValues("idle").Set(float64(stats.Idle))
	DBPoolConnections.WithLabelValues("max").Set(float64(stats.MaxOpenConnections))
}
