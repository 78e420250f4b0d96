package metrics

import (
	"database/sql"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type fakeStats struct {
	stats sql.DBStats
}

func (f fakeStats) Stats() sql.DBStats {
	return f.stats
}

func TestRecordDBPoolMetrics(t *testing.T) {
	RecordDBPoolMetrics(fakeStats{stats: sql.DBStats{
		MaxOpenConnections: 10,
		InUse:              3,
		Idle:               2,
	}})

	assert.Equal(t, 3.0, testutil.ToFloat64(DBPoolConnections.WithLabelValues("in_use")))
	assert.Equal(t, 2.0, testutil.ToFloat64(DBPoolConnections.WithLabelValues("idle")))
	assert.Equal(t, 10.0, testutil.ToFloat64(DBPoolConnections.WithLabelValues("max")))
}
