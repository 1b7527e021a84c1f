package metrics

import (
	"database/sql"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveTransition(t *testing.T) {
	before := testutil.ToFloat64(ModerationTransitions.WithLabelValues("approved", "ok"))

	ObserveTransition("approved", "ok")

	after := testutil.ToFloat64(ModerationTransitions.WithLabelValues("approved", "ok"))
	assert.Equal(t, before+1, after)
}

func TestObserveSearch(t *testing.T) {
	ObserveSearch("stories", 12*time.Millisecond, 42)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(SearchDuration), 1)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(SearchResults), 1)
}

func TestNotificationRecorder(t *testing.T) {
	before := testutil.ToFloat64(NotificationsTotal.WithLabelValues("story_rejected", "failed"))

	NotificationRecorder{}.NotificationResult("story_rejected", "failed")

	after := testutil.ToFloat64(NotificationsTotal.WithLabelValues("story_rejected", "failed"))
	assert.Equal(t, before+1, after)
}

type fakeStats struct{ stats sql.DBStats }

func (f fakeStats) Stats() sql.DBStats { return f.stats }

func TestPoolStatsCollector(t *testing.T) {
	c := NewPoolStatsCollector(fakeStats{stats: sql.DBStats{OpenConnections: 7, Idle: 3, InUse: 4}})
	c.Start(time.Hour)
	c.Stop()
	c.Stop()

	assert.Equal(t, float64(7), testutil.ToFloat64(DBConnectionPool.WithLabelValues("open")))
	assert.Equal(t, float64(3), testutil.ToFloat64(DBConnectionPool.WithLabelValues("idle")))
	assert.Equal(t, float64(4), testutil.ToFloat64(DBConnectionPool.WithLabelValues("in_use")))
}
