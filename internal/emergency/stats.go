package emergency

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StatsJob logs the trailing-24h alert volume. Scheduled through the cron
// runner as a cheap operational heartbeat for the on-call channel.
type StatsJob struct {
	store *Store
	log   *zap.SugaredLogger
}

func NewStatsJob(store *Store, log *zap.SugaredLogger) *StatsJob {
	return &StatsJob{store: store, log: log}
}

func (j *StatsJob) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	since := time.Now().Add(-24 * time.Hour)
	n, err := j.store.CountSince(ctx, since)
	if err != nil {
		j.log.Errorw("alert stats query failed", "err", err)
		return
	}
	j.log.Infow("daily alert stats", "alertsLast24h", n)
}
