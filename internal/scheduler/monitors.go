package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
)

// BreakerReporter is implemented by providers guarded by a circuit breaker.
type BreakerReporter interface {
	Name() string
	BreakerState() string
}

// BreakerMonitor logs providers whose circuit breaker is not closed.
func BreakerMonitor(providers ...BreakerReporter) Job {
	return Job{
		Name: "breaker-monitor",
		Run: func(_ context.Context) error {
			var open []string
			for _, p := range providers {
				if state := p.BreakerState(); state != "closed" {
					open = append(open, fmt.Sprintf("%s=%s", p.Name(), state))
				}
			}
			if len(open) > 0 {
				log.Printf("WARN: provider circuit breakers not closed: %s", strings.Join(open, ", "))
			}
			return nil
		},
	}
}

// PoolMonitor pings the database and logs connection pool pressure.
func PoolMonitor(db *gorm.DB, maxInUse int) Job {
	return Job{
		Name: "db-pool-monitor",
		Run: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return fmt.Errorf("database ping: %w", err)
			}
			stats := sqlDB.Stats()
			if stats.InUse > maxInUse {
				log.Printf("WARN: DB connection pool: InUse=%d, Idle=%d, Open=%d",
					stats.InUse, stats.Idle, stats.OpenConnections)
			}
			return nil
		},
	}
}
