package metrics

import (
	"context"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"gorm.io/gorm"
)

// Collector periodically refreshes the gauges that track database pool
// usage and the per-status article distribution.
type Collector struct {
	db       *gorm.DB
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCollector creates a collector sampling every interval.
func NewCollector(db *gorm.DB, interval time.Duration) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		db:       db,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins sampling in the background.
func (c *Collector) Start() {
	go c.collect()
}

// Stop halts sampling and waits for the loop to exit.
func (c *Collector) Stop() {
	c.cancel()
	<-c.done
}

func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			_ = UpdateDatabaseConnections(c.db)
			c.sampleStatuses()
		}
	}
}

func (c *Collector) sampleStatuses() {
	for _, status := range model.ValidStatuses {
		var count int64
		if err := c.db.Model(&model.Article{}).
			Where("approval_status = ?", status).
			Count(&count).Error; err != nil {
			continue
		}
		UpdateArticlesByStatus(status, float64(count))
	}
}
