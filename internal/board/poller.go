// Package board drives a presentation surface: poll the record store on a
// timer, rebuild the view model from each snapshot, hand it to a renderer.
package board

import (
	"context"
	"log"
	"time"

	"bayline/queue-service/internal/client"
	"bayline/queue-service/internal/queue"
)

type Poller struct {
	client       *client.Client
	interval     time.Duration
	fetchTimeout time.Duration
	render       func(queue.View)
}

func NewPoller(c *client.Client, interval time.Duration, render func(queue.View)) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller{
		client:       c,
		interval:     interval,
		fetchTimeout: interval * 4 / 5,
		render:       render,
	}
}

// Run polls until the context is cancelled. A failed fetch is logged and the
// previous view stays on screen; the next tick is the retry. Each fetch gets
// a timeout shorter than the interval so a hung request never stacks ticks.
func (p *Poller) Run(ctx context.Context) {
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	records, err := p.client.TodaySnapshot(fetchCtx)
	if err != nil {
		log.Printf("WARN: snapshot fetch failed: %v", err)
		return
	}

	// The snapshot wholly replaces the previous one; the view is derived
	// from scratch every time.
	p.render(queue.BuildView(records))
}
