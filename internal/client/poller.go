package client

import (
	"context"
	"errors"
	"log"
	"time"
)

// DefaultPollInterval is how often list views re-fetch.
const DefaultPollInterval = 30 * time.Second

// Poller re-runs fetch at a fixed interval and immediately after Refresh.
type Poller struct {
	interval time.Duration
	fetch    func(ctx context.Context) error
	refresh  chan struct{}
}

func NewPoller(interval time.Duration, fetch func(ctx context.Context) error) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{interval: interval, fetch: fetch, refresh: make(chan struct{}, 1)}
}

// Refresh asks for an out-of-band fetch, e.g. after a mutation. Requests
// made while one is pending collapse into it.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Run fetches once, then on every tick or refresh until ctx ends. Fetch
// errors are logged and polling continues, except for an expired session,
// which stops the loop and is returned.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.fetch(ctx); err != nil {
			var expired *AuthExpiredError
			if errors.As(err, &expired) {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("poll: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-p.refresh:
		}
	}
}
