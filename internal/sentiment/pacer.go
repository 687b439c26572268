package sentiment

import (
	"context"
	"sync"
	"time"
)

// Pacer is a token bucket spacing outbound API requests. With burst 1 it
// degenerates to a fixed minimum interval between calls, which is what the
// free search tier tolerates. Both poll loops and the on-demand endpoint
// share one pacer so their combined request rate stays bounded.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	burst    float64
	tokens   float64
	last     time.Time

	// now is replaceable for deterministic tests.
	now func() time.Time
}

func NewPacer(interval time.Duration, burst int) *Pacer {
	if interval <= 0 {
		interval = time.Second
	}
	if burst < 1 {
		burst = 1
	}
	return &Pacer{
		interval: interval,
		burst:    float64(burst),
		tokens:   float64(burst),
		now:      time.Now,
	}
}

// Wait blocks until a token is available or the context ends.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	for {
		p.mu.Lock()
		now := p.now()
		if !p.last.IsZero() {
			p.tokens += float64(now.Sub(p.last)) / float64(p.interval)
			if p.tokens > p.burst {
				p.tokens = p.burst
			}
		}
		p.last = now
		if p.tokens >= 1 {
			p.tokens--
			p.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - p.tokens) * float64(p.interval))
		p.mu.Unlock()

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
