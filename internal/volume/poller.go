package volume

import (
	"context"
	"time"
)

// poller is the shared enumerate-all-volumes strategy: take a fresh
// snapshot of visible volumes every interval and test each against the
// signature. Snapshots are never cached; the previous one says nothing
// about the current bus state.
type poller struct {
	cfg      Config
	snapshot func() ([]Handle, error)
}

func (p *poller) Find(ctx context.Context, timeout time.Duration) (*Handle, error) {
	deadline := time.Now().Add(timeout)

	for {
		handles, err := p.snapshot()
		if err != nil {
			return nil, err
		}
		for i := range handles {
			if p.cfg.matches(handles[i]) {
				h := handles[i]
				return &h, nil
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		wait := p.cfg.interval()
		if wait > remaining {
			wait = remaining
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
