package monitor

import (
	"context"
	"time"
)

// pause sleeps for total in steps of at most step, checking the flag between
// steps. It returns false as soon as the flag is raised or ctx is done.
func pause(ctx context.Context, flag *CancelFlag, total, step time.Duration) bool {
	if step <= 0 || step > total {
		step = total
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for slept := time.Duration(0); slept < total; slept += step {
		if flag.Raised() {
			return false
		}
		d := min(step, total-slept)
		if timer == nil {
			timer = time.NewTimer(d)
		} else {
			timer.Reset(d)
		}
		select {
		case <-ctx.Done():
			return false
		case <-flag.Done():
			return false
		case <-timer.C:
		}
	}
	return !flag.Raised()
}
