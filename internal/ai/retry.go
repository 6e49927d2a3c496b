package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"
)

// backoff hands out jittered, doubling delays for the HTTP transports.
type backoff struct {
	next    time.Duration
	ceiling time.Duration
}

func newBackoff(base, ceiling time.Duration) *backoff {
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	return &backoff{next: base, ceiling: ceiling}
}

// wait sleeps for d when the server asked for it, otherwise for the next
// backoff step. It returns early with ctx's error on cancellation.
func (b *backoff) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		d = withJitter(b.next)
		if b.ceiling > 0 && d > b.ceiling {
			d = b.ceiling
		}
		b.next *= 2
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// withJitter spreads d by +/- 20%.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 500 * time.Millisecond
	}
	out := time.Duration(float64(d) * (0.8 + rand.Float64()*0.4))
	if out <= 0 {
		return d
	}
	return out
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF)
}

// retryAfter reads a Retry-After header given either in seconds or as an HTTP date.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	d, err := parseRetryAfter(v)
	if err != nil {
		return 0
	}
	return d
}

func parseRetryAfter(v string) (time.Duration, error) {
	if s, err := strconv.Atoi(v); err == nil {
		if s < 0 {
			s = 0
		}
		return time.Duration(s) * time.Second, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(time.Until(t), 0).Truncate(time.Second), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}
