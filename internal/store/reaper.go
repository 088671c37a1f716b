package store

import (
	"context"
	"sort"
	"time"
)

// Aged is implemented by values the reaper can judge.
type Aged interface {
	// Age reports when the session was created and whether it has finished.
	Age() (createdAt time.Time, finished bool)
}

// Expired lists the IDs in snap that are finished or older than ttl at now,
// sorted. It does not mutate anything; callers re-check each candidate under
// the session's own lock before deleting it.
func Expired[T Aged](snap map[string]T, now time.Time, ttl time.Duration) []string {
	var out []string
	for id, v := range snap {
		created, finished := v.Age()
		if finished || now.Sub(created) > ttl {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Every calls fn with the tick time every interval until ctx is done.
func Every(ctx context.Context, interval time.Duration, fn func(now time.Time)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			fn(now)
		}
	}
}
