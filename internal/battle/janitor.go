package battle

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunJanitor closes rooms that have seen no member activity for idleTTL. It
// blocks until ctx is done. A non-positive idleTTL disables reaping.
func (g *Registry) RunJanitor(ctx context.Context, idleTTL, interval time.Duration) error {
	if idleTTL <= 0 {
		<-ctx.Done()
		return nil
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := g.reapIdle(ctx, g.now(), idleTTL); n > 0 {
				log.Info().Int("rooms", n).Msg("idle_rooms_reaped")
			}
		}
	}
}

func (g *Registry) reapIdle(ctx context.Context, now time.Time, ttl time.Duration) int {
	g.mu.Lock()
	rooms := make([]*room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.Unlock()

	reaped := 0
	for _, r := range rooms {
		err := r.exec(ctx, func(r *room) error {
			if now.Sub(r.lastActive) < ttl {
				return nil
			}
			r.teardown("idle_timeout")
			reaped++
			return nil
		})
		if err != nil && ctx.Err() != nil {
			break
		}
	}
	metricRoomsReapedTotal.Add(int64(reaped))
	return reaped
}
